// Package mimelist encodes the archive's content-type table.
//
// The table is the caller's mimetype strings in the given order, each
// followed by a single zero byte. Directory entries refer to a mimetype
// by its position in this list.
package mimelist

// Size returns the encoded size of mimetypes in bytes.
func Size(mimetypes []string) int {
	n := 0
	for _, m := range mimetypes {
		n += len(m) + 1
	}
	return n
}

// Append appends the encoded list to dst and returns the extended slice.
// Entries are neither deduplicated nor validated.
func Append(dst []byte, mimetypes []string) []byte {
	for _, m := range mimetypes {
		dst = append(dst, m...)
		dst = append(dst, 0)
	}
	return dst
}

// Encode returns the encoded list.
func Encode(mimetypes []string) []byte {
	return Append(make([]byte, 0, Size(mimetypes)), mimetypes)
}
