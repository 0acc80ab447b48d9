// Package dirent encodes directory entries.
//
// Both entry kinds share an 8-byte prefix:
//
//	mimetype (u16) | parameter length (u8) | namespace (u8) | revision (u32)
//
// A content entry continues with cluster number (u32) and blob number (u32);
// a redirect entry continues with the target article index (u32). Both end
// with the URL and the title as zero-terminated UTF-8 strings. Readers tell
// the kinds apart by the mimetype field, which is RedirectMimeType for
// redirects.
package dirent

import "encoding/binary"

// Kind distinguishes content entries from redirect entries.
type Kind uint8

const (
	KindContent Kind = iota
	KindRedirect
)

// String returns the human-readable name of the kind.
func (k Kind) String() string {
	switch k {
	case KindContent:
		return "content"
	case KindRedirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// RedirectMimeType is the mimetype value that marks a redirect entry.
const RedirectMimeType uint16 = 0xFFFF

const (
	prefixSize   = 8
	contentTail  = 8
	redirectTail = 4
)

// Entry is a directory entry. Cluster and Blob are meaningful only for
// KindContent, RedirectIndex only for KindRedirect. MimeType is ignored for
// redirects.
type Entry struct {
	Kind      Kind
	MimeType  uint16
	Namespace byte
	Revision  uint32

	Cluster uint32
	Blob    uint32

	RedirectIndex uint32

	URL   string
	Title string
}

// Content returns a content entry located at blob within cluster.
func Content(ns byte, url, title string, mime uint16, revision, cluster, blob uint32) Entry {
	return Entry{
		Kind:      KindContent,
		MimeType:  mime,
		Namespace: ns,
		Revision:  revision,
		Cluster:   cluster,
		Blob:      blob,
		URL:       url,
		Title:     title,
	}
}

// Redirect returns a redirect entry pointing at the article index target.
func Redirect(ns byte, url, title string, revision, target uint32) Entry {
	return Entry{
		Kind:          KindRedirect,
		MimeType:      RedirectMimeType,
		Namespace:     ns,
		Revision:      revision,
		RedirectIndex: target,
		URL:           url,
		Title:         title,
	}
}

// Size returns the encoded length of e in bytes.
func (e Entry) Size() int {
	n := prefixSize + len(e.URL) + 1 + len(e.Title) + 1
	if e.Kind == KindRedirect {
		return n + redirectTail
	}
	return n + contentTail
}

// AppendBinary appends the encoding of e to dst.
func (e Entry) AppendBinary(dst []byte) ([]byte, error) {
	mime := e.MimeType
	if e.Kind == KindRedirect {
		mime = RedirectMimeType
	}
	dst = binary.LittleEndian.AppendUint16(dst, mime)
	dst = append(dst, 0, e.Namespace) // no parameters
	dst = binary.LittleEndian.AppendUint32(dst, e.Revision)
	switch e.Kind {
	case KindRedirect:
		dst = binary.LittleEndian.AppendUint32(dst, e.RedirectIndex)
	default:
		dst = binary.LittleEndian.AppendUint32(dst, e.Cluster)
		dst = binary.LittleEndian.AppendUint32(dst, e.Blob)
	}
	dst = append(dst, e.URL...)
	dst = append(dst, 0)
	dst = append(dst, e.Title...)
	dst = append(dst, 0)
	return dst, nil
}

// MarshalBinary returns the encoding of e.
func (e Entry) MarshalBinary() ([]byte, error) {
	return e.AppendBinary(make([]byte, 0, e.Size()))
}
