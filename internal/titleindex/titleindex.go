// Package titleindex builds the title-ordered permutation of articles.
package titleindex

import (
	"cmp"
	"encoding/binary"
	"slices"
	"strings"
)

// EntrySize is the encoded width of one title table entry.
const EntrySize = 4

// Build returns the article indices of titles ordered by title.
//
// titles must be in article (namespace, URL) order, with empty titles
// already replaced by the article URL. Equal titles keep their article
// order. The result is a permutation of [0, len(titles)).
func Build(titles []string) []uint32 {
	idx := make([]uint32, len(titles))
	for i := range idx {
		idx[i] = uint32(i) //nolint:gosec // article count is bounded to uint32 by the caller
	}
	slices.SortStableFunc(idx, func(a, b uint32) int {
		if c := strings.Compare(titles[a], titles[b]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	return idx
}

// AppendBinary appends idx as little-endian u32 values to dst.
func AppendBinary(dst []byte, idx []uint32) []byte {
	for _, i := range idx {
		dst = binary.LittleEndian.AppendUint32(dst, i)
	}
	return dst
}

// SortKey returns the key an article is ordered by: its title, or its URL
// when the title is empty.
func SortKey(title, url string) string {
	if title == "" {
		return url
	}
	return title
}
