// Package testutil parses archives for tests. Reading archives is not part
// of the library; this parser exists to check what the writer produced.
package testutil

import (
	"bytes"
	"crypto/md5" //nolint:gosec // format checksum
	"encoding/binary"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/require"

	"github.com/meigma/zim/internal/cluster"
	"github.com/meigma/zim/internal/dirent"
	"github.com/meigma/zim/internal/header"
)

// Cluster is a parsed cluster.
type Cluster struct {
	Compression cluster.Compression
	Body        []byte // decompressed offset table and blobs
	Blobs       [][]byte
}

// Archive is a parsed archive.
type Archive struct {
	Raw         []byte
	Header      header.Header
	MimeTypes   []string
	URLPtrs     []uint64
	TitleIndex  []uint32
	Entries     []dirent.Entry
	ClusterPtrs []uint64
	Clusters    []Cluster
	Checksum    [md5.Size]byte
}

// ParseArchive parses raw, failing the test on any structural problem.
func ParseArchive(t testing.TB, raw []byte) *Archive {
	t.Helper()
	le := binary.LittleEndian
	require.GreaterOrEqual(t, len(raw), header.Size+md5.Size, "archive too short")

	a := &Archive{Raw: raw}
	h := &a.Header
	h.Magic = le.Uint32(raw[0:])
	h.Version = le.Uint32(raw[4:])
	copy(h.UUID[:], raw[8:24])
	h.ArticleCount = le.Uint32(raw[24:])
	h.ClusterCount = le.Uint32(raw[28:])
	h.URLPtrPos = le.Uint64(raw[32:])
	h.TitlePtrPos = le.Uint64(raw[40:])
	h.ClusterPtrPos = le.Uint64(raw[48:])
	h.MimeListPos = le.Uint64(raw[56:])
	h.MainPage = le.Uint32(raw[64:])
	h.LayoutPage = le.Uint32(raw[68:])
	h.ChecksumPos = le.Uint64(raw[72:])

	require.Equal(t, header.Magic, h.Magic)
	require.Equal(t, uint64(len(raw)-md5.Size), h.ChecksumPos, "checksum position must be the trailer start")
	copy(a.Checksum[:], raw[h.ChecksumPos:])

	mimes := raw[h.MimeListPos:h.URLPtrPos]
	for len(mimes) > 0 {
		i := bytes.IndexByte(mimes, 0)
		require.GreaterOrEqual(t, i, 0, "unterminated mimetype")
		a.MimeTypes = append(a.MimeTypes, string(mimes[:i]))
		mimes = mimes[i+1:]
	}

	n := int(h.ArticleCount)
	require.Equal(t, h.URLPtrPos+uint64(8*n), h.TitlePtrPos)
	for i := range n {
		a.URLPtrs = append(a.URLPtrs, le.Uint64(raw[h.URLPtrPos+uint64(8*i):]))
		a.TitleIndex = append(a.TitleIndex, le.Uint32(raw[h.TitlePtrPos+uint64(4*i):]))
	}
	for _, off := range a.URLPtrs {
		a.Entries = append(a.Entries, parseEntry(t, raw[off:h.ClusterPtrPos]))
	}

	c := int(h.ClusterCount)
	for i := range c {
		a.ClusterPtrs = append(a.ClusterPtrs, le.Uint64(raw[h.ClusterPtrPos+uint64(8*i):]))
	}
	if c > 0 {
		require.Equal(t, h.ClusterPtrPos+uint64(8*c), a.ClusterPtrs[0], "clusters must follow the cluster pointer table")
	}
	for i, start := range a.ClusterPtrs {
		end := h.ChecksumPos
		if i+1 < c {
			end = a.ClusterPtrs[i+1]
		}
		a.Clusters = append(a.Clusters, parseCluster(t, raw[start:end]))
	}
	return a
}

func parseEntry(t testing.TB, b []byte) dirent.Entry {
	t.Helper()
	le := binary.LittleEndian
	var e dirent.Entry
	e.MimeType = le.Uint16(b)
	require.Equal(t, byte(0), b[2], "parameter length")
	e.Namespace = b[3]
	e.Revision = le.Uint32(b[4:])
	rest := b[8:]
	if e.MimeType == dirent.RedirectMimeType {
		e.Kind = dirent.KindRedirect
		e.RedirectIndex = le.Uint32(rest)
		rest = rest[4:]
	} else {
		e.Kind = dirent.KindContent
		e.Cluster = le.Uint32(rest)
		e.Blob = le.Uint32(rest[4:])
		rest = rest[8:]
	}
	i := bytes.IndexByte(rest, 0)
	require.GreaterOrEqual(t, i, 0, "unterminated url")
	e.URL = string(rest[:i])
	rest = rest[i+1:]
	j := bytes.IndexByte(rest, 0)
	require.GreaterOrEqual(t, j, 0, "unterminated title")
	e.Title = string(rest[:j])
	return e
}

func parseCluster(t testing.TB, b []byte) Cluster {
	t.Helper()
	require.NotEmpty(t, b, "empty cluster record")
	c := Cluster{Compression: cluster.Compression(b[0])}
	switch c.Compression {
	case cluster.CompressionNone:
		c.Body = b[1:]
	case cluster.CompressionZstd:
		dec, err := zstd.NewReader(nil)
		require.NoError(t, err)
		defer dec.Close()
		c.Body, err = dec.DecodeAll(b[1:], nil)
		require.NoError(t, err)
	default:
		t.Fatalf("unknown cluster compression %d", b[0])
	}

	le := binary.LittleEndian
	first := le.Uint32(c.Body)
	require.Zero(t, first%cluster.OffsetSize)
	count := int(first/cluster.OffsetSize) - 1
	offsets := make([]uint32, count+1)
	for i := range offsets {
		offsets[i] = le.Uint32(c.Body[i*cluster.OffsetSize:])
	}
	require.Equal(t, uint32(len(c.Body)), offsets[count], "last offset must equal body length")
	for i := range count {
		c.Blobs = append(c.Blobs, c.Body[offsets[i]:offsets[i+1]])
	}
	return c
}

// Blob returns the payload of a content entry.
func (a *Archive) Blob(t testing.TB, e dirent.Entry) []byte {
	t.Helper()
	require.Equal(t, dirent.KindContent, e.Kind)
	require.Less(t, int(e.Cluster), len(a.Clusters))
	c := a.Clusters[e.Cluster]
	require.Less(t, int(e.Blob), len(c.Blobs))
	return c.Blobs[e.Blob]
}

// ChecksumValid reports whether the trailer matches the MD5 of all preceding
// bytes.
func (a *Archive) ChecksumValid() bool {
	sum := md5.Sum(a.Raw[:a.Header.ChecksumPos]) //nolint:gosec // format checksum
	return sum == a.Checksum
}
