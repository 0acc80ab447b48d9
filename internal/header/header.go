// Package header implements the fixed-size archive header.
//
// The header is produced in two phases. A Builder collects counts and
// positions while the archive body is written behind a reserved region of
// Size bytes; once every dependent position is known the Builder is sealed
// into an immutable Header which is written back at offset 0.
package header

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
)

const (
	// Magic identifies the archive format.
	Magic uint32 = 72173914

	// Version is the format version written by this package.
	Version uint32 = 5

	// Size is the encoded header length in bytes.
	Size = 80

	// Sentinel marks an absent main page or layout page.
	Sentinel uint32 = 0xFFFFFFFF
)

// ErrIncomplete is returned by Seal when a required field was never set.
var ErrIncomplete = errors.New("header: incomplete")

// Header is a sealed archive header. All positions are absolute file offsets.
type Header struct {
	Magic         uint32
	Version       uint32
	UUID          [16]byte
	ArticleCount  uint32
	ClusterCount  uint32
	URLPtrPos     uint64
	TitlePtrPos   uint64
	ClusterPtrPos uint64
	MimeListPos   uint64
	MainPage      uint32
	LayoutPage    uint32
	ChecksumPos   uint64
}

// HasMainPage reports whether a main page is recorded.
func (h Header) HasMainPage() bool { return h.MainPage != Sentinel }

// HasLayoutPage reports whether a layout page is recorded.
func (h Header) HasLayoutPage() bool { return h.LayoutPage != Sentinel }

// AppendBinary appends the little-endian encoding of h to dst.
func (h Header) AppendBinary(dst []byte) ([]byte, error) {
	dst = binary.LittleEndian.AppendUint32(dst, h.Magic)
	dst = binary.LittleEndian.AppendUint32(dst, h.Version)
	dst = append(dst, h.UUID[:]...)
	dst = binary.LittleEndian.AppendUint32(dst, h.ArticleCount)
	dst = binary.LittleEndian.AppendUint32(dst, h.ClusterCount)
	dst = binary.LittleEndian.AppendUint64(dst, h.URLPtrPos)
	dst = binary.LittleEndian.AppendUint64(dst, h.TitlePtrPos)
	dst = binary.LittleEndian.AppendUint64(dst, h.ClusterPtrPos)
	dst = binary.LittleEndian.AppendUint64(dst, h.MimeListPos)
	dst = binary.LittleEndian.AppendUint32(dst, h.MainPage)
	dst = binary.LittleEndian.AppendUint32(dst, h.LayoutPage)
	dst = binary.LittleEndian.AppendUint64(dst, h.ChecksumPos)
	return dst, nil
}

// MarshalBinary returns the Size-byte encoding of h.
func (h Header) MarshalBinary() ([]byte, error) {
	return h.AppendBinary(make([]byte, 0, Size))
}

type field uint16

const (
	fieldArticleCount field = 1 << iota
	fieldClusterCount
	fieldURLPtrPos
	fieldTitlePtrPos
	fieldClusterPtrPos
	fieldMimeListPos
	fieldChecksumPos

	requiredFields = fieldArticleCount | fieldClusterCount | fieldURLPtrPos |
		fieldTitlePtrPos | fieldClusterPtrPos | fieldMimeListPos | fieldChecksumPos
)

var fieldNames = []struct {
	f    field
	name string
}{
	{fieldArticleCount, "articleCount"},
	{fieldClusterCount, "clusterCount"},
	{fieldURLPtrPos, "urlPtrPos"},
	{fieldTitlePtrPos, "titlePtrPos"},
	{fieldClusterPtrPos, "clusterPtrPos"},
	{fieldMimeListPos, "mimeListPos"},
	{fieldChecksumPos, "checksumPos"},
}

// Builder accumulates header fields while the archive body is written.
// The zero value is not usable; use NewBuilder.
type Builder struct {
	h   Header
	set field
}

// NewBuilder returns a Builder for an archive with the given UUID.
// Main page and layout page start at Sentinel.
func NewBuilder(uuid [16]byte) *Builder {
	return &Builder{h: Header{
		Magic:      Magic,
		Version:    Version,
		UUID:       uuid,
		MainPage:   Sentinel,
		LayoutPage: Sentinel,
	}}
}

func (b *Builder) SetMimeListPos(pos uint64)   { b.h.MimeListPos = pos; b.set |= fieldMimeListPos }
func (b *Builder) SetURLPtrPos(pos uint64)     { b.h.URLPtrPos = pos; b.set |= fieldURLPtrPos }
func (b *Builder) SetTitlePtrPos(pos uint64)   { b.h.TitlePtrPos = pos; b.set |= fieldTitlePtrPos }
func (b *Builder) SetClusterPtrPos(pos uint64) { b.h.ClusterPtrPos = pos; b.set |= fieldClusterPtrPos }
func (b *Builder) SetChecksumPos(pos uint64)   { b.h.ChecksumPos = pos; b.set |= fieldChecksumPos }
func (b *Builder) SetArticleCount(n uint32)    { b.h.ArticleCount = n; b.set |= fieldArticleCount }
func (b *Builder) SetClusterCount(n uint32)    { b.h.ClusterCount = n; b.set |= fieldClusterCount }

// SetMainPage records the article index of the main page.
func (b *Builder) SetMainPage(idx uint32) { b.h.MainPage = idx }

// SetLayoutPage records the article index of the layout page.
func (b *Builder) SetLayoutPage(idx uint32) { b.h.LayoutPage = idx }

// Seal returns the finished Header, or ErrIncomplete naming the fields that
// were never set.
func (b *Builder) Seal() (Header, error) {
	if missing := requiredFields &^ b.set; missing != 0 {
		var names []string
		for _, fn := range fieldNames {
			if missing&fn.f != 0 {
				names = append(names, fn.name)
			}
		}
		return Header{}, fmt.Errorf("%w: missing %s", ErrIncomplete, strings.Join(names, ", "))
	}
	return b.h, nil
}
