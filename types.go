package zim

import (
	"bytes"
	"io"
	"os"

	"github.com/meigma/zim/internal/header"
)

// Common namespaces.
const (
	NamespaceLayout   byte = '-'
	NamespaceArticle  byte = 'A'
	NamespaceImage    byte = 'I'
	NamespaceMetadata byte = 'M'
)

// NoPage is the header value recorded when no main page or layout page is set.
const NoPage = header.Sentinel

// Header is the sealed archive header written at offset 0.
type Header = header.Header

// Payload provides the content of an item. Open is called at most once, when
// the item is consumed, so large payloads need not be held in memory before
// the archive is written.
type Payload interface {
	Open() (io.ReadCloser, error)
}

// BytesPayload is an in-memory payload.
type BytesPayload []byte

// Open implements Payload.
func (b BytesPayload) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(b)), nil
}

// FilePayload is a payload read from the named file at write time.
type FilePayload string

// Open implements Payload.
func (p FilePayload) Open() (io.ReadCloser, error) {
	return os.Open(string(p))
}

// PayloadFunc adapts a function to the Payload interface.
type PayloadFunc func() (io.ReadCloser, error)

// Open implements Payload.
func (f PayloadFunc) Open() (io.ReadCloser, error) { return f() }

// Item is one entry of the archive: either content with a payload or a
// redirect to another item.
type Item struct {
	// Namespace is the single-character category of the item.
	Namespace byte

	// URL is the item's path within its namespace.
	URL string

	// Title is the human-readable title. An empty title sorts by URL.
	Title string

	// MimeType is an index into the archive's mimetype list. It is not
	// stored for redirects: their entries carry the 0xFFFF redirect marker
	// in the mimetype field, which is how readers tell the two entry kinds
	// apart. Earlier writers copied the item's mimetype into redirect entries
	// too, making them indistinguishable from content; this writer does not,
	// so a redirect's MimeType does not round-trip.
	MimeType uint16

	// Revision is stored verbatim in the directory entry.
	Revision uint32

	// Payload is the item's content. A nil Payload makes the item a redirect.
	Payload Payload

	// RedirectIndex is the article index a redirect points at, i.e. the
	// target's position in the sorted item sequence.
	RedirectIndex uint32
}

// IsRedirect reports whether the item is a redirect.
func (it Item) IsRedirect() bool { return it.Payload == nil }

// Content returns a content item.
func Content(ns byte, url, title string, mime uint16, payload Payload) Item {
	return Item{Namespace: ns, URL: url, Title: title, MimeType: mime, Payload: payload}
}

// Redirect returns an item redirecting to the article at index target.
func Redirect(ns byte, url, title string, target uint32) Item {
	return Item{Namespace: ns, URL: url, Title: title, RedirectIndex: target}
}
