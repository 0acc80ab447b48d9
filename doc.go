// Package zim writes offline content archives in the ZIM container format.
//
// An archive is produced in a single forward pass from a sequence of items
// that the caller has already sorted by namespace and then URL:
//
//	header | mimetype list | URL pointers | title pointers | directory entries |
//	cluster pointers | clusters | checksum
//
// Payloads are grouped into clusters bounded by size and namespace and may
// be compressed with zstd. Directory entries and clusters are collected in
// temporary spill files while the items are consumed, so memory use is
// bounded by the cluster size plus a few words per item. The header is
// reserved up front and written back once every offset is known, and an MD5
// checksum of the whole file is appended last.
//
// # Quick Start
//
//	items := []zim.Item{
//	    zim.Content(zim.NamespaceArticle, "index.html", "Home", 0, zim.BytesPayload(home)),
//	    zim.Content(zim.NamespaceArticle, "notes.txt", "", 1, zim.FilePayload("/srv/notes.txt")),
//	}
//	res, err := zim.CreateFile(ctx, "out.zim", slices.Values(items),
//	    []string{"text/html", "text/plain"},
//	    zim.WithMainPage("index.html"),
//	    zim.WithCompression(zim.CompressionZstd),
//	)
//
// The caller is responsible for ordering items, for keeping mimetype indices
// in range, and for URL uniqueness; none of these are validated.
package zim
