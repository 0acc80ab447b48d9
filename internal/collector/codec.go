package collector

import (
	"io"

	"github.com/golang/snappy"
	"github.com/pierrec/lz4/v4"
)

// Codec selects how records are encoded in the spill file. It never affects
// the bytes returned by Data.
type Codec uint8

const (
	// CodecNone stores records verbatim.
	CodecNone Codec = iota

	// CodecLZ4 stores records as an LZ4 frame.
	CodecLZ4

	// CodecSnappy stores records in the snappy framing format.
	CodecSnappy
)

// String returns the human-readable name of the codec.
func (c Codec) String() string {
	switch c {
	case CodecNone:
		return "none"
	case CodecLZ4:
		return "lz4"
	case CodecSnappy:
		return "snappy"
	default:
		return "unknown"
	}
}

// Valid reports whether c is a known codec.
func (c Codec) Valid() bool {
	return c <= CodecSnappy
}

// writer wraps w with the codec's encoder, or returns nil for CodecNone.
func (c Codec) writer(w io.Writer) io.WriteCloser {
	switch c {
	case CodecLZ4:
		return lz4.NewWriter(w)
	case CodecSnappy:
		return snappy.NewBufferedWriter(w)
	default:
		return nil
	}
}

func (c Codec) reader(r io.Reader) (io.ReadCloser, error) {
	switch c {
	case CodecLZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	case CodecSnappy:
		return io.NopCloser(snappy.NewReader(r)), nil
	default:
		return io.NopCloser(r), nil
	}
}
