package cluster

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Compression identifies the compression applied to a cluster. The value is
// the cluster's leading type byte.
type Compression uint8

const (
	CompressionNone Compression = 0
	CompressionZstd Compression = 5
)

// String returns the human-readable name of the compression algorithm.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZstd:
		return "zstd"
	default:
		return "unknown"
	}
}

// Valid reports whether c is a supported compression.
func (c Compression) Valid() bool {
	return c == CompressionNone || c == CompressionZstd
}

// Compressor compresses encoded cluster bodies. A Compressor is safe for
// concurrent use; Close releases the underlying zstd encoder.
type Compressor struct {
	kind Compression
	zenc *zstd.Encoder
}

// NewCompressor creates a Compressor for kind. level is a zstd compression
// level (1-22); zero selects the zstd default. concurrency bounds how many
// clusters can be compressed at once and should match the pipeline's
// worker count.
func NewCompressor(kind Compression, level, concurrency int) (*Compressor, error) {
	c := &Compressor{kind: kind}
	switch kind {
	case CompressionNone:
	case CompressionZstd:
		opts := []zstd.EOption{zstd.WithEncoderConcurrency(max(concurrency, 1))}
		if level != 0 {
			opts = append(opts, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
		}
		enc, err := zstd.NewWriter(nil, opts...)
		if err != nil {
			return nil, fmt.Errorf("create zstd encoder: %w", err)
		}
		c.zenc = enc
	default:
		return nil, fmt.Errorf("cluster: unsupported compression %d", kind)
	}
	return c, nil
}

// Kind returns the compression applied by c.
func (c *Compressor) Kind() Compression { return c.kind }

// compress appends the compressed form of src to dst.
func (c *Compressor) compress(dst, src []byte) []byte {
	if c.zenc == nil {
		return append(dst, src...)
	}
	return c.zenc.EncodeAll(src, dst)
}

// Close releases encoder resources.
func (c *Compressor) Close() error {
	if c.zenc != nil {
		return c.zenc.Close()
	}
	return nil
}
