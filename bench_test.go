package zim

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"slices"
	"testing"
)

type benchPattern string

const (
	benchPatternCompressible benchPattern = "compressible"
	benchPatternRandom       benchPattern = "random"
)

func makeBenchItems(b *testing.B, count, size int, pattern benchPattern) []Item {
	b.Helper()
	rng := rand.New(rand.NewSource(1)) //nolint:gosec // intentional use for reproducible benchmarks
	items := make([]Item, 0, count)
	for i := range count {
		content := make([]byte, size)
		switch pattern {
		case benchPatternRandom:
			if _, err := rng.Read(content); err != nil {
				b.Fatal(err)
			}
		default:
			for j := range content {
				content[j] = byte('a' + (i % 26))
			}
		}
		items = append(items, Content(NamespaceArticle, fmt.Sprintf("item%05d", i), "", 0, BytesPayload(content)))
	}
	return items
}

func BenchmarkCreate(b *testing.B) {
	cases := []struct {
		name        string
		itemCount   int
		itemSize    int
		compression Compression
		workers     int
		pattern     benchPattern
	}{
		{"items=1024/size=16k/none/compressible", 1024, 16 << 10, CompressionNone, 1, benchPatternCompressible},
		{"items=1024/size=16k/zstd/compressible", 1024, 16 << 10, CompressionZstd, 1, benchPatternCompressible},
		{"items=1024/size=16k/zstd/random", 1024, 16 << 10, CompressionZstd, 1, benchPatternRandom},
		{"items=1024/size=16k/zstd/random/workers=4", 1024, 16 << 10, CompressionZstd, 4, benchPatternRandom},
	}

	for _, bc := range cases {
		b.Run(bc.name, func(b *testing.B) {
			items := makeBenchItems(b, bc.itemCount, bc.itemSize, bc.pattern)
			b.SetBytes(int64(bc.itemCount * bc.itemSize))

			f, err := os.CreateTemp(b.TempDir(), "bench-*.zim")
			if err != nil {
				b.Fatal(err)
			}
			defer f.Close()
			opts := []CreateOption{
				WithTempDir(b.TempDir()),
				WithCompression(bc.compression),
				WithCompressionWorkers(bc.workers),
				WithClusterSize(256 << 10),
			}

			b.ReportAllocs()
			b.ResetTimer()
			for b.Loop() {
				if err := f.Truncate(0); err != nil {
					b.Fatal(err)
				}
				if _, err := f.Seek(0, io.SeekStart); err != nil {
					b.Fatal(err)
				}
				if _, err := Create(context.Background(), slices.Values(items), testMimeTypes, f, opts...); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
