package zim

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/meigma/zim/internal/cluster"
	"github.com/meigma/zim/internal/collector"
)

// DefaultClusterSize is the cluster split threshold used when no
// WithClusterSize option is set.
const DefaultClusterSize = 1_000_000

// Compression identifies the compression applied to clusters.
type Compression = cluster.Compression

const (
	// CompressionNone stores clusters uncompressed.
	CompressionNone = cluster.CompressionNone

	// CompressionZstd compresses each cluster body with zstd.
	CompressionZstd = cluster.CompressionZstd
)

// SpillCodec selects the encoding of the temporary files that hold
// directory entries and clusters during creation. It does not change the
// archive bytes.
type SpillCodec = collector.Codec

const (
	SpillNone   = collector.CodecNone
	SpillLZ4    = collector.CodecLZ4
	SpillSnappy = collector.CodecSnappy
)

// createConfig holds configuration for archive creation.
type createConfig struct {
	clusterSize      uint64
	compression      Compression
	compressionLevel int
	workers          int
	mainPage         string
	layoutPage       string
	uuid             uuid.UUID
	tempDir          string
	spillCodec       SpillCodec
	logger           *slog.Logger
	progress         ProgressFunc
}

func defaultCreateConfig() createConfig {
	return createConfig{
		clusterSize: DefaultClusterSize,
		compression: CompressionNone,
		workers:     1,
	}
}

func (cfg *createConfig) validate() error {
	if !cfg.compression.Valid() {
		return fmt.Errorf("zim: unsupported compression %d", cfg.compression)
	}
	if !cfg.spillCodec.Valid() {
		return fmt.Errorf("zim: unsupported spill codec %d", cfg.spillCodec)
	}
	if cfg.compressionLevel < 0 || cfg.compressionLevel > 22 {
		return fmt.Errorf("zim: compression level %d out of range", cfg.compressionLevel)
	}
	return nil
}

// CreateOption configures archive creation.
type CreateOption func(*createConfig)

// WithClusterSize sets the cluster split threshold. A cluster is closed
// before the next item once its blobs exceed n bytes. Zero restores
// DefaultClusterSize.
func WithClusterSize(n uint64) CreateOption {
	return func(cfg *createConfig) {
		if n == 0 {
			n = DefaultClusterSize
		}
		cfg.clusterSize = n
	}
}

// WithCompression sets the cluster compression.
func WithCompression(c Compression) CreateOption {
	return func(cfg *createConfig) {
		cfg.compression = c
	}
}

// WithCompressionLevel sets the zstd level (1-22). Zero uses the zstd default.
func WithCompressionLevel(level int) CreateOption {
	return func(cfg *createConfig) {
		cfg.compressionLevel = level
	}
}

// WithCompressionWorkers compresses up to n closed clusters concurrently
// while later items are still being read. The archive bytes do not depend
// on n. Values below 1 are treated as 1.
func WithCompressionWorkers(n int) CreateOption {
	return func(cfg *createConfig) {
		if n < 1 {
			n = 1
		}
		cfg.workers = n
	}
}

// WithMainPage records the item with the given URL as the main page. If no
// item has that URL a warning is logged and the header keeps NoPage.
func WithMainPage(url string) CreateOption {
	return func(cfg *createConfig) {
		cfg.mainPage = url
	}
}

// WithLayoutPage records the item with the given URL as the layout page,
// with the same lookup rules as WithMainPage.
func WithLayoutPage(url string) CreateOption {
	return func(cfg *createConfig) {
		cfg.layoutPage = url
	}
}

// WithUUID sets the archive UUID. By default a random UUID is generated.
func WithUUID(id uuid.UUID) CreateOption {
	return func(cfg *createConfig) {
		cfg.uuid = id
	}
}

// WithTempDir sets the directory for spill files. Empty uses os.TempDir.
func WithTempDir(dir string) CreateOption {
	return func(cfg *createConfig) {
		cfg.tempDir = dir
	}
}

// WithSpillCodec sets the encoding of spill files.
func WithSpillCodec(c SpillCodec) CreateOption {
	return func(cfg *createConfig) {
		cfg.spillCodec = c
	}
}

// WithLogger sets the logger for archive creation.
// If not set, logging is disabled.
func WithLogger(logger *slog.Logger) CreateOption {
	return func(cfg *createConfig) {
		cfg.logger = logger
	}
}

// WithProgress sets a callback that receives progress updates.
func WithProgress(fn ProgressFunc) CreateOption {
	return func(cfg *createConfig) {
		cfg.progress = fn
	}
}
