// Command zimprofile builds synthetic archives repeatedly for profiling.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math/rand" //nolint:gosec // intentional use for reproducible benchmarks
	"net/http"
	_ "net/http/pprof" //nolint:gosec // intentional profiling endpoint
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"runtime/trace"
	"slices"
	"time"

	"github.com/felixge/fgprof"

	"github.com/meigma/zim"
)

type config struct {
	items        int
	itemSize     int
	namespaces   int
	redirectRate int
	source       string
	compression  string
	level        int
	workers      int
	clusterSize  uint64
	spill        string
	pattern      string
	fgProfile    string
	duration     time.Duration
	iterations   int
	pprofAddr    string
	cpuProfile   string
	memProfile   string
	traceFile    string
	tempDir      string
	keepTemp     bool
	verbose      bool
	randomSeed   int64
}

//nolint:gocognit // main function complexity is acceptable for CLI tool
func main() {
	cfg := parseFlags()

	if cfg.pprofAddr != "" {
		go func() {
			log.Printf("pprof listening on %s", cfg.pprofAddr)
			//nolint:gosec // intentional pprof server without timeouts for profiling
			if err := http.ListenAndServe(cfg.pprofAddr, nil); err != nil {
				log.Printf("pprof server error: %v", err)
			}
		}()
	}

	dir, cleanup, err := setupTempDir(cfg)
	if err != nil {
		log.Fatal(err)
	}
	if cleanup != nil {
		defer cleanup() //nolint:errcheck // cleanup errors are non-fatal in profiler
	}

	items, err := makeItems(dir, cfg)
	if err != nil {
		log.Fatal(err) //nolint:gocritic // exitAfterDefer is intentional - cleanup is best-effort
	}
	opts, err := createOptions(cfg)
	if err != nil {
		log.Fatal(err)
	}

	if cfg.fgProfile != "" {
		fgFile, fgErr := os.Create(cfg.fgProfile)
		if fgErr != nil {
			log.Fatal(fgErr)
		}
		stopFG := fgprof.Start(fgFile, fgprof.FormatPprof)
		defer func() {
			if err := stopFG(); err != nil {
				log.Printf("fgprof stop error: %v", err)
			}
			_ = fgFile.Close()
		}()
	}

	if cfg.cpuProfile != "" {
		cpuFile, cpuErr := os.Create(cfg.cpuProfile)
		if cpuErr != nil {
			log.Fatal(cpuErr)
		}
		if cpuErr = pprof.StartCPUProfile(cpuFile); cpuErr != nil {
			log.Fatal(cpuErr)
		}
		defer func() {
			pprof.StopCPUProfile()
			_ = cpuFile.Close()
		}()
	}

	if cfg.traceFile != "" {
		traceFile, traceErr := os.Create(cfg.traceFile)
		if traceErr != nil {
			log.Fatal(traceErr)
		}
		if traceErr = trace.Start(traceFile); traceErr != nil {
			log.Fatal(traceErr)
		}
		defer func() {
			trace.Stop()
			_ = traceFile.Close()
		}()
	}

	stats, err := run(cfg, dir, items, opts)
	if err != nil {
		log.Fatal(err)
	}

	if cfg.memProfile != "" {
		runtime.GC()
		f, err := os.Create(cfg.memProfile)
		if err != nil {
			log.Fatal(err)
		}
		if err := pprof.WriteHeapProfile(f); err != nil {
			log.Fatal(err)
		}
		_ = f.Close()
	}

	fmt.Printf("ops=%d input=%d output=%d clusters=%d elapsed=%s throughput=%.2f MB/s\n",
		stats.ops,
		stats.input,
		stats.output,
		stats.clusters,
		stats.elapsed,
		float64(stats.input)/(1024*1024)/stats.elapsed.Seconds(),
	)
}

type profileStats struct {
	ops      int
	input    int64
	output   int64
	clusters uint32
	elapsed  time.Duration
}

//nolint:gocritic // hugeParam acceptable for config struct in CLI tool
func run(cfg config, dir string, items []zim.Item, opts []zim.CreateOption) (profileStats, error) {
	var stats profileStats
	perOp := int64(0)
	for _, it := range items {
		if !it.IsRedirect() {
			perOp += int64(cfg.itemSize)
		}
	}

	out := filepath.Join(dir, "out.zim")
	start := time.Now()
	for {
		if cfg.iterations > 0 && stats.ops >= cfg.iterations {
			break
		}
		if cfg.iterations <= 0 && time.Since(start) >= cfg.duration {
			break
		}
		res, err := zim.CreateFile(context.Background(), out, slices.Values(items), []string{"application/octet-stream"}, opts...)
		if err != nil {
			return profileStats{}, err
		}
		stats.ops++
		stats.input += perOp
		stats.output = res.Size
		stats.clusters = res.Header.ClusterCount
	}
	stats.elapsed = time.Since(start)
	return stats, nil
}

//nolint:gocritic // hugeParam acceptable for config struct in CLI tool
func createOptions(cfg config) ([]zim.CreateOption, error) {
	opts := []zim.CreateOption{
		zim.WithClusterSize(cfg.clusterSize),
		zim.WithCompressionLevel(cfg.level),
		zim.WithCompressionWorkers(cfg.workers),
		zim.WithMainPage(itemURL(0)),
	}
	switch cfg.compression {
	case "none":
		opts = append(opts, zim.WithCompression(zim.CompressionNone))
	case "zstd":
		opts = append(opts, zim.WithCompression(zim.CompressionZstd))
	default:
		return nil, fmt.Errorf("unknown compression: %s", cfg.compression)
	}
	switch cfg.spill {
	case "none":
		opts = append(opts, zim.WithSpillCodec(zim.SpillNone))
	case "lz4":
		opts = append(opts, zim.WithSpillCodec(zim.SpillLZ4))
	case "snappy":
		opts = append(opts, zim.WithSpillCodec(zim.SpillSnappy))
	default:
		return nil, fmt.Errorf("unknown spill codec: %s", cfg.spill)
	}
	if cfg.verbose {
		opts = append(opts, zim.WithLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))))
	}
	return opts, nil
}

func parseFlags() config {
	var cfg config
	flag.IntVar(&cfg.items, "items", 4096, "number of items")
	flag.IntVar(&cfg.itemSize, "item-size", 16<<10, "payload size in bytes")
	flag.IntVar(&cfg.namespaces, "namespaces", 2, "number of namespaces, starting at 'A'")
	flag.IntVar(&cfg.redirectRate, "redirect-every", 0, "make every nth item a redirect (0 disables)")
	flag.StringVar(&cfg.source, "source", "memory", "payload source: memory or file")
	flag.StringVar(&cfg.compression, "compression", "zstd", "compression: none or zstd")
	flag.IntVar(&cfg.level, "level", 0, "zstd level (0 for default)")
	flag.IntVar(&cfg.workers, "workers", runtime.GOMAXPROCS(0), "cluster compression workers")
	flag.Uint64Var(&cfg.clusterSize, "cluster-size", zim.DefaultClusterSize, "cluster split threshold in bytes")
	flag.StringVar(&cfg.spill, "spill", "none", "spill codec: none, lz4 or snappy")
	flag.StringVar(&cfg.pattern, "pattern", "compressible", "pattern: compressible or random")
	flag.StringVar(&cfg.fgProfile, "fgprofile", "", "write fgprof (wall clock) profile to file")
	flag.DurationVar(&cfg.duration, "duration", 10*time.Second, "duration to run (ignored if iterations > 0)")
	flag.IntVar(&cfg.iterations, "iterations", 0, "number of iterations to run")
	flag.StringVar(&cfg.pprofAddr, "pprof-addr", "", "pprof listen address (e.g. :6060)")
	flag.StringVar(&cfg.cpuProfile, "cpuprofile", "", "write CPU profile to file")
	flag.StringVar(&cfg.memProfile, "memprofile", "", "write heap profile to file")
	flag.StringVar(&cfg.traceFile, "trace", "", "write trace to file")
	flag.StringVar(&cfg.tempDir, "temp-dir", "", "directory to use for payloads and output")
	flag.BoolVar(&cfg.keepTemp, "keep-temp", false, "keep temp dir after run")
	flag.BoolVar(&cfg.verbose, "v", false, "log archive creation at debug level")
	flag.Int64Var(&cfg.randomSeed, "seed", 1, "random seed")
	flag.Parse()
	if cfg.namespaces < 1 || cfg.namespaces > 26 {
		log.Fatalf("namespaces: must be between 1 and 26")
	}
	return cfg
}

//nolint:gocritic // hugeParam acceptable for config struct in CLI tool
func setupTempDir(cfg config) (string, func() error, error) {
	if cfg.tempDir != "" {
		return cfg.tempDir, nil, os.MkdirAll(cfg.tempDir, 0o755) //nolint:gosec // 0o755 is intentional for profiler temp dirs
	}
	dir, err := os.MkdirTemp("", "zim-profiler-*")
	if err != nil {
		return "", nil, err
	}
	cleanup := func() error {
		if cfg.keepTemp {
			return nil
		}
		return os.RemoveAll(dir)
	}
	return dir, cleanup, nil
}

func itemURL(i int) string { return fmt.Sprintf("item%06d", i) }

// makeItems generates items already in namespace and URL order.
//
//nolint:gocritic // hugeParam acceptable for config struct in CLI tool
func makeItems(dir string, cfg config) ([]zim.Item, error) {
	rng := rand.New(rand.NewSource(cfg.randomSeed)) //nolint:gosec // intentional use for reproducible benchmarks
	perNS := (cfg.items + cfg.namespaces - 1) / cfg.namespaces
	items := make([]zim.Item, 0, cfg.items)
	for i := range cfg.items {
		ns := byte('A' + i/max(perNS, 1))
		url := itemURL(i)
		if cfg.redirectRate > 0 && i > 0 && i%cfg.redirectRate == 0 {
			items = append(items, zim.Redirect(ns, url, "", uint32(i-1))) //nolint:gosec // bounded by item count
			continue
		}

		content := make([]byte, cfg.itemSize)
		switch cfg.pattern {
		case "random":
			if _, err := rng.Read(content); err != nil {
				return nil, err
			}
		default:
			fillByte := byte('a' + (i % 26))
			for j := range content {
				content[j] = fillByte
			}
			if len(content) > 0 {
				content[0] = byte(i)
			}
		}

		var payload zim.Payload = zim.BytesPayload(content)
		if cfg.source == "file" {
			path := filepath.Join(dir, "payloads", url)
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { //nolint:gosec // 0o755 is intentional for profiler
				return nil, err
			}
			if err := os.WriteFile(path, content, 0o644); err != nil { //nolint:gosec // 0o644 is intentional for profiler test files
				return nil, err
			}
			payload = zim.FilePayload(path)
		}
		items = append(items, zim.Content(ns, url, "", 0, payload))
	}
	return items, nil
}
