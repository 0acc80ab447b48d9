package zim

import (
	"context"
	"fmt"
	"iter"
	"os"
	"path/filepath"
)

// CreateFile creates an archive at path.
//
// The archive is written to a temporary file in the same directory and
// renamed to path only after the checksum has been appended, so a failed or
// interrupted run never leaves a partial archive at path. Parent directories
// are created as needed. Spill files go to the destination directory unless
// WithTempDir is given.
func CreateFile(ctx context.Context, path string, items iter.Seq[Item], mimetypes []string, opts ...CreateOption) (*Result, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create destination directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".zim-*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	opts = append([]CreateOption{WithTempDir(dir)}, opts...)
	res, err := Create(ctx, items, mimetypes, tmp, opts...)
	if err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return nil, fmt.Errorf("create archive: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return nil, fmt.Errorf("sync archive: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("close archive: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("rename archive: %w", err)
	}
	return res, nil
}
