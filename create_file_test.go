package zim

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/zim/internal/testutil"
)

func TestCreateFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out.zim")
	res, err := CreateFile(context.Background(), path, slices.Values(threeItems()), testMimeTypes,
		WithMainPage("A/b.html"), WithCompression(CompressionZstd))
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, res.Size, int64(len(raw)))

	a := testutil.ParseArchive(t, raw)
	assert.Equal(t, uint32(1), a.Header.MainPage)
	assert.True(t, a.ChecksumValid())

	// Only the archive remains: no temp output or spill files.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "out.zim", entries[0].Name())
}

func TestCreateFile_FailureLeavesNothing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "out.zim")
	errRead := errors.New("read failed")
	items := []Item{
		Content('A', "a", "", 0, BytesPayload("a")),
		Content('A', "b", "", 0, PayloadFunc(func() (io.ReadCloser, error) { return nil, errRead })),
	}

	_, err := CreateFile(context.Background(), path, slices.Values(items), testMimeTypes)
	require.ErrorIs(t, err, errRead)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCreateFile_ReplacesExisting(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.zim")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o644))

	res, err := CreateFile(context.Background(), path, slices.Values(threeItems()), testMimeTypes)
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, res.Size, int64(len(raw)))
}
