package zim

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemConstructors(t *testing.T) {
	t.Parallel()

	c := Content(NamespaceArticle, "a.html", "A", 2, BytesPayload("x"))
	assert.False(t, c.IsRedirect())
	assert.Equal(t, uint16(2), c.MimeType)

	r := Redirect(NamespaceArticle, "b.html", "B", 4)
	assert.True(t, r.IsRedirect())
	assert.Equal(t, uint32(4), r.RedirectIndex)
}

func TestPayloads(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "f")
	require.NoError(t, os.WriteFile(path, []byte("file"), 0o644))

	for name, p := range map[string]Payload{
		"bytes": BytesPayload("file"),
		"file":  FilePayload(path),
		"func":  PayloadFunc(func() (io.ReadCloser, error) { return BytesPayload("file").Open() }),
	} {
		rc, err := p.Open()
		require.NoError(t, err, name)
		got, err := io.ReadAll(rc)
		require.NoError(t, err, name)
		require.NoError(t, rc.Close())
		assert.Equal(t, "file", string(got), name)
	}

	_, err := FilePayload(filepath.Join(t.TempDir(), "missing")).Open()
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestProgressStageString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "clustering", StageClustering.String())
	assert.Equal(t, "checksumming", StageChecksumming.String())
}
