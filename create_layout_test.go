package zim

import (
	"io"
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/zim/internal/collector"
	"github.com/meigma/zim/internal/dirent"
	"github.com/meigma/zim/internal/header"
	"github.com/meigma/zim/internal/ioutil"
	"github.com/meigma/zim/internal/testutil"
)

func newTestCollector(t *testing.T, records ...string) *collector.Collector {
	t.Helper()
	c, err := collector.New(t.TempDir(), collector.CodecNone)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	for _, r := range records {
		require.NoError(t, c.Append([]byte(r)))
	}
	return c
}

func TestWriteIndex_TitleCountMismatch(t *testing.T) {
	t.Parallel()

	// One directory entry but two titles: the title table runs past the
	// position reserved for the entries.
	w := &writer{
		entries: newTestCollector(t, "entry"),
		titles:  []string{"a", "b"},
		urls:    []string{"a"},
	}
	cw := &ioutil.CountingWriter{W: io.Discard, N: header.Size}

	err := w.writeIndex(cw, header.NewBuilder([16]byte{}))
	require.ErrorIs(t, err, ErrLayoutMismatch)
	assert.Contains(t, err.Error(), "directory entries expected at")
}

// shortWriter accepts only half of each write and reports no error.
type shortWriter struct{}

func (shortWriter) Write(p []byte) (int, error) { return len(p) / 2, nil }

func TestWriteClusters_CursorMismatch(t *testing.T) {
	t.Parallel()

	w := &writer{clusters: newTestCollector(t, "cluster-0", "cluster-1")}
	cw := &ioutil.CountingWriter{W: shortWriter{}, N: header.Size}

	err := w.writeClusters(cw, header.NewBuilder([16]byte{}))
	require.ErrorIs(t, err, ErrLayoutMismatch)
	assert.Contains(t, err.Error(), "clusters expected at")
}

func TestCheckItemLimit(t *testing.T) {
	t.Parallel()

	require.NoError(t, checkItemLimit(0))
	require.NoError(t, checkItemLimit(1<<20))
	assert.ErrorIs(t, checkItemLimit(math.MaxInt), ErrTooManyItems)

	if strconv.IntSize == 64 {
		var limit uint64 = math.MaxUint32
		require.NoError(t, checkItemLimit(int(limit-1)))
		assert.ErrorIs(t, checkItemLimit(int(limit)), ErrTooManyItems)
	}
}

func TestCreate_RedirectMimeTypeMarker(t *testing.T) {
	t.Parallel()

	redirect := Redirect('A', "b.html", "B", 0)
	redirect.MimeType = 1
	items := []Item{
		Content('A', "a.html", "A", 1, BytesPayload("a")),
		redirect,
	}
	_, raw := createArchive(t, items, testMimeTypes)
	a := testutil.ParseArchive(t, raw)

	require.Len(t, a.Entries, 2)
	assert.Equal(t, uint16(1), a.Entries[0].MimeType)
	assert.Equal(t, dirent.KindRedirect, a.Entries[1].Kind)
	assert.Equal(t, dirent.RedirectMimeType, a.Entries[1].MimeType)
}
