package dirent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentEncoding(t *testing.T) {
	t.Parallel()

	e := Content('A', "a.html", "Alpha", 1, 7, 2, 3)
	raw, err := e.MarshalBinary()
	require.NoError(t, err)

	want := []byte{
		1, 0, // mimetype
		0,          // parameter length
		'A',        // namespace
		7, 0, 0, 0, // revision
		2, 0, 0, 0, // cluster
		3, 0, 0, 0, // blob
	}
	want = append(want, "a.html\x00Alpha\x00"...)
	assert.Equal(t, want, raw)
	assert.Equal(t, len(want), e.Size())
}

func TestRedirectEncoding(t *testing.T) {
	t.Parallel()

	e := Redirect('A', "old.html", "", 0, 5)
	raw, err := e.MarshalBinary()
	require.NoError(t, err)

	want := []byte{
		0xFF, 0xFF, // redirect marker
		0,
		'A',
		0, 0, 0, 0,
		5, 0, 0, 0, // target
	}
	want = append(want, "old.html\x00\x00"...)
	assert.Equal(t, want, raw)
	assert.Equal(t, len(want), e.Size())
}

func TestSizeDependsOnStrings(t *testing.T) {
	t.Parallel()

	short := Content('A', "a", "", 0, 0, 0, 0)
	long := Content('A', "a/longer/path.html", "A longer title", 0, 0, 0, 0)
	assert.Equal(t, 19, short.Size())
	assert.Equal(t, short.Size()+len("/longer/path.html")+len("A longer title"), long.Size())

	redirect := Redirect('A', "a", "", 0, 0)
	assert.Equal(t, short.Size()-4, redirect.Size())
}

func TestRedirectIgnoresMimeType(t *testing.T) {
	t.Parallel()

	e := Redirect('A', "x", "", 0, 1)
	e.MimeType = 3
	raw, err := e.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFF, 0xFF}, raw[:2])
}

func TestUTF8Strings(t *testing.T) {
	t.Parallel()

	e := Content('A', "café.html", "Café", 0, 0, 0, 0)
	raw, err := e.MarshalBinary()
	require.NoError(t, err)
	assert.Len(t, raw, e.Size())
	assert.Contains(t, string(raw), "café.html\x00Café\x00")
}

func TestKindString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "content", KindContent.String())
	assert.Equal(t, "redirect", KindRedirect.String())
	assert.Equal(t, "unknown", Kind(9).String())
}
