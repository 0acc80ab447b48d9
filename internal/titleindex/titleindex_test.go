package titleindex

import (
	"encoding/binary"
	"fmt"
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	t.Parallel()

	titles := []string{"Zebra", "apple", "Mango", "Banana"}
	got := Build(titles)
	assert.Equal(t, []uint32{3, 2, 0, 1}, got)
}

func TestBuildEmpty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, Build(nil))
	assert.Empty(t, AppendBinary(nil, nil))
}

func TestBuildStableTies(t *testing.T) {
	t.Parallel()

	titles := []string{"same", "alpha", "same", "same", "alpha"}
	got := Build(titles)
	assert.Equal(t, []uint32{1, 4, 0, 2, 3}, got)
}

func TestBuildPermutationProperty(t *testing.T) {
	t.Parallel()

	rnd := rand.New(rand.NewSource(1))
	titles := make([]string, 500)
	for i := range titles {
		titles[i] = fmt.Sprintf("t%02d", rnd.Intn(40))
	}

	got := Build(titles)
	require.Len(t, got, len(titles))

	seen := make([]bool, len(titles))
	for _, i := range got {
		require.False(t, seen[i], "index %d repeated", i)
		seen[i] = true
	}

	for k := 1; k < len(got); k++ {
		prev, cur := got[k-1], got[k]
		require.LessOrEqual(t, titles[prev], titles[cur])
		if titles[prev] == titles[cur] {
			require.Less(t, prev, cur, "equal titles must keep article order")
		}
	}

	sorted := slices.Clone(titles)
	slices.Sort(sorted)
	for k, i := range got {
		assert.Equal(t, sorted[k], titles[i])
	}
}

func TestAppendBinary(t *testing.T) {
	t.Parallel()

	raw := AppendBinary(nil, []uint32{2, 0, 1})
	require.Len(t, raw, 3*EntrySize)
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(raw[0:]))
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(raw[4:]))
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(raw[8:]))
}

func TestSortKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Title", SortKey("Title", "url.html"))
	assert.Equal(t, "url.html", SortKey("", "url.html"))
}
