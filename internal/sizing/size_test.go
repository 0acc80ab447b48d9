package sizing

import (
	"errors"
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTest = errors.New("overflow")

func TestIntToUint32(t *testing.T) {
	t.Parallel()

	got, err := IntToUint32(42, errTest)
	require.NoError(t, err)
	assert.Equal(t, uint32(42), got)

	_, err = IntToUint32(-1, errTest)
	assert.ErrorIs(t, err, errTest)

	if strconv.IntSize == 64 {
		var limit uint64 = math.MaxUint32
		got, err = IntToUint32(int(limit), errTest)
		require.NoError(t, err)
		assert.Equal(t, uint32(math.MaxUint32), got)

		_, err = IntToUint32(int(limit+1), errTest)
		assert.ErrorIs(t, err, errTest)
	}
}

func TestToInt64(t *testing.T) {
	t.Parallel()

	_, err := ToInt64(math.MaxUint64, errTest)
	assert.ErrorIs(t, err, errTest)

	got, err := ToInt64(7, errTest)
	require.NoError(t, err)
	assert.Equal(t, int64(7), got)
}

func TestAddUint64(t *testing.T) {
	t.Parallel()

	sum, ok := AddUint64(1, 2)
	assert.True(t, ok)
	assert.Equal(t, uint64(3), sum)

	_, ok = AddUint64(math.MaxUint64, 1)
	assert.False(t, ok)
}

func TestMulAddUint64(t *testing.T) {
	t.Parallel()

	got, ok := MulAddUint64(100, 3, 12)
	assert.True(t, ok)
	assert.Equal(t, uint64(136), got)

	_, ok = MulAddUint64(0, math.MaxUint64/2, 8)
	assert.False(t, ok)

	got, ok = MulAddUint64(5, math.MaxUint64, 0)
	assert.True(t, ok)
	assert.Equal(t, uint64(5), got)
}
