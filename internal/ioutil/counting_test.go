package ioutil

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountingWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	cw := &CountingWriter{W: &buf, N: 80}

	_, err := cw.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, uint64(85), cw.N)
	assert.Equal(t, "hello", buf.String())
}

func TestCountingWriterZeros(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	cw := &CountingWriter{W: &buf}

	require.NoError(t, cw.WriteZeros(600))
	assert.Equal(t, uint64(600), cw.N)
	assert.Equal(t, make([]byte, 600), buf.Bytes())
}

func TestCountingWriterOverflow(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	cw := &CountingWriter{W: &buf, N: math.MaxUint64 - 1}

	_, err := cw.Write([]byte("ab"))
	assert.ErrorIs(t, err, ErrOverflow)
}
