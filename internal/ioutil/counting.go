// Package ioutil provides small io helpers shared by the archive writer.
package ioutil

import (
	"errors"
	"io"
)

// ErrOverflow indicates a counter exceeded its maximum value.
var ErrOverflow = errors.New("counter overflow")

// CountingWriter wraps a writer and counts bytes written.
//
// N starts at whatever the caller sets, so a CountingWriter can track an
// absolute file position rather than a relative byte count.
type CountingWriter struct {
	W io.Writer
	N uint64
}

// Write implements io.Writer.
func (cw *CountingWriter) Write(p []byte) (int, error) {
	n, err := cw.W.Write(p)
	if n > 0 {
		//nolint:gosec // n is guaranteed non-negative by io.Writer contract
		if cw.N > ^uint64(0)-uint64(n) {
			return n, ErrOverflow
		}
		cw.N += uint64(n) //nolint:gosec // overflow checked above
	}
	return n, err
}

// WriteZeros writes n zero bytes.
func (cw *CountingWriter) WriteZeros(n int) error {
	var zeros [256]byte
	for n > 0 {
		chunk := min(n, len(zeros))
		if _, err := cw.Write(zeros[:chunk]); err != nil {
			return err
		}
		n -= chunk
	}
	return nil
}
