package zim

import (
	"errors"
	"fmt"

	"github.com/meigma/zim/internal/cluster"
	"github.com/meigma/zim/internal/collector"
	"github.com/meigma/zim/internal/ioutil"
)

var (
	// ErrSizeOverflow is returned when a count or offset does not fit its
	// field in the archive layout.
	ErrSizeOverflow = errors.New("zim: size overflow")

	// ErrTooManyItems is returned when the item sequence has more entries
	// than the u32 article count can represent.
	ErrTooManyItems = errors.New("zim: too many items")

	// ErrLayoutMismatch is returned when a section does not start at the
	// position computed for it in advance. It indicates a bug in offset
	// arithmetic; the output must be discarded.
	ErrLayoutMismatch = errors.New("zim: internal layout mismatch")

	// ErrOutputNotEmpty is returned when the output is not positioned at
	// offset 0.
	ErrOutputNotEmpty = errors.New("zim: output not at offset 0")
)

// isOverflow reports whether err is one of the internal overflow errors.
func isOverflow(err error) bool {
	return errors.Is(err, cluster.ErrOffsetOverflow) ||
		errors.Is(err, collector.ErrOffsetOverflow) ||
		errors.Is(err, ioutil.ErrOverflow)
}

// wrapOverflowErr maps internal overflow errors onto ErrSizeOverflow while
// keeping the original error in the chain.
func wrapOverflowErr(err error) error {
	if isOverflow(err) {
		return fmt.Errorf("%w: %w", ErrSizeOverflow, err)
	}
	return err
}
