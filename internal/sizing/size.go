// Package sizing provides safe size arithmetic and conversions to prevent overflow
// of the fixed-width fields in the archive layout.
package sizing

import "math"

// IntToUint32 converts a non-negative int to uint32, returning overflowErr if
// it is negative or doesn't fit.
func IntToUint32(n int, overflowErr error) (uint32, error) {
	if n < 0 || uint64(n) > math.MaxUint32 {
		return 0, overflowErr
	}
	return uint32(n), nil
}

// ToInt64 converts a uint64 to int64, returning overflowErr if it doesn't fit.
func ToInt64(size uint64, overflowErr error) (int64, error) {
	if size > uint64(math.MaxInt64) {
		return 0, overflowErr
	}
	return int64(size), nil
}

// AddUint64 adds two uint64 values, returning (result, false) on overflow.
func AddUint64(a, b uint64) (uint64, bool) {
	sum := a + b
	if sum < a {
		return 0, false
	}
	return sum, true
}

// MulAddUint64 returns base + n*width, returning (result, false) on overflow.
func MulAddUint64(base, n, width uint64) (uint64, bool) {
	if width != 0 && n > math.MaxUint64/width {
		return 0, false
	}
	return AddUint64(base, n*width)
}
