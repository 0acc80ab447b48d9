// Package cluster groups payload blobs into clusters and encodes them.
//
// An encoded cluster is a single compression type byte followed by the
// cluster body. The body is an offset table of blob count + 1 little-endian
// u32 values, then the blob bytes. Offsets are relative to the start of the
// body and include the table's own size, so offset i is where blob i starts
// and the last offset is the body length. When compression is enabled the
// whole body is compressed as one unit.
package cluster

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
)

// OffsetSize is the width of one intra-cluster offset.
const OffsetSize = 4

// ErrOffsetOverflow is returned when a cluster body exceeds the range of
// its u32 offsets.
var ErrOffsetOverflow = errors.New("cluster: offset overflow")

// Cluster accumulates blobs in memory until it is encoded.
type Cluster struct {
	data bytes.Buffer
	ends []uint64 // end offset of each blob within data
}

// New returns an empty cluster.
func New() *Cluster {
	return &Cluster{}
}

// Len returns the number of blobs in the cluster.
func (c *Cluster) Len() int { return len(c.ends) }

// RawSize returns the accumulated uncompressed blob bytes, excluding the
// offset table.
func (c *Cluster) RawSize() uint64 { return uint64(c.data.Len()) }

// AppendFrom reads a blob from r until EOF and returns its index within the
// cluster and its size. On error the partial blob is discarded.
func (c *Cluster) AppendFrom(r io.Reader) (int, int64, error) {
	start := c.data.Len()
	n, err := c.data.ReadFrom(r)
	if err != nil {
		c.data.Truncate(start)
		return 0, n, err
	}
	c.ends = append(c.ends, uint64(c.data.Len()))
	return len(c.ends) - 1, n, nil
}

// BodySize returns the uncompressed body size: offset table plus blobs.
func (c *Cluster) BodySize() uint64 {
	return uint64(len(c.ends)+1)*OffsetSize + c.RawSize()
}

// AppendBody appends the uncompressed body to dst.
func (c *Cluster) AppendBody(dst []byte) ([]byte, error) {
	tableSize := uint64(len(c.ends)+1) * OffsetSize
	if c.BodySize() > math.MaxUint32 {
		return dst, ErrOffsetOverflow
	}
	dst = binary.LittleEndian.AppendUint32(dst, uint32(tableSize))
	for _, end := range c.ends {
		dst = binary.LittleEndian.AppendUint32(dst, uint32(tableSize+end)) //nolint:gosec // bounded by BodySize check
	}
	return append(dst, c.data.Bytes()...), nil
}

// Encode returns the encoded cluster: type byte plus body, compressed by comp.
func (c *Cluster) Encode(comp *Compressor) ([]byte, error) {
	if c.BodySize() > math.MaxUint32 {
		return nil, ErrOffsetOverflow
	}
	body, err := c.AppendBody(make([]byte, 0, c.BodySize()))
	if err != nil {
		return nil, err
	}
	out := make([]byte, 1, 1+len(body))
	out[0] = byte(comp.Kind())
	return comp.compress(out, body), nil
}
