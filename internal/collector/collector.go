// Package collector implements an append-only record store that yields an
// absolute offset table and the concatenated record data.
//
// Records are spilled to a temporary file as they are appended, so the
// total collected size is not bounded by memory. Appending and reading are
// temporally disjoint: the first call to Data seals the collector.
package collector

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// TableEntrySize is the encoded width of one offset table entry.
const TableEntrySize = 8

var (
	// ErrSealed is returned by Append once Data has been called.
	ErrSealed = errors.New("collector: sealed")

	// ErrClosed is returned when the collector is used after Close.
	ErrClosed = errors.New("collector: closed")

	// ErrOffsetOverflow is returned when an offset does not fit in 64 bits.
	ErrOffsetOverflow = errors.New("collector: offset overflow")
)

// Collector stores records in a spill file and tracks their cumulative
// offsets. It is not safe for concurrent use.
type Collector struct {
	file    *os.File
	buf     *bufio.Writer
	enc     io.WriteCloser
	sink    io.Writer
	codec   Codec
	offsets []uint64
	sealed  bool
	closed  bool
}

// New creates a collector spilling to a new temporary file in dir.
// An empty dir uses the default temporary directory.
func New(dir string, codec Codec) (*Collector, error) {
	if !codec.Valid() {
		return nil, fmt.Errorf("collector: unknown spill codec %d", codec)
	}
	f, err := os.CreateTemp(dir, ".zim-spill-*")
	if err != nil {
		return nil, fmt.Errorf("create spill file: %w", err)
	}
	c := &Collector{
		file:    f,
		buf:     bufio.NewWriterSize(f, 64<<10),
		codec:   codec,
		offsets: []uint64{0},
	}
	c.enc = codec.writer(c.buf)
	c.sink = c.buf
	if c.enc != nil {
		c.sink = c.enc
	}
	return c, nil
}

// Append stores a record.
func (c *Collector) Append(p []byte) error {
	switch {
	case c.closed:
		return ErrClosed
	case c.sealed:
		return ErrSealed
	}
	end := c.Size() + uint64(len(p))
	if end < c.Size() {
		return ErrOffsetOverflow
	}
	if _, err := c.sink.Write(p); err != nil {
		return fmt.Errorf("write spill file: %w", err)
	}
	c.offsets = append(c.offsets, end)
	return nil
}

// Len returns the number of records.
func (c *Collector) Len() int { return len(c.offsets) - 1 }

// Size returns the total size of all records in bytes.
func (c *Collector) Size() uint64 { return c.offsets[len(c.offsets)-1] }

// AppendTable appends, for each record, base plus the record's offset as a
// little-endian u64. The end offset of the last record is not emitted.
func (c *Collector) AppendTable(dst []byte, base uint64) ([]byte, error) {
	if base+c.Size() < base {
		return dst, ErrOffsetOverflow
	}
	for _, off := range c.offsets[:c.Len()] {
		dst = binary.LittleEndian.AppendUint64(dst, base+off)
	}
	return dst, nil
}

// WriteTable writes the offset table for base to w.
func (c *Collector) WriteTable(w io.Writer, base uint64) error {
	table, err := c.AppendTable(make([]byte, 0, c.Len()*TableEntrySize), base)
	if err != nil {
		return err
	}
	_, err = w.Write(table)
	return err
}

// Data seals the collector and returns a reader over all records in append
// order. The reader is valid until the next call to Data or Close; closing it
// does not release the spill file.
func (c *Collector) Data() (io.ReadCloser, error) {
	if c.closed {
		return nil, ErrClosed
	}
	if !c.sealed {
		c.sealed = true
		if c.enc != nil {
			if err := c.enc.Close(); err != nil {
				return nil, fmt.Errorf("finish spill codec: %w", err)
			}
		}
		if err := c.buf.Flush(); err != nil {
			return nil, fmt.Errorf("flush spill file: %w", err)
		}
	}
	if _, err := c.file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind spill file: %w", err)
	}
	return c.codec.reader(bufio.NewReaderSize(c.file, 64<<10))
}

// WriteTo seals the collector and copies all records to w.
func (c *Collector) WriteTo(w io.Writer) (int64, error) {
	rc, err := c.Data()
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	n, err := io.Copy(w, rc)
	if err != nil {
		return n, err
	}
	if uint64(n) != c.Size() { //nolint:gosec // n is non-negative
		return n, fmt.Errorf("spill file truncated: read %d of %d bytes", n, c.Size())
	}
	return n, nil
}

// Close releases and removes the spill file.
func (c *Collector) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	name := c.file.Name()
	err := c.file.Close()
	if rmErr := os.Remove(name); rmErr != nil && err == nil {
		err = rmErr
	}
	return err
}
