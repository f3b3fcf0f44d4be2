// Package buffer provides the growable, truncatable byte sequence that backs
// every stream.
//
// A Buffer is interior-mutable: it is always handled through a pointer and
// guards its content with its own mutex, so a single Buffer can be shared by
// several stream handles (the named variant) while each operation observes a
// consistent byte sequence.
package buffer

import (
	"errors"
	"io"
	"math"
	"sync"
)

// MaxSize is the largest length a buffer may reach.
const MaxSize int64 = math.MaxInt32

var (
	// ErrNegativeOffset is returned by ReadAt and WriteAt for an offset below zero.
	ErrNegativeOffset = errors.New("buffer: negative offset")

	// ErrTooLarge is returned when an operation would grow a buffer past MaxSize.
	ErrTooLarge = errors.New("buffer: size exceeds maximum")
)

// Buffer is a mutable byte sequence with file-like splice semantics.
// The zero value is an empty buffer ready for use.
type Buffer struct {
	mu   sync.RWMutex
	data []byte
}

// New returns a buffer seeded with a copy of content.
func New(content []byte) *Buffer {
	b := &Buffer{}
	if len(content) > 0 {
		b.data = append([]byte(nil), content...)
	}
	return b
}

// NewString returns a buffer seeded with content.
func NewString(content string) *Buffer {
	return New([]byte(content))
}

// Len returns the current length of the buffer.
func (b *Buffer) Len() int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return int64(len(b.data))
}

// Bytes returns a copy of the buffer's content.
func (b *Buffer) Bytes() []byte {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]byte{}, b.data...)
}

// String returns the buffer's content as a string.
func (b *Buffer) String() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return string(b.data)
}

// Slice returns a copy of at most n bytes starting at off. A negative n
// means "everything from off". The result is empty when off is at or past
// the end.
func (b *Buffer) Slice(off, n int64) []byte {
	b.mu.RLock()
	defer b.mu.RUnlock()

	size := int64(len(b.data))
	if off < 0 || off >= size {
		return []byte{}
	}
	end := size
	if n >= 0 && off+n < size {
		end = off + n
	}
	return append([]byte{}, b.data[off:end]...)
}

// ReadAt implements io.ReaderAt. It never mutates the buffer.
func (b *Buffer) ReadAt(p []byte, off int64) (int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if off < 0 {
		return 0, ErrNegativeOffset
	}
	if off >= int64(len(b.data)) {
		return 0, io.EOF
	}
	n := copy(p, b.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// WriteAt implements io.WriterAt. Bytes in [off, off+len(p)) are
// overwritten, the remainder is appended and any gap between the current
// end and off is zero-filled first. It returns len(p) unless off is
// negative or the write would end past MaxSize.
func (b *Buffer) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, ErrNegativeOffset
	}
	if off > MaxSize-int64(len(p)) {
		return 0, ErrTooLarge
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	end := off + int64(len(p))
	if end > int64(len(b.data)) {
		b.grow(end)
	}
	copy(b.data[off:end], p)
	return len(p), nil
}

// Truncate resizes the buffer to size. Shrinking drops the tail; growing
// appends zero bytes. Calling it again with the same size is a no-op.
// A negative size empties the buffer; a size above MaxSize fails with
// ErrTooLarge and leaves the buffer unchanged.
func (b *Buffer) Truncate(size int64) error {
	if size < 0 {
		size = 0
	}
	if size > MaxSize {
		return ErrTooLarge
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	switch cur := int64(len(b.data)); {
	case size < cur:
		b.data = b.data[:size]
	case size > cur:
		b.grow(size)
	}
	return nil
}

// Extend zero-pads the buffer to size when it is shorter. A longer buffer is
// left alone.
func (b *Buffer) Extend(size int64) error {
	if size > MaxSize {
		return ErrTooLarge
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if size > int64(len(b.data)) {
		b.grow(size)
	}
	return nil
}

// Reset empties the buffer.
func (b *Buffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = b.data[:0]
}

// grow extends data with zero bytes to exactly size. The caller holds mu and
// has checked size against MaxSize.
func (b *Buffer) grow(size int64) {
	cur := int64(len(b.data))
	if size <= int64(cap(b.data)) {
		b.data = b.data[:size]
		// The region past the old length may hold bytes from an earlier truncate.
		clear(b.data[cur:size])
		return
	}
	capacity := size + size/4
	if capacity > MaxSize {
		capacity = MaxSize
	}
	grown := make([]byte, size, capacity)
	copy(grown, b.data)
	b.data = grown
}

var (
	_ io.ReaderAt = (*Buffer)(nil)
	_ io.WriterAt = (*Buffer)(nil)
)
