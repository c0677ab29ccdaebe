// SPDX-License-Identifier: EPL-2.0

package mpeg

import "fmt"

// Buffer is a growable byte queue. Bytes are appended at the end and taken
// from the front. Storage is reused once the buffer is fully drained and
// never shrinks.
//
// The zero value is an empty buffer without a size limit.
type Buffer struct {
	buf   []byte
	begin int
	end   int
	max   int // 0 means unlimited
}

// NewBuffer returns a buffer with the given initial capacity that refuses
// to grow beyond max bytes. A max of 0 means no limit.
func NewBuffer(capacity, max int) *Buffer {
	if capacity < 0 {
		capacity = 0
	}
	return &Buffer{buf: make([]byte, capacity), max: max}
}

// Len is the number of unread bytes.
func (b *Buffer) Len() int { return b.end - b.begin }

// Cap is the size of the underlying storage.
func (b *Buffer) Cap() int { return len(b.buf) }

// Bytes returns the unread bytes. The slice is valid until the next
// modifying call.
func (b *Buffer) Bytes() []byte { return b.buf[b.begin:b.end] }

// Grow makes room for at least n more bytes after the unread ones.
func (b *Buffer) Grow(n int) error {
	if n < 0 {
		return fmt.Errorf("buffer grow %d: %w", n, ErrArgument)
	}
	if b.end+n <= len(b.buf) {
		return nil
	}

	size := max(b.end+n, 2*len(b.buf))
	if b.max > 0 && size > b.max {
		if b.end+n > b.max {
			return fmt.Errorf("buffer needs %d bytes, limit is %d: %w", b.end+n, b.max, ErrResource)
		}
		size = b.max
	}

	grown := make([]byte, size)
	copy(grown, b.buf[:b.end])
	b.buf = grown
	return nil
}

// Append adds p at the end. On failure the buffer is left unchanged.
func (b *Buffer) Append(p []byte) error {
	if err := b.Grow(len(p)); err != nil {
		return err
	}
	b.end += copy(b.buf[b.end:], p)
	return nil
}

// Write implements io.Writer on top of Append.
func (b *Buffer) Write(p []byte) (int, error) {
	if err := b.Append(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Take appends up to n unread bytes to dst and marks them read. Once
// every byte has been read both cursors go back to the start of storage.
func (b *Buffer) Take(dst []byte, n int) []byte {
	if n > b.Len() {
		n = b.Len()
	}
	if n > 0 {
		dst = append(dst, b.buf[b.begin:b.begin+n]...)
	}
	b.discard(n)
	return dst
}

func (b *Buffer) discard(n int) {
	b.begin += max(n, 0)
	if b.begin >= b.end {
		b.begin, b.end = 0, 0
	}
}

// Read implements io.Reader. It returns 0, nil when the buffer is empty.
func (b *Buffer) Read(p []byte) (int, error) {
	n := copy(p, b.Bytes())
	b.discard(n)
	return n, nil
}

// Reset discards every unread byte, keeping the storage.
func (b *Buffer) Reset() {
	b.begin, b.end = 0, 0
}
