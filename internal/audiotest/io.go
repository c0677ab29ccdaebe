// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"encoding/binary"
	"fmt"
	"io"
)

// ChunkReader returns data at most chunk bytes per Read.
type ChunkReader struct {
	data  []byte
	chunk int
	Reads int
}

func NewChunkReader(data []byte, chunk int) *ChunkReader {
	return &ChunkReader{data: data, chunk: chunk}
}

func (r *ChunkReader) Read(p []byte) (int, error) {
	r.Reads++
	if len(r.data) == 0 {
		return 0, io.EOF
	}
	n := min(len(p), r.chunk, len(r.data))
	copy(p, r.data[:n])
	r.data = r.data[n:]
	return n, nil
}

// Remaining is the number of bytes not read yet.
func (r *ChunkReader) Remaining() int { return len(r.data) }

// FailingWriter accepts Limit bytes and then fails with Err.
type FailingWriter struct {
	Limit   int
	Err     error
	Written []byte
}

func (w *FailingWriter) Write(p []byte) (int, error) {
	room := w.Limit - len(w.Written)
	if len(p) > room {
		w.Written = append(w.Written, p[:max(room, 0)]...)
		return max(room, 0), w.Err
	}
	w.Written = append(w.Written, p...)
	return len(p), nil
}

// PCM16 encodes interleaved samples as 16-bit little-endian bytes.
func PCM16(samples []int16) []byte {
	buf := make([]byte, 0, 2*len(samples))
	for _, s := range samples {
		buf = binary.LittleEndian.AppendUint16(buf, uint16(s))
	}
	return buf
}

// Samples16 decodes 16-bit little-endian bytes.
func Samples16(pcm []byte) []int16 {
	out := make([]int16, len(pcm)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(pcm[2*i:]))
	}
	return out
}

// Ramp returns n interleaved samples in [-2048, 2047] that differ from
// frame to frame and channel to channel.
func Ramp(n, channels int) []int16 {
	out := make([]int16, n*channels)
	for i := range n {
		for ch := range channels {
			out[i*channels+ch] = int16((i*7+ch*311)%4096 - 2048)
		}
	}
	return out
}

// SeekBuffer is an in-memory io.WriteSeeker, for encoders that patch their
// headers once the stream is closed.
type SeekBuffer struct {
	buf []byte
	pos int
}

func (b *SeekBuffer) Write(p []byte) (int, error) {
	if end := b.pos + len(p); end > len(b.buf) {
		b.buf = append(b.buf, make([]byte, end-len(b.buf))...)
	}
	n := copy(b.buf[b.pos:], p)
	b.pos += n
	return n, nil
}

func (b *SeekBuffer) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = int64(b.pos) + offset
	case io.SeekEnd:
		abs = int64(len(b.buf)) + offset
	default:
		return 0, fmt.Errorf("seek: invalid whence %d", whence)
	}
	if abs < 0 {
		return 0, fmt.Errorf("seek: negative position %d", abs)
	}
	b.pos = int(abs)
	return abs, nil
}

// Bytes returns everything written so far.
func (b *SeekBuffer) Bytes() []byte { return b.buf }
