// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/ik5/mp3stream/utils"
)

// PCM16Reader renders a Source as interleaved signed 16-bit little-endian
// PCM, the input format of mpeg.Encoder.
type PCM16Reader struct {
	src     Source
	buf     []float32
	pending []byte
	err     error
}

// NewPCM16Reader reads from src in chunks of up to frames frames. A
// non-positive frames uses the source's BufSize.
func NewPCM16Reader(src Source, frames int) *PCM16Reader {
	if frames <= 0 {
		frames = max(src.BufSize()/max(src.Channels(), 1), 1)
	}
	return &PCM16Reader{
		src: src,
		buf: make([]float32, frames*max(src.Channels(), 1)),
	}
}

// Read implements io.Reader.
func (r *PCM16Reader) Read(p []byte) (int, error) {
	for empty := 0; len(r.pending) == 0; {
		if r.err != nil {
			return 0, r.err
		}

		n, err := r.src.ReadSamples(r.buf)
		if err != nil {
			if err == io.EOF {
				r.err = io.EOF
			} else {
				r.err = fmt.Errorf("%w", err)
			}
		}
		if n == 0 && err == nil {
			if empty++; empty >= maxEmptyReads {
				r.err = ErrNoProgress
			}
			continue
		}

		r.pending = r.pending[:0]
		for _, s := range r.buf[:n] {
			r.pending = binary.LittleEndian.AppendUint16(r.pending, uint16(utils.Float32ToInt16(s)))
		}
	}

	n := copy(p, r.pending)
	r.pending = r.pending[n:]
	return n, nil
}

// WriteTo implements io.WriterTo, so io.Copy avoids an intermediate buffer.
func (r *PCM16Reader) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for {
		if len(r.pending) == 0 {
			if _, err := r.Read(nil); err != nil {
				if err == io.EOF {
					return total, nil
				}
				return total, err
			}
		}
		n, err := w.Write(r.pending)
		total += int64(n)
		if err == nil && n < len(r.pending) {
			err = io.ErrShortWrite
		}
		r.pending = r.pending[n:]
		if err != nil {
			return total, fmt.Errorf("%w", err)
		}
	}
}
