// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"

	"github.com/ik5/mp3stream/utils"
)

// maxEmptyReads bounds how often a source may return no samples and no
// error before ReadSamples gives up with ErrNoProgress.
const maxEmptyReads = 100

// Resampler streams src at another sample rate using Catmull-Rom
// interpolation. It works on interleaved frames and keeps the channel
// count. When downsampling, a one-pole low-pass filter is applied to the
// input first.
type Resampler struct {
	src      Source
	dstRate  int
	step     float64 // source frames per output frame
	channels int

	// window holds source frames t-1, t, t+1 and t+2; output is
	// interpolated between window[1] and window[2] at offset pos.
	window [4][]float32
	real   [4]bool
	pos    float64
	primed bool

	in     []float32
	inPos  int
	inLen  int
	srcEOF bool

	lowPass bool
	settled bool
	state   []float32
}

func NewResampler(src Source, dstRate int) *Resampler {
	channels := src.Channels()
	r := &Resampler{
		src:      src,
		dstRate:  dstRate,
		step:     float64(src.SampleRate()) / float64(dstRate),
		channels: channels,
		in:       make([]float32, max(4096/channels, 1)*channels),
		state:    make([]float32, channels),
	}
	r.lowPass = r.step > 1
	for i := range r.window {
		r.window[i] = make([]float32, channels)
	}
	return r
}

func (r *Resampler) SampleRate() int { return r.dstRate }
func (r *Resampler) Channels() int   { return r.channels }
func (r *Resampler) BufSize() int    { return r.src.BufSize() }

func (r *Resampler) Close() error {
	if err := r.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// next copies the next source frame into dst. ok is false once the source
// is exhausted.
func (r *Resampler) next(dst []float32) (ok bool, err error) {
	for empty := 0; r.inPos+r.channels > r.inLen; {
		if r.srcEOF {
			return false, nil
		}
		n, err := r.src.ReadSamples(r.in)
		switch {
		case err == io.EOF:
			r.srcEOF = true
		case err != nil:
			return false, fmt.Errorf("%w", err)
		case n == 0:
			if empty++; empty >= maxEmptyReads {
				return false, ErrNoProgress
			}
		}
		r.inPos, r.inLen = 0, n-n%r.channels
	}

	frame := r.in[r.inPos : r.inPos+r.channels]
	r.inPos += r.channels

	if !r.lowPass {
		copy(dst, frame)
		return true, nil
	}
	if !r.settled {
		// start the filter settled on the first frame
		copy(r.state, frame)
		r.settled = true
	}
	for c, x := range frame {
		r.state[c] = 0.5*x + 0.5*r.state[c]
		dst[c] = r.state[c]
	}
	return true, nil
}

// shift drops window[0] and reads a new window[3]. Past the end of the
// source the last frame is repeated.
func (r *Resampler) shift() error {
	first := r.window[0]
	copy(r.window[:], r.window[1:])
	copy(r.real[:], r.real[1:])
	r.window[3] = first

	ok, err := r.next(r.window[3])
	if err != nil {
		return err
	}
	if !ok {
		copy(r.window[3], r.window[2])
	}
	r.real[3] = ok
	return nil
}

func (r *Resampler) prime() error {
	ok, err := r.next(r.window[1])
	if err != nil || !ok {
		return err
	}
	copy(r.window[0], r.window[1])
	r.real[0], r.real[1] = true, true

	for i := 2; i < 4; i++ {
		ok, err := r.next(r.window[i])
		if err != nil {
			return err
		}
		if !ok {
			copy(r.window[i], r.window[i-1])
		}
		r.real[i] = ok
	}
	r.primed = true
	return nil
}

// ReadSamples produces interleaved samples at the destination rate. len(dst)
// must be a multiple of the channel count.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}
	if !r.primed {
		if err := r.prime(); err != nil {
			return 0, err
		}
		if !r.primed {
			return 0, io.EOF
		}
	}

	written := 0
	for written < len(dst) {
		for r.pos >= 1 {
			r.pos--
			if err := r.shift(); err != nil {
				return written, err
			}
		}
		if !r.real[1] {
			return written, io.EOF
		}

		x := float32(r.pos)
		for c := range r.channels {
			dst[written+c] = utils.CubicInterpolate(
				r.window[0][c], r.window[1][c], r.window[2][c], r.window[3][c], x)
		}
		written += r.channels
		r.pos += r.step
	}

	return written, nil
}
