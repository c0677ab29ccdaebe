// SPDX-License-Identifier: EPL-2.0

package shine

import (
	"bytes"
	"fmt"
	"io"
	"slices"

	shinemp3 "github.com/braheezy/shine-mp3/pkg/mp3"

	"github.com/ik5/mp3stream/mpeg"
)

// SampleRates lists the rates MPEG layer III can carry, MPEG-2.5 first.
var SampleRates = []int{8000, 11025, 12000, 16000, 22050, 24000, 32000, 44100, 48000}

// Layer III bit rates in kbps, indexed by the header's bit rate index.
var (
	bitRatesMPEG1  = []int{0, 32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320}
	bitRatesMPEG2  = []int{0, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160}
	bitRatesMPEG25 = bitRatesMPEG2[:9]
)

// NearestSampleRate returns the supported rate closest to hz, preferring
// the higher one on a tie.
func NearestSampleRate(hz int) int {
	return nearest(SampleRates, hz)
}

// BitRates lists the bit rates in kbps the encoder accepts at sampleRate,
// or nil when the rate is not supported.
func BitRates(sampleRate int) []int {
	if !slices.Contains(SampleRates, sampleRate) {
		return nil
	}
	return bitRateTable(sampleRate)[1:]
}

// NearestBitRate returns the bit rate accepted at sampleRate that is
// closest to kbps, preferring the higher one on a tie.
func NearestBitRate(sampleRate, kbps int) int {
	rates := BitRates(sampleRate)
	if rates == nil {
		return kbps
	}
	return nearest(rates, kbps)
}

func nearest(sorted []int, v int) int {
	best := sorted[0]
	for _, r := range sorted[1:] {
		if abs(r-v) <= abs(best-v) {
			best = r
		}
	}
	return best
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// FrameSamples is the number of samples per channel in one layer III frame
// at the given rate.
func FrameSamples(sampleRate int) int {
	if sampleRate >= 32000 {
		return 1152
	}
	return 576
}

// frameWriter is the part of the shine encoder used here. Write takes
// exactly one frame of interleaved samples. The bytes it writes lag the
// frame by the few bytes shine keeps cached; FrameBytes is the full size
// of the frame just encoded.
type frameWriter interface {
	Write(w io.Writer, data []int16) error
	FrameBytes() int
}

type shineEncoder struct {
	*shinemp3.Encoder
}

func (s shineEncoder) FrameBytes() int {
	return int(s.Mpeg.WholeSlotsPerFrame + s.Mpeg.Padding)
}

// newShine builds a shine encoder for cfg, which Init has validated.
func newShine(cfg mpeg.EncoderConfig) (frameWriter, error) {
	if shinemp3.CheckConfig(cfg.SampleRate, cfg.BitRate) < 0 {
		return nil, fmt.Errorf("%w: %d kbps at %d Hz", ErrBitRate, cfg.BitRate, cfg.SampleRate)
	}

	enc := shinemp3.NewEncoder(cfg.SampleRate, cfg.Channels)

	// NewEncoder always sets up 128 kbps; redo the slot arithmetic for
	// the requested rate.
	m := &enc.Mpeg
	m.Bitrate = int64(cfg.BitRate)
	m.BitrateIndex = int64(slices.Index(bitRateTable(cfg.SampleRate), cfg.BitRate))
	slots := float64(m.GranulesPerFrame) * shinemp3.GRANULE_SIZE / float64(cfg.SampleRate) *
		(float64(cfg.BitRate) * 1000 / float64(m.BitsPerSlot))
	m.WholeSlotsPerFrame = int64(slots)
	m.FracSlotsPerFrame = slots - float64(m.WholeSlotsPerFrame)
	m.Slot_lag = -m.FracSlotsPerFrame
	if m.FracSlotsPerFrame == 0 {
		m.Padding = 0
	}

	return shineEncoder{enc}, nil
}

func bitRateTable(sampleRate int) []int {
	switch {
	case sampleRate >= 32000:
		return bitRatesMPEG1
	case sampleRate >= 16000:
		return bitRatesMPEG2
	}
	return bitRatesMPEG25
}

// FrameEncoder is an mpeg.FrameEncoder backed by the pure Go shine encoder.
//
// Mono and stereo are encoded natively at any of SampleRates and any of
// the matching BitRates. The quality setting is not honored. Rates below
// 16 kHz produce MPEG-2.5 streams.
type FrameEncoder struct {
	newEncoder func(cfg mpeg.EncoderConfig) (frameWriter, error)

	enc      frameWriter
	cfg      mpeg.EncoderConfig
	frameLen int // interleaved samples per frame
	pending  []int16
	owed     int // bytes of encoded frames still cached inside shine
	scratch  bytes.Buffer
	flushed  bool
	closed   bool
}

// NewFrameEncoder returns an encoder ready for mpeg.NewEncoder.
func NewFrameEncoder() *FrameEncoder {
	return &FrameEncoder{newEncoder: newShine}
}

func (e *FrameEncoder) Init(cfg mpeg.EncoderConfig) error {
	if e.closed {
		return ErrClosed
	}
	if !slices.Contains(SampleRates, cfg.SampleRate) {
		return fmt.Errorf("%w: %d Hz", ErrSampleRate, cfg.SampleRate)
	}
	if cfg.Channels != 1 && cfg.Channels != 2 {
		return fmt.Errorf("%w: %d channels", ErrChannels, cfg.Channels)
	}
	if !slices.Contains(BitRates(cfg.SampleRate), cfg.BitRate) {
		return fmt.Errorf("%w: %d kbps at %d Hz", ErrBitRate, cfg.BitRate, cfg.SampleRate)
	}

	enc, err := e.newEncoder(cfg)
	if err != nil {
		return err
	}

	e.enc = enc
	e.cfg = cfg
	e.frameLen = cfg.Channels * FrameSamples(cfg.SampleRate)
	e.pending = make([]int16, 0, 2*e.frameLen)
	e.owed = 0
	e.flushed = false
	return nil
}

// EncodeBuffer queues pcm and encodes every complete frame.
func (e *FrameEncoder) EncodeBuffer(w io.Writer, pcm []int16) error {
	if err := e.ready(); err != nil {
		return err
	}

	e.pending = append(e.pending, pcm...)
	done := 0
	for ; len(e.pending)-done >= e.frameLen; done += e.frameLen {
		if err := e.encodeFrame(w, e.pending[done:done+e.frameLen]); err != nil {
			return err
		}
	}
	e.pending = append(e.pending[:0], e.pending[done:]...)
	return nil
}

// encodeFrame hands shine a single frame. Larger writes skip frames on
// mono input.
func (e *FrameEncoder) encodeFrame(w io.Writer, frame []int16) error {
	cw := countingWriter{w: w}
	if err := e.enc.Write(&cw, frame); err != nil {
		return fmt.Errorf("shine: %w", err)
	}
	e.owed += e.enc.FrameBytes() - cw.n
	return nil
}

// Flush pads the last partial frame with silence and encodes it, then
// pushes the bytes shine still holds for the final frame by encoding one
// more silent frame and keeping only those bytes.
func (e *FrameEncoder) Flush(w io.Writer) error {
	if err := e.ready(); err != nil {
		return err
	}
	e.flushed = true

	if len(e.pending) > 0 {
		for len(e.pending) < e.frameLen {
			e.pending = append(e.pending, 0)
		}
		err := e.encodeFrame(w, e.pending)
		e.pending = e.pending[:0]
		if err != nil {
			return err
		}
	}
	if e.owed <= 0 {
		return nil
	}

	e.scratch.Reset()
	if err := e.enc.Write(&e.scratch, make([]int16, e.frameLen)); err != nil {
		return fmt.Errorf("shine: %w", err)
	}
	tail := e.scratch.Bytes()[:min(e.owed, e.scratch.Len())]
	e.owed = 0
	if _, err := w.Write(tail); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// Pending reports the number of queued interleaved samples.
func (e *FrameEncoder) Pending() int { return len(e.pending) }

func (e *FrameEncoder) Close() error {
	e.closed = true
	e.enc = nil
	e.pending = nil
	return nil
}

func (e *FrameEncoder) ready() error {
	switch {
	case e.closed:
		return ErrClosed
	case e.enc == nil:
		return ErrNotInitialized
	case e.flushed:
		return ErrFlushed
	}
	return nil
}

type countingWriter struct {
	w io.Writer
	n int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += n
	return n, err
}
