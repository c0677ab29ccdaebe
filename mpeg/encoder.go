// SPDX-License-Identifier: EPL-2.0

package mpeg

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Encoder defaults.
const (
	DefaultChannels   = 2
	DefaultSampleRate = 44100
	DefaultBitRate    = 128 // kbps
	DefaultQuality    = 5

	MinQuality = 2
	MaxQuality = 7
)

// State is the lifecycle state of an Encoder.
type State int

const (
	StateNotInitialized State = iota
	StateInitialized
	StateFlushed
	StateError
)

func (s State) String() string {
	switch s {
	case StateNotInitialized:
		return "not initialized"
	case StateInitialized:
		return "initialized"
	case StateFlushed:
		return "flushed"
	case StateError:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Encoder compresses interleaved signed 16-bit little-endian PCM and writes
// the resulting MPEG frames to a sink.
//
// The configuration may be changed until the first Write; from then on it
// is locked. Flush must be called once at the end to write the frames the
// codec still holds.
//
// An Encoder is not safe for concurrent use.
type Encoder struct {
	w     io.Writer
	codec FrameEncoder
	opts  options

	cfg   EncoderConfig
	state State
	cause error

	out     *Buffer
	samples []int16
	closed  bool
}

// NewEncoder returns an encoder writing compressed frames produced by codec
// to w.
func NewEncoder(w io.Writer, codec FrameEncoder, opts ...Option) (*Encoder, error) {
	if w == nil {
		return nil, fmt.Errorf("nil writer: %w", ErrArgument)
	}
	if codec == nil {
		return nil, fmt.Errorf("nil frame encoder: %w", ErrArgument)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return &Encoder{
		w:     w,
		codec: codec,
		opts:  o,
		cfg: EncoderConfig{
			Channels:   DefaultChannels,
			SampleRate: DefaultSampleRate,
			BitRate:    DefaultBitRate,
			Quality:    DefaultQuality,
			Mode:       ModeAuto,
		},
		out: NewBuffer(0, o.maxBufferSize),
	}, nil
}

// State reports the lifecycle state.
func (e *Encoder) State() State { return e.state }

// Config returns the current configuration. After the first Write it is the
// configuration the codec was initialized with.
func (e *Encoder) Config() EncoderConfig { return e.cfg }

func (e *Encoder) configurable() error {
	if e.closed {
		return fmt.Errorf("encoder closed: %w", ErrState)
	}
	if e.state != StateNotInitialized {
		return fmt.Errorf("configuration locked, encoder %s: %w", e.state, ErrState)
	}
	return nil
}

// SetChannels sets the number of interleaved input channels, 1 or 2.
func (e *Encoder) SetChannels(n int) error {
	if err := e.configurable(); err != nil {
		return err
	}
	if n != 1 && n != 2 {
		return fmt.Errorf("channels %d: %w", n, ErrArgument)
	}
	e.cfg.Channels = n
	return nil
}

// SetQuality sets the encoder quality, MinQuality (best) to MaxQuality.
func (e *Encoder) SetQuality(q int) error {
	if err := e.configurable(); err != nil {
		return err
	}
	if q < MinQuality || q > MaxQuality {
		return fmt.Errorf("quality %d not in [%d, %d]: %w", q, MinQuality, MaxQuality, ErrArgument)
	}
	e.cfg.Quality = q
	return nil
}

// SetBitRate sets the target bit rate in kbps.
func (e *Encoder) SetBitRate(kbps int) error {
	if err := e.configurable(); err != nil {
		return err
	}
	if kbps <= 0 {
		return fmt.Errorf("bit rate %d: %w", kbps, ErrArgument)
	}
	e.cfg.BitRate = kbps
	return nil
}

// SetSampleRate sets the input sample rate in Hz.
func (e *Encoder) SetSampleRate(hz int) error {
	if err := e.configurable(); err != nil {
		return err
	}
	if hz <= 0 {
		return fmt.Errorf("sample rate %d: %w", hz, ErrArgument)
	}
	e.cfg.SampleRate = hz
	return nil
}

// SetMode sets the channel mode. Dual channel output is not supported.
func (e *Encoder) SetMode(m Mode) error {
	if err := e.configurable(); err != nil {
		return err
	}
	switch m {
	case ModeAuto, ModeSingleChannel, ModeJointStereo, ModeStereo:
		e.cfg.Mode = m
		return nil
	case ModeDualChannel:
		return fmt.Errorf("mode %s not supported: %w", m, ErrArgument)
	}
	return fmt.Errorf("mode %s: %w", m, ErrArgument)
}

func (e *Encoder) usable(op string) error {
	if e.closed {
		return fmt.Errorf("%s on closed encoder: %w", op, ErrState)
	}
	switch e.state {
	case StateError:
		return fmt.Errorf("%s after encoder failure (%v): %w", op, e.cause, ErrState)
	case StateFlushed:
		return fmt.Errorf("%s after flush: %w", op, ErrState)
	}
	return nil
}

// Write encodes p, interleaved signed 16-bit little-endian samples, and
// writes the produced frames to the sink. It returns the number of PCM
// bytes consumed.
//
// The first Write locks the configuration and initializes the codec.
func (e *Encoder) Write(p []byte) (int, error) {
	if err := e.usable("write"); err != nil {
		return 0, err
	}
	if len(p)%2 != 0 {
		return 0, fmt.Errorf("pcm length %d is odd: %w", len(p), ErrArgument)
	}
	nsamples := len(p) / 2
	if nsamples%e.cfg.Channels != 0 {
		return 0, fmt.Errorf("%d samples do not divide into %d channels: %w",
			nsamples, e.cfg.Channels, ErrArgument)
	}

	if e.state == StateNotInitialized {
		if err := e.init(); err != nil {
			return 0, err
		}
	}
	if nsamples == 0 {
		return 0, nil
	}

	e.samples = e.samples[:0]
	for i := 0; i < len(p); i += 2 {
		e.samples = append(e.samples, int16(binary.LittleEndian.Uint16(p[i:])))
	}

	// worst case output estimate for nsamples/channels sample frames
	frames := nsamples / e.cfg.Channels
	if err := e.out.Grow(frames + frames/4 + 7200); err != nil {
		return 0, err
	}

	var err error
	e.opts.suspend(OpEncode, func() {
		err = e.codec.EncodeBuffer(e.out, e.samples)
	})
	if err != nil {
		e.out.Reset()
		return 0, e.failed(&FormatError{Op: "encode", Err: err})
	}

	produced, err := e.drain()
	if err != nil {
		return 0, e.failed(err)
	}
	e.opts.observer.Encoded(len(p), produced)
	return len(p), nil
}

func (e *Encoder) init() error {
	switch {
	case e.cfg.Channels == 1:
		e.cfg.Mode = ModeSingleChannel
	case e.cfg.Mode == ModeSingleChannel:
		e.cfg.Mode = ModeStereo
	case e.cfg.Mode == ModeAuto:
		e.cfg.Mode = ModeJointStereo
	}

	var err error
	e.opts.suspend(OpInit, func() {
		err = e.codec.Init(e.cfg)
	})
	if err != nil {
		return e.failed(fmt.Errorf("encoder init: %w: %w", ErrState, err))
	}

	e.state = StateInitialized
	e.opts.logger.Printf("mpeg: encoder initialized: %d ch, %d Hz, %d kbps, quality %d, %s",
		e.cfg.Channels, e.cfg.SampleRate, e.cfg.BitRate, e.cfg.Quality, e.cfg.Mode)
	return nil
}

func (e *Encoder) failed(err error) error {
	e.state = StateError
	e.cause = err
	e.opts.logger.Printf("mpeg: encoder failed: %v", err)
	return err
}

func (e *Encoder) drain() (int, error) {
	n := e.out.Len()
	if n == 0 {
		return 0, nil
	}
	written, err := e.w.Write(e.out.Bytes())
	e.out.Reset()
	if err == nil && written < n {
		err = io.ErrShortWrite
	}
	if err != nil {
		return written, fmt.Errorf("%w: %w", ErrSinkIO, err)
	}
	return n, nil
}

// Flush writes the frames the codec still holds and ends the session. It
// reports whether any bytes were written. Flush is valid once, after at
// least one Write.
func (e *Encoder) Flush() (bool, error) {
	if err := e.usable("flush"); err != nil {
		return false, err
	}
	if e.state != StateInitialized {
		return false, fmt.Errorf("flush: not currently encoding: %w", ErrState)
	}

	var err error
	e.opts.suspend(OpFlush, func() {
		err = e.codec.Flush(e.out)
	})
	if err != nil {
		e.out.Reset()
		return false, e.failed(&FormatError{Op: "flush", Err: err})
	}

	produced, err := e.drain()
	if err != nil {
		return false, e.failed(err)
	}
	e.state = StateFlushed
	e.opts.observer.Encoded(0, produced)
	return produced > 0, nil
}

// Close releases the codec and drops the sink without flushing. It does
// not close the sink.
func (e *Encoder) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	e.w = nil
	e.out.Reset()

	if c, ok := e.codec.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
