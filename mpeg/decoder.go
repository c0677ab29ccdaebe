// SPDX-License-Identifier: EPL-2.0

package mpeg

import (
	"errors"
	"fmt"
	"io"
)

var errNoOutcome = errors.New("codec returned no outcome")

// Decoder turns a compressed MPEG audio stream into interleaved signed
// 16-bit little-endian PCM. Input is pulled from the source only when the
// caller asks for more audio than is already decoded.
//
// A Decoder is not safe for concurrent use.
type Decoder struct {
	r     io.Reader
	codec FrameDecoder
	opts  options

	stage   *inputStage
	out     *Buffer
	scratch []byte

	format Format
	valid  bool
	frames int

	// fatal is raised once everything decoded before it has been handed out.
	fatal  error
	broken bool
	closed bool
}

// NewDecoder returns a decoder reading compressed frames from r and
// decoding them with codec.
func NewDecoder(r io.Reader, codec FrameDecoder, opts ...Option) (*Decoder, error) {
	if r == nil {
		return nil, fmt.Errorf("nil reader: %w", ErrArgument)
	}
	if codec == nil {
		return nil, fmt.Errorf("nil frame decoder: %w", ErrArgument)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return &Decoder{
		r:     r,
		codec: codec,
		opts:  o,
		stage: newInputStage(o.stageSize),
		out:   NewBuffer(0, o.maxBufferSize),
	}, nil
}

// ReadN returns up to n bytes of PCM. Fewer bytes are returned only at the
// end of the stream or after a fatal decode error; the error itself is
// returned by the next call that has no audio left to give.
//
// ReadN(0) decodes until the stream format is known without returning any
// audio. The decoded frame stays queued for the next read.
func (d *Decoder) ReadN(n int) ([]byte, error) {
	if d.closed {
		return nil, fmt.Errorf("read on closed decoder: %w", ErrState)
	}
	if n < 0 {
		return nil, fmt.Errorf("read size %d: %w", n, ErrArgument)
	}
	return d.read(make([]byte, 0, min(n, d.opts.maxReadSize)), n)
}

// ReadAll decodes until the end of the stream. At most the configured max
// read size is returned per call; the remainder is kept for later calls.
func (d *Decoder) ReadAll() ([]byte, error) {
	if d.closed {
		return nil, fmt.Errorf("read on closed decoder: %w", ErrState)
	}
	return d.read(nil, d.opts.maxReadSize)
}

// Read implements io.Reader. It returns io.EOF once the stream is
// exhausted.
func (d *Decoder) Read(p []byte) (int, error) {
	if d.closed {
		return 0, fmt.Errorf("read on closed decoder: %w", ErrState)
	}
	if len(p) == 0 {
		return 0, nil
	}
	res, err := d.read(p[:0], len(p))
	if err != nil {
		return 0, err
	}
	if len(res) == 0 {
		return 0, io.EOF
	}
	return len(res), nil
}

func (d *Decoder) read(dst []byte, n int) ([]byte, error) {
	base := len(dst)
	remaining := n
	for {
		if remaining > 0 && d.out.Len() > 0 {
			before := len(dst)
			dst = d.out.Take(dst, remaining)
			remaining -= len(dst) - before
		}
		if remaining == 0 && d.frames > 0 {
			break
		}
		if d.stage.eof || d.broken {
			break
		}

		_, dropped, err := d.stage.fill(d.r)
		if dropped > 0 {
			d.opts.logger.Printf("mpeg: dropped %d bytes without a frame boundary", dropped)
			d.opts.observer.Resynced(fmt.Errorf("dropped %d bytes without a frame boundary", dropped))
		}
		if err != nil {
			d.opts.logger.Printf("mpeg: %v", err)
			return dst[:base], err
		}
		if err := d.decodeStaged(); err != nil {
			return dst[:base], err
		}
	}

	if len(dst) == base && d.fatal != nil {
		return dst, d.fatal
	}
	return dst, nil
}

// decodeStaged runs the codec over the staged input until it needs more
// bytes or the stream breaks.
func (d *Decoder) decodeStaged() error {
	for !d.broken {
		staged := d.stage.staged()
		if len(staged) == 0 {
			return nil
		}

		var outcome Outcome
		d.opts.suspend(OpDecode, func() {
			outcome = d.codec.DecodeFrame(staged)
		})

		switch o := outcome.(type) {
		case Decoded:
			if o.Consumed <= 0 {
				d.fail(errors.New("decoded frame consumed no input"))
				return nil
			}
			if err := d.frameDecoded(o); err != nil {
				return err
			}
			d.stage.consume(o.Consumed)

		case NeedMoreInput:
			d.stage.consume(o.Consumed)
			return nil

		case RecoverableError:
			if o.Consumed <= 0 {
				return nil
			}
			d.stage.consume(o.Consumed)
			d.opts.logger.Printf("mpeg: skipped %d bytes: %v", o.Consumed, o.Err)
			d.opts.observer.Resynced(o.Err)

		case FatalError:
			d.fail(o.Err)
			return nil

		default:
			d.fail(errNoOutcome)
			return nil
		}
	}
	return nil
}

func (d *Decoder) fail(err error) {
	d.fatal = &FormatError{Op: "decode", Err: err}
	d.broken = true
	d.opts.logger.Printf("mpeg: decoding stopped after %d frames: %v", d.frames, err)
	d.opts.observer.DecodeFailed(err)
}

func (d *Decoder) frameDecoded(o Decoded) error {
	channels := d.format.Channels
	if d.frames == 0 {
		channels = o.Header.Channels
		if channels <= 0 {
			channels = o.PCM.Channels()
		}
	}

	d.scratch = putPCM16(d.scratch[:0], o.PCM, channels)
	if err := d.out.Append(d.scratch); err != nil {
		return err
	}

	if d.frames == 0 {
		d.format = formatOf(o.Header)
		d.format.Channels = channels
		d.valid = true
		d.opts.logger.Printf("mpeg: stream format %s", d.format)
	}
	d.frames++
	d.opts.observer.FrameDecoded(o.Header)
	return nil
}

// IsValid reports whether at least one frame has been decoded.
func (d *Decoder) IsValid() bool { return d.valid }

// Frames is the number of frames decoded so far.
func (d *Decoder) Frames() int { return d.frames }

// Format returns the stream format. Before the first frame is decoded it
// returns an error wrapping ErrState.
func (d *Decoder) Format() (Format, error) {
	if !d.valid {
		return Format{}, fmt.Errorf("stream format not known yet: %w", ErrState)
	}
	return d.format, nil
}

func (d *Decoder) Channels() (int, error) {
	f, err := d.Format()
	return f.Channels, err
}

func (d *Decoder) SampleRate() (int, error) {
	f, err := d.Format()
	return f.SampleRate, err
}

// BitRate is the bit rate of the first frame in kbps.
func (d *Decoder) BitRate() (int, error) {
	f, err := d.Format()
	return f.BitRate, err
}

func (d *Decoder) Mode() (Mode, error) {
	f, err := d.Format()
	return f.Mode, err
}

func (d *Decoder) Layer() (Layer, error) {
	f, err := d.Format()
	return f.Layer, err
}

// Close releases the codec and drops the source. It does not close the
// source. Reads after Close fail with ErrState.
func (d *Decoder) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	d.r = nil
	d.out.Reset()

	if c, ok := d.codec.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
