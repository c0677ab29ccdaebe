// SPDX-License-Identifier: EPL-2.0

package mpeg

import (
	"io"
	"log"
)

const (
	// DefaultMaxReadSize bounds ReadAll.
	DefaultMaxReadSize = 16 << 20
	// DefaultMaxBufferSize bounds the decoder and encoder accumulators.
	DefaultMaxBufferSize = 64 << 20
)

// CodecOp names a codec call passed through a Suspender.
type CodecOp int

const (
	OpDecode CodecOp = iota
	OpInit
	OpEncode
	OpFlush
)

func (op CodecOp) String() string {
	switch op {
	case OpDecode:
		return "decode"
	case OpInit:
		return "init"
	case OpEncode:
		return "encode"
	case OpFlush:
		return "flush"
	}
	return "unknown"
}

// Suspender wraps every codec call. A host that runs decoding next to other
// work can use it to yield around the call (release a lock, hand off to a
// worker). It must run call exactly once before returning.
type Suspender func(op CodecOp, call func())

func runDirect(_ CodecOp, call func()) { call() }

// Observer receives decode and encode events.
type Observer interface {
	FrameDecoded(h Header)
	Resynced(err error)
	DecodeFailed(err error)
	Encoded(pcmBytes, compressedBytes int)
}

type nopObserver struct{}

func (nopObserver) FrameDecoded(Header) {}
func (nopObserver) Resynced(error)      {}
func (nopObserver) DecodeFailed(error)  {}
func (nopObserver) Encoded(int, int)    {}

type options struct {
	logger        *log.Logger
	suspend       Suspender
	observer      Observer
	stageSize     int
	maxReadSize   int
	maxBufferSize int
}

func defaultOptions() options {
	return options{
		logger:        log.New(io.Discard, "", 0),
		suspend:       runDirect,
		observer:      nopObserver{},
		stageSize:     DefaultStageSize,
		maxReadSize:   DefaultMaxReadSize,
		maxBufferSize: DefaultMaxBufferSize,
	}
}

// Option configures a Decoder or an Encoder.
type Option func(*options)

// WithLogger sets the logger for diagnostics. By default nothing is logged.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithSuspender sets the hook run around every codec call.
func WithSuspender(s Suspender) Option {
	return func(o *options) {
		if s != nil {
			o.suspend = s
		}
	}
}

// WithObserver sets the receiver of decode and encode events.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observer = obs
		}
	}
}

// WithStageSize sets the decoder input stage capacity. Values below
// MinStageSize are raised to it.
func WithStageSize(n int) Option {
	return func(o *options) {
		o.stageSize = max(n, MinStageSize)
	}
}

// WithMaxReadSize bounds the number of bytes ReadAll returns.
func WithMaxReadSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxReadSize = n
		}
	}
}

// WithMaxBufferSize bounds the growth of the output accumulator. 0 removes
// the limit.
func WithMaxBufferSize(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.maxBufferSize = n
		}
	}
}
