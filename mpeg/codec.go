// SPDX-License-Identifier: EPL-2.0

package mpeg

import "io"

// FrameDecoder decodes one frame at a time from staged input.
//
// DecodeFrame inspects staged, which starts at the first unconsumed byte,
// and reports what happened as an Outcome. Offsets in the outcome are
// relative to the start of staged. Implementations may keep state between
// calls (bit reservoir, synthesis history) but must not retain staged.
type FrameDecoder interface {
	DecodeFrame(staged []byte) Outcome
}

// FrameEncoder turns interleaved 16-bit PCM into compressed frames.
type FrameEncoder interface {
	// Init is called once, with the locked configuration, before the first
	// EncodeBuffer.
	Init(cfg EncoderConfig) error
	// EncodeBuffer compresses pcm (interleaved by channel) and writes any
	// completed frames to w.
	EncodeBuffer(w io.Writer, pcm []int16) error
	// Flush writes whatever the encoder still holds to w.
	Flush(w io.Writer) error
}

// EncoderConfig is the configuration an encoder session is locked to.
type EncoderConfig struct {
	Channels   int
	SampleRate int // Hz
	BitRate    int // kbps
	Quality    int
	Mode       Mode
}

// PCM is one frame of decoded audio, one slice of samples per channel.
// All channel slices have the same length.
type PCM struct {
	Samples [][]Fixed
}

// Channels is the number of channels present in the frame.
func (p PCM) Channels() int { return len(p.Samples) }

// Len is the number of samples per channel.
func (p PCM) Len() int {
	if len(p.Samples) == 0 {
		return 0
	}
	return len(p.Samples[0])
}

// Outcome is the result of a single DecodeFrame call. It is one of
// Decoded, NeedMoreInput, RecoverableError or FatalError.
type Outcome interface {
	outcome()
}

// Decoded reports a successfully decoded frame. Consumed is the offset of
// the next frame.
type Decoded struct {
	Consumed int
	Header   Header
	PCM      PCM
}

// NeedMoreInput reports that staged does not hold a complete frame. Bytes
// from Consumed onward are kept and retried once more input arrives.
type NeedMoreInput struct {
	Consumed int
}

// RecoverableError reports a damaged or unsupported frame. Decoding resumes
// at Consumed.
type RecoverableError struct {
	Consumed int
	Err      error
}

// FatalError reports that the stream cannot be decoded any further.
type FatalError struct {
	Err error
}

func (Decoded) outcome()          {}
func (NeedMoreInput) outcome()    {}
func (RecoverableError) outcome() {}
func (FatalError) outcome()       {}
