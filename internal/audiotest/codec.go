// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/ik5/mp3stream/mpeg"
)

// Frame layout of the test codec:
//
//	0-1   sync 0xA5 0x5A
//	2     channels (1, 2; 0xFF poisons the stream)
//	3     mode
//	4     layer
//	5-6   bit rate, kbps
//	7-10  sample rate, Hz
//	11-12 samples per channel
//	13    xor of bytes 2-12 and the payload
//	14-   interleaved int16 payload
const (
	sync0 = 0xA5
	sync1 = 0x5A

	poison = 0xFF

	// HeaderSize is the size of a frame header of the test codec.
	HeaderSize = 14
)

var (
	ErrLostSync  = errors.New("audiotest: lost sync")
	ErrBadHeader = errors.New("audiotest: bad header")
	ErrChecksum  = errors.New("audiotest: checksum mismatch")
	ErrPoisoned  = errors.New("audiotest: poisoned stream")
)

// FrameSpec describes a frame of the test codec.
type FrameSpec struct {
	Channels   int
	Mode       mpeg.Mode
	Layer      mpeg.Layer
	BitRate    int
	SampleRate int
}

// Header returns the header the decoder reports for frames built from s.
func (s FrameSpec) Header() mpeg.Header {
	return mpeg.Header{
		Layer:      s.Layer,
		Mode:       s.Mode,
		BitRate:    s.BitRate,
		SampleRate: s.SampleRate,
		Channels:   s.Channels,
	}
}

// EncodeFrame builds one frame holding interleaved samples.
func EncodeFrame(s FrameSpec, samples []int16) []byte {
	n := len(samples) / s.Channels
	buf := make([]byte, HeaderSize, HeaderSize+2*len(samples))
	buf[0], buf[1] = sync0, sync1
	buf[2] = byte(s.Channels)
	buf[3] = byte(s.Mode)
	buf[4] = byte(s.Layer)
	binary.LittleEndian.PutUint16(buf[5:], uint16(s.BitRate))
	binary.LittleEndian.PutUint32(buf[7:], uint32(s.SampleRate))
	binary.LittleEndian.PutUint16(buf[11:], uint16(n))
	for _, v := range samples[:n*s.Channels] {
		buf = binary.LittleEndian.AppendUint16(buf, uint16(v))
	}
	buf[13] = checksum(buf)
	return buf
}

// PoisonFrame returns a frame header the test decoder answers with a
// FatalError.
func PoisonFrame() []byte {
	buf := make([]byte, HeaderSize)
	buf[0], buf[1], buf[2] = sync0, sync1, poison
	return buf
}

func checksum(frame []byte) byte {
	var sum byte
	for _, b := range frame[2:13] {
		sum ^= b
	}
	for _, b := range frame[HeaderSize:] {
		sum ^= b
	}
	return sum
}

// FrameCodec is a deterministic frame codec for tests. It implements both
// mpeg.FrameDecoder and mpeg.FrameEncoder; the encoder side emits frames of
// FrameSamples samples per channel.
type FrameCodec struct {
	FrameSamples int

	// Encoder failure injection.
	InitErr   error
	EncodeErr error
	FlushErr  error

	Inits  int
	Config mpeg.EncoderConfig
	Closed bool

	pending []int16
}

// NewFrameCodec returns a codec producing frames of frameSamples samples
// per channel. Zero means 1152.
func NewFrameCodec(frameSamples int) *FrameCodec {
	if frameSamples <= 0 {
		frameSamples = 1152
	}
	return &FrameCodec{FrameSamples: frameSamples}
}

// DecodeFrame implements mpeg.FrameDecoder.
func (c *FrameCodec) DecodeFrame(staged []byte) mpeg.Outcome {
	i := findSync(staged)
	switch {
	case i < 0:
		keep := 0
		if staged[len(staged)-1] == sync0 {
			keep = 1
		}
		if len(staged) == keep {
			return mpeg.NeedMoreInput{}
		}
		return mpeg.RecoverableError{Consumed: len(staged) - keep, Err: ErrLostSync}
	case i > 0:
		return mpeg.RecoverableError{Consumed: i, Err: ErrLostSync}
	}

	if len(staged) < HeaderSize {
		return mpeg.NeedMoreInput{}
	}
	if staged[2] == poison {
		return mpeg.FatalError{Err: ErrPoisoned}
	}

	spec := FrameSpec{
		Channels:   int(staged[2]),
		Mode:       mpeg.Mode(staged[3]),
		Layer:      mpeg.Layer(staged[4]),
		BitRate:    int(binary.LittleEndian.Uint16(staged[5:])),
		SampleRate: int(binary.LittleEndian.Uint32(staged[7:])),
	}
	if spec.Channels < 1 || spec.Channels > 2 || spec.Layer < mpeg.LayerI || spec.Layer > mpeg.LayerIII {
		return mpeg.RecoverableError{Consumed: 1, Err: ErrBadHeader}
	}

	n := int(binary.LittleEndian.Uint16(staged[11:]))
	size := HeaderSize + 2*n*spec.Channels
	if len(staged) < size {
		return mpeg.NeedMoreInput{}
	}
	frame := staged[:size]
	if checksum(frame) != frame[13] {
		return mpeg.RecoverableError{Consumed: 1, Err: ErrChecksum}
	}

	pcm := mpeg.PCM{Samples: make([][]mpeg.Fixed, spec.Channels)}
	for ch := range pcm.Samples {
		pcm.Samples[ch] = make([]mpeg.Fixed, n)
	}
	payload := frame[HeaderSize:]
	for i := 0; i < n; i++ {
		for ch := 0; ch < spec.Channels; ch++ {
			off := 2 * (i*spec.Channels + ch)
			s := int16(binary.LittleEndian.Uint16(payload[off:]))
			pcm.Samples[ch][i] = mpeg.FixedFromInt16(s)
		}
	}

	return mpeg.Decoded{Consumed: size, Header: spec.Header(), PCM: pcm}
}

func findSync(b []byte) int {
	for i := 0; i+1 < len(b); i++ {
		if b[i] == sync0 && b[i+1] == sync1 {
			return i
		}
	}
	return -1
}

// Init implements mpeg.FrameEncoder.
func (c *FrameCodec) Init(cfg mpeg.EncoderConfig) error {
	if c.InitErr != nil {
		return c.InitErr
	}
	c.Inits++
	c.Config = cfg
	return nil
}

// EncodeBuffer implements mpeg.FrameEncoder.
func (c *FrameCodec) EncodeBuffer(w io.Writer, pcm []int16) error {
	if c.EncodeErr != nil {
		return c.EncodeErr
	}
	c.pending = append(c.pending, pcm...)
	step := c.FrameSamples * c.Config.Channels
	for len(c.pending) >= step {
		if _, err := w.Write(EncodeFrame(c.spec(), c.pending[:step])); err != nil {
			return err
		}
		c.pending = c.pending[step:]
	}
	return nil
}

// Flush implements mpeg.FrameEncoder. The remaining samples become a short
// final frame.
func (c *FrameCodec) Flush(w io.Writer) error {
	if c.FlushErr != nil {
		return c.FlushErr
	}
	if len(c.pending) == 0 {
		return nil
	}
	_, err := w.Write(EncodeFrame(c.spec(), c.pending))
	c.pending = nil
	return err
}

func (c *FrameCodec) Close() error {
	c.Closed = true
	return nil
}

func (c *FrameCodec) spec() FrameSpec {
	return FrameSpec{
		Channels:   c.Config.Channels,
		Mode:       c.Config.Mode,
		Layer:      mpeg.LayerIII,
		BitRate:    c.Config.BitRate,
		SampleRate: c.Config.SampleRate,
	}
}
