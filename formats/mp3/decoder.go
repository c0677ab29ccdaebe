// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/ik5/mp3stream/audio"
	"github.com/ik5/mp3stream/mpeg"
)

// pcmReader is the part of mpeg.Decoder the source reads from.
type pcmReader interface {
	Read([]byte) (int, error)
	Close() error
}

type source struct {
	dec        pcmReader
	sampleRate int
	channels   int
	buf        []byte
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) Close() error    { return s.dec.Close() }
func (s *source) BufSize() int    { return cap(s.buf) / 2 }

func (s *source) ReadSamples(dst []float32) (int, error) {
	bytesNeeded := len(dst) * 2
	if bytesNeeded == 0 {
		return 0, nil
	}
	if cap(s.buf) < bytesNeeded {
		s.buf = make([]byte, bytesNeeded)
	}
	s.buf = s.buf[:bytesNeeded]

	n, err := s.dec.Read(s.buf)
	samples := n / 2
	for i := range samples {
		dst[i] = float32(int16(binary.LittleEndian.Uint16(s.buf[2*i:]))) / 32768.0
	}
	return samples, err
}

// Decoder decodes MP3 streams into an audio.Source. Options are passed to
// the underlying mpeg.Decoder.
type Decoder struct {
	Options []mpeg.Option
}

// Decode reads from r until the first frame is decoded, so the returned
// source reports the stream's real format. Streams without a single
// decodable frame fail with ErrNoFrames.
func (d Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := mpeg.NewDecoder(r, NewFrameDecoder(), d.Options...)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	if _, err := dec.ReadN(0); err != nil && !dec.IsValid() {
		return nil, fmt.Errorf("%w: %w", ErrNoFrames, err)
	}
	format, err := dec.Format()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoFrames, err)
	}

	return &source{
		dec:        dec,
		sampleRate: format.SampleRate,
		channels:   format.Channels,
		buf:        make([]byte, 8192),
	}, nil
}
