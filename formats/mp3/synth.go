// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"
)

// synthesizer turns one complete layer III frame into PCM. The returned
// bytes are 16-bit little-endian stereo, samples*4 bytes long, and valid
// until the next call. Reset drops the state carried between frames.
type synthesizer interface {
	Synthesize(frame []byte, samples int) ([]byte, error)
	Reset()
}

// mp3Reader is the part of gomp3.Decoder the synthesizer uses.
type mp3Reader interface {
	Read([]byte) (int, error)
}

// frameFeed hands queued frames to go-mp3, which expects a byte stream.
// It reports io.EOF once the queue is empty, so it must never be read past
// the queued frames.
type frameFeed struct {
	buf []byte
}

func (f *frameFeed) Read(p []byte) (int, error) {
	if len(f.buf) == 0 {
		return 0, io.EOF
	}
	n := copy(p, f.buf)
	f.buf = f.buf[n:]
	return n, nil
}

// gomp3Synth keeps a single go-mp3 decoder alive across frames so the bit
// reservoir and the synthesis filter history carry over.
type gomp3Synth struct {
	feed frameFeed
	dec  mp3Reader
	out  []byte

	newDecoder func(io.Reader) (mp3Reader, error)
}

func newGomp3Synth() *gomp3Synth {
	return &gomp3Synth{
		newDecoder: func(r io.Reader) (mp3Reader, error) {
			return gomp3.NewDecoder(r)
		},
	}
}

func (s *gomp3Synth) Synthesize(frame []byte, samples int) (pcm []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.Reset()
			pcm, err = nil, fmt.Errorf("%w: %v", ErrSynthesisPanic, r)
		}
	}()

	s.feed.buf = append(s.feed.buf, frame...)
	if s.dec == nil {
		// go-mp3 decodes the first frame while it is constructed
		dec, err := s.newDecoder(&s.feed)
		if err != nil {
			s.Reset()
			return nil, fmt.Errorf("%w: %w", ErrSynthesis, err)
		}
		s.dec = dec
	}

	need := samples * 4
	if cap(s.out) < need {
		s.out = make([]byte, need)
	}
	s.out = s.out[:need]

	if _, err := io.ReadFull(s.dec, s.out); err != nil {
		s.Reset()
		return nil, fmt.Errorf("%w: %w", ErrSynthesis, err)
	}
	return s.out, nil
}

func (s *gomp3Synth) Reset() {
	s.dec = nil
	s.feed.buf = nil
}
