// SPDX-License-Identifier: EPL-2.0

package mp3stream

import (
	"fmt"
	"io"

	"github.com/ik5/mp3stream/audio"
	"github.com/ik5/mp3stream/formats/aiff"
	"github.com/ik5/mp3stream/formats/mp3"
	"github.com/ik5/mp3stream/formats/shine"
	"github.com/ik5/mp3stream/formats/vorbis"
	"github.com/ik5/mp3stream/formats/wav"
	"github.com/ik5/mp3stream/mpeg"
)

// NewDecoder returns a streaming MPEG layer III decoder reading from r.
func NewDecoder(r io.Reader, opts ...mpeg.Option) (*mpeg.Decoder, error) {
	return mpeg.NewDecoder(r, mp3.NewFrameDecoder(), opts...)
}

// NewEncoder returns a streaming MPEG layer III encoder writing to w.
// Input must be at one of shine.SampleRates, and the bit rate one of
// shine.BitRates for that rate.
func NewEncoder(w io.Writer, opts ...mpeg.Option) (*mpeg.Encoder, error) {
	return mpeg.NewEncoder(w, shine.NewFrameEncoder(), opts...)
}

// NewRegistry returns a registry with every supported input format,
// keyed by file extension. opts are passed to the MP3 decoder.
func NewRegistry(opts ...mpeg.Option) *audio.Registry {
	reg := audio.NewRegistry()
	reg.Register("wav", wav.Decoder{})
	reg.Register("wave", wav.Decoder{})
	reg.Register("aif", aiff.Decoder{})
	reg.Register("aiff", aiff.Decoder{})
	reg.Register("ogg", vorbis.Decoder{})
	reg.Register("oga", vorbis.Decoder{})
	reg.Register("mp3", mp3.Decoder{Options: opts})
	return reg
}

// Probe decodes until the first frame of r and returns the stream format.
func Probe(r io.Reader, opts ...mpeg.Option) (mpeg.Format, error) {
	dec, err := NewDecoder(r, opts...)
	if err != nil {
		return mpeg.Format{}, err
	}
	defer dec.Close()

	return prime(dec)
}

func prime(dec *mpeg.Decoder) (mpeg.Format, error) {
	if _, err := dec.ReadN(0); err != nil && !dec.IsValid() {
		return mpeg.Format{}, fmt.Errorf("%w: %w", mp3.ErrNoFrames, err)
	}
	format, err := dec.Format()
	if err != nil {
		return mpeg.Format{}, fmt.Errorf("%w: %w", mp3.ErrNoFrames, err)
	}
	return format, nil
}
