// SPDX-License-Identifier: EPL-2.0

package mp3stream

import (
	"fmt"
	"io"

	"github.com/ik5/mp3stream/audio"
	"github.com/ik5/mp3stream/formats/shine"
	"github.com/ik5/mp3stream/formats/wav"
	"github.com/ik5/mp3stream/mpeg"
)

// EncodeOptions configures Encode. Zero values keep the encoder defaults.
type EncodeOptions struct {
	// BitRate in kbps. With the default codec it is rounded to the nearest
	// rate allowed at the output sample rate, and 0 means 128.
	BitRate int
	Quality int

	// SampleRate is the output rate. It is rounded to the nearest rate
	// layer III supports; 0 starts from the source rate.
	SampleRate int

	// Mono mixes the source down to one channel. Sources with more than two
	// channels are always mixed down.
	Mono bool

	// ChunkFrames is the number of frames converted per read; 0 uses the
	// source's buffer size.
	ChunkFrames int

	// Codec replaces the shine encoder when set.
	Codec mpeg.FrameEncoder

	Options []mpeg.Option
}

// EncodeResult describes a finished Encode.
type EncodeResult struct {
	Config   mpeg.EncoderConfig
	PCMBytes int64
}

// Encode reads src to the end and writes it to w as MP3. The source is
// mixed and resampled to fit the encoder. src is not closed.
func Encode(w io.Writer, src audio.Source, o EncodeOptions) (EncodeResult, error) {
	channels := src.Channels()
	if o.Mono || channels > 2 {
		channels = 1
	}
	rate := o.SampleRate
	if rate <= 0 {
		rate = src.SampleRate()
	}
	rate = shine.NearestSampleRate(rate)

	conformed, err := audio.Conform(src, rate, channels)
	if err != nil {
		return EncodeResult{}, err
	}

	bitRate := o.BitRate
	codec := o.Codec
	if codec == nil {
		codec = shine.NewFrameEncoder()
		if bitRate <= 0 {
			bitRate = mpeg.DefaultBitRate
		}
		bitRate = shine.NearestBitRate(rate, bitRate)
	}
	enc, err := mpeg.NewEncoder(w, codec, o.Options...)
	if err != nil {
		return EncodeResult{}, err
	}
	defer enc.Close()

	if err := configure(enc, channels, rate, bitRate, o.Quality); err != nil {
		return EncodeResult{}, err
	}

	pcm := &frameAligner{w: enc, frame: 2 * channels}
	n, err := io.Copy(pcm, audio.NewPCM16Reader(conformed, o.ChunkFrames))
	res := EncodeResult{Config: enc.Config(), PCMBytes: n}
	if err != nil {
		return res, fmt.Errorf("encoding: %w", err)
	}
	if n == 0 {
		// nothing to flush; the encoder was never initialized
		return res, nil
	}
	if _, err := enc.Flush(); err != nil {
		return res, fmt.Errorf("flushing: %w", err)
	}
	return res, nil
}

func configure(enc *mpeg.Encoder, channels, rate, bitRate, quality int) error {
	if err := enc.SetChannels(channels); err != nil {
		return err
	}
	if err := enc.SetSampleRate(rate); err != nil {
		return err
	}
	if bitRate > 0 {
		if err := enc.SetBitRate(bitRate); err != nil {
			return err
		}
	}
	if quality > 0 {
		if err := enc.SetQuality(quality); err != nil {
			return err
		}
	}
	return nil
}

// frameAligner passes only whole PCM frames to w and holds the rest.
type frameAligner struct {
	w       io.Writer
	frame   int // bytes
	partial []byte
}

func (a *frameAligner) Write(p []byte) (int, error) {
	data := p
	if len(a.partial) > 0 {
		data = append(a.partial, p...)
	}
	whole := len(data) - len(data)%a.frame
	if whole > 0 {
		if _, err := a.w.Write(data[:whole]); err != nil {
			return 0, err
		}
	}
	a.partial = append(a.partial[:0:0], data[whole:]...)
	return len(p), nil
}

// DecodeToWAV decodes the MP3 stream r into a 16-bit WAV file on w and
// returns the stream format. Garbage between frames is skipped.
func DecodeToWAV(w io.WriteSeeker, r io.Reader, opts ...mpeg.Option) (mpeg.Format, error) {
	dec, err := NewDecoder(r, opts...)
	if err != nil {
		return mpeg.Format{}, err
	}
	defer dec.Close()

	return writeWAV(w, dec)
}

func writeWAV(w io.WriteSeeker, dec *mpeg.Decoder) (mpeg.Format, error) {
	format, err := prime(dec)
	if err != nil {
		return format, err
	}

	out, err := wav.NewWriter(w, format.SampleRate, format.Channels)
	if err != nil {
		return format, err
	}
	if _, err := io.Copy(out, dec); err != nil {
		return format, fmt.Errorf("decoding: %w", err)
	}
	if err := out.Close(); err != nil {
		return format, fmt.Errorf("writing WAV: %w", err)
	}
	return format, nil
}
