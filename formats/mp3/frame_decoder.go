// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	tcmp3 "github.com/tcolgate/mp3"

	"github.com/ik5/mp3stream/mpeg"
)

// FrameDecoder is an mpeg.FrameDecoder for MPEG-1 and MPEG-2 layer III.
//
// Frames are located and measured with github.com/tcolgate/mp3 and
// synthesized with github.com/hajimehoshi/go-mp3. Frames of other layers
// and MPEG 2.5 frames are skipped as recoverable errors.
type FrameDecoder struct {
	synth  synthesizer
	reader bytes.Reader
	frame  tcmp3.Frame
}

// NewFrameDecoder returns a decoder ready for the first frame of a stream.
func NewFrameDecoder() *FrameDecoder {
	return &FrameDecoder{synth: newGomp3Synth()}
}

// DecodeFrame implements mpeg.FrameDecoder.
func (d *FrameDecoder) DecodeFrame(staged []byte) mpeg.Outcome {
	d.reader.Reset(staged)

	var skipped int
	err := tcmp3.NewDecoder(&d.reader).Decode(&d.frame, &skipped)
	switch {
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return mpeg.NeedMoreInput{Consumed: skipped}
	case err != nil:
		return mpeg.RecoverableError{Consumed: skipped + 1, Err: fmt.Errorf("%w: %w", ErrLostSync, err)}
	case skipped > 0:
		return mpeg.RecoverableError{Consumed: skipped, Err: fmt.Errorf("%w: skipped %d bytes", ErrLostSync, skipped)}
	}

	raw := d.frame.Header()
	header := headerOf(raw)
	size := d.frame.Size()

	switch {
	case size <= 4:
		// free format bit rate, the frame length is not in the header
		return mpeg.RecoverableError{Consumed: 1, Err: fmt.Errorf("%w: free format frame", ErrLostSync)}
	case raw.Layer() != tcmp3.Layer3:
		return mpeg.RecoverableError{Consumed: size, Err: fmt.Errorf("%w: layer %s", ErrUnsupportedLayer, header.Layer)}
	case raw.Version() == tcmp3.MPEG25:
		return mpeg.RecoverableError{Consumed: size, Err: ErrUnsupportedVersion}
	}

	samples := d.frame.Samples()
	stereo, err := d.synth.Synthesize(staged[:size], samples)
	if err != nil {
		// the synthesizer has reset itself; resync at the next frame
		return mpeg.RecoverableError{Consumed: size, Err: err}
	}

	return mpeg.Decoded{
		Consumed: size,
		Header:   header,
		PCM:      splitStereo(stereo, samples, header.Channels),
	}
}

// Reset drops the inter-frame state, for use after a discontinuity.
func (d *FrameDecoder) Reset() {
	d.synth.Reset()
}

// splitStereo turns interleaved 16-bit stereo into per-channel fixed-point
// samples. A mono frame keeps the left channel.
func splitStereo(pcm []byte, samples, channels int) mpeg.PCM {
	out := mpeg.PCM{Samples: make([][]mpeg.Fixed, channels)}
	for ch := range out.Samples {
		out.Samples[ch] = make([]mpeg.Fixed, samples)
	}
	for i := range samples {
		for ch := range channels {
			s := int16(binary.LittleEndian.Uint16(pcm[4*i+2*ch:]))
			out.Samples[ch][i] = mpeg.FixedFromInt16(s)
		}
	}
	return out
}
