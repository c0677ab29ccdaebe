// SPDX-License-Identifier: EPL-2.0

package mpeg

import "fmt"

// Mode is the channel mode of an MPEG audio stream.
type Mode int

const (
	// ModeAuto lets the encoder pick the mode from the channel count.
	ModeAuto Mode = iota
	ModeSingleChannel
	ModeDualChannel
	ModeJointStereo
	ModeStereo
)

func (m Mode) String() string {
	switch m {
	case ModeAuto:
		return "auto"
	case ModeSingleChannel:
		return "single channel"
	case ModeDualChannel:
		return "dual channel"
	case ModeJointStereo:
		return "joint stereo"
	case ModeStereo:
		return "stereo"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Layer is the MPEG audio layer.
type Layer int

const (
	LayerI   Layer = 1
	LayerII  Layer = 2
	LayerIII Layer = 3
)

func (l Layer) String() string {
	switch l {
	case LayerI:
		return "I"
	case LayerII:
		return "II"
	case LayerIII:
		return "III"
	}
	return fmt.Sprintf("Layer(%d)", int(l))
}

// Header describes a single decoded frame as reported by the codec.
type Header struct {
	Layer      Layer
	Mode       Mode
	BitRate    int // kbps
	SampleRate int // Hz
	Channels   int
}

// Format is the stream format, captured from the first decoded frame and
// never changed afterwards.
type Format struct {
	Channels   int
	SampleRate int // Hz
	BitRate    int // kbps
	Mode       Mode
	Layer      Layer
}

func formatOf(h Header) Format {
	return Format{
		Channels:   h.Channels,
		SampleRate: h.SampleRate,
		BitRate:    h.BitRate,
		Mode:       h.Mode,
		Layer:      h.Layer,
	}
}

func (f Format) String() string {
	return fmt.Sprintf("MPEG layer %s, %d kbps, %d Hz, %s, %d ch",
		f.Layer, f.BitRate, f.SampleRate, f.Mode, f.Channels)
}
