// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	tcmp3 "github.com/tcolgate/mp3"

	"github.com/ik5/mp3stream/mpeg"
)

// headerOf translates a raw frame header.
func headerOf(h tcmp3.FrameHeader) mpeg.Header {
	out := mpeg.Header{
		Layer:      layerOf(h.Layer()),
		Mode:       modeOf(h.ChannelMode()),
		SampleRate: int(h.SampleRate()),
		Channels:   2,
	}
	if br := h.BitRate(); br > 0 {
		out.BitRate = int(br) / 1000
	}
	if out.Mode == mpeg.ModeSingleChannel {
		out.Channels = 1
	}
	return out
}

func layerOf(l tcmp3.FrameLayer) mpeg.Layer {
	switch l {
	case tcmp3.Layer1:
		return mpeg.LayerI
	case tcmp3.Layer2:
		return mpeg.LayerII
	case tcmp3.Layer3:
		return mpeg.LayerIII
	}
	return 0
}

func modeOf(m tcmp3.FrameChannelMode) mpeg.Mode {
	switch m {
	case tcmp3.Stereo:
		return mpeg.ModeStereo
	case tcmp3.JointStereo:
		return mpeg.ModeJointStereo
	case tcmp3.DualChannel:
		return mpeg.ModeDualChannel
	case tcmp3.SingleChannel:
		return mpeg.ModeSingleChannel
	}
	return mpeg.ModeAuto
}
