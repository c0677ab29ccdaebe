// SPDX-License-Identifier: EPL-2.0

package audio

import "fmt"

// Conform builds the processing pipeline that turns src into a stream of
// the given sample rate and channel count. Zero keeps the source's value.
// Channel conversion only supports mixing down to mono.
// Mixing down happens before resampling.
func Conform(src Source, sampleRate, channels int) (Source, error) {
	if channels < 0 || sampleRate < 0 {
		return nil, fmt.Errorf("invalid target %d Hz, %d channels: %w", sampleRate, channels, ErrUnsupportedPCM)
	}

	out := src
	switch {
	case channels == 0, channels == src.Channels():
	case channels == 1:
		out = NewMonoMixer(out)
	default:
		return nil, fmt.Errorf("cannot convert %d channels to %d: %w", src.Channels(), channels, ErrUnsupportedPCM)
	}

	if sampleRate != 0 && sampleRate != out.SampleRate() {
		out = NewResampler(out, sampleRate)
	}
	return out, nil
}
