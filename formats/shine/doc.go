// SPDX-License-Identifier: EPL-2.0

// Package shine encodes MPEG-1/2/2.5 layer III with the pure Go port of
// the shine fixed-point encoder (github.com/braheezy/shine-mp3).
//
// FrameEncoder plugs into mpeg.NewEncoder. PCM is queued until a whole
// frame is available and each frame goes to shine on its own. Flush pads
// the tail with silence and writes out the bytes shine still holds. Input
// must already be at one of SampleRates, at a bit rate from BitRates;
// NearestSampleRate and NearestBitRate pick targets.
package shine
