// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis streams with github.com/jfreymuth/oggvorbis.
//
// The decoder reads the header packets up front, so the sample rate and
// channel count are known when Decode returns. Samples are interleaved
// float32 in [-1, 1]. Unlike the WAV and AIFF decoders the input is read
// sequentially and never buffered whole.
//
//	src, err := vorbis.Decoder{}.Decode(f)
//	if errors.Is(err, vorbis.ErrNotVorbis) {
//		// try another format
//	}
package vorbis
