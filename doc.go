// SPDX-License-Identifier: EPL-2.0

// Package mp3stream decodes and encodes MPEG audio as streams.
//
// The engine lives in the mpeg package: it carries partial frames across
// reads, skips garbage between frames, locks the stream format on the first
// frame and accumulates encoder output until it can be written out. The
// bit-level work is done by pluggable frame codecs:
//
//   - formats/mp3 decodes layer III (frame sync with github.com/tcolgate/mp3,
//     synthesis with github.com/hajimehoshi/go-mp3)
//   - formats/shine encodes layer III (github.com/braheezy/shine-mp3)
//
// This package wires the two together and adds the conversions most
// callers need.
//
// # Decoding
//
//	dec, _ := mp3stream.NewDecoder(resp.Body)
//	for {
//		pcm, err := dec.ReadN(32 * 1024) // interleaved 16-bit little-endian
//		...
//	}
//
// Probe reports the format of a stream and DecodeToWAV writes a whole
// stream into a WAV file.
//
// # Encoding
//
// Encode takes any audio.Source, for example one returned by the
// NewRegistry decoders for WAV, AIFF, Ogg Vorbis or MP3 input, and mixes
// and resamples it to a rate layer III supports:
//
//	src, _ := mp3stream.NewRegistry().Decode("wav", f)
//	res, err := mp3stream.Encode(out, src, mp3stream.EncodeOptions{Mono: true})
//
// For raw PCM use NewEncoder and write to it directly; call Flush once at
// the end.
package mp3stream
