// SPDX-License-Identifier: EPL-2.0

// Package mp3 provides MP3 decoding.
//
// Frames are located and measured with github.com/tcolgate/mp3 and
// synthesized with github.com/hajimehoshi/go-mp3. The package offers two
// entry points.
//
// # Frame Codec
//
// FrameDecoder implements mpeg.FrameDecoder and plugs into the streaming
// decoder of the mpeg package:
//
//	dec, err := mpeg.NewDecoder(conn, mp3.NewFrameDecoder())
//	if err != nil {
//	    // Handle error
//	}
//	pcm, err := dec.ReadN(4096)
//
// One go-mp3 decoder is kept alive across frames, so the bit reservoir and
// the synthesis filter carry over from frame to frame.
//
// # Audio Sources
//
// Decoder implements audio.Decoder:
//
//	src, err := mp3.Decoder{}.Decode(file)
//	if err != nil {
//	    // Handle error
//	}
//
//	buf := make([]float32, 4096)
//	n, err := src.ReadSamples(buf)
//
// Decode reads until the first frame is decoded, so SampleRate and
// Channels report the stream's real format. Mono streams are decoded as
// mono.
//
// # Supported Streams
//
//   - MPEG-1 layer III (32, 44.1 and 48 kHz)
//   - MPEG-2 layer III (16, 22.05 and 24 kHz)
//
// Layer I, layer II, MPEG 2.5 and free format frames are skipped as
// recoverable errors. ID3 tags and other junk between frames are skipped
// while searching for the next frame header.
package mp3
