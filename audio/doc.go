// SPDX-License-Identifier: EPL-2.0

// Package audio provides the float PCM plumbing around the MPEG codec.
//
// This package contains:
//   - Source interface for decoded audio input
//   - Resampler for sample rate conversion
//   - MonoMixer for channel mixing
//   - Conform, which chains the two into a pipeline
//   - PCM16Reader, which renders a Source as 16-bit PCM bytes
//   - IntSource, an adapter for the go-audio wav and aiff decoders
//   - Format registry for decoder registration
//
// # Source Interface
//
// The Source interface is the foundation of audio processing:
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []float32) (int, error)
//	    BufSize() int
//	    Close() error
//	}
//
// Samples are interleaved float32 values in [-1, 1]. Decoders and
// processors all implement Source, so they chain together.
//
// # Feeding the Encoder
//
// mpeg.Encoder consumes interleaved signed 16-bit little-endian PCM.
// PCM16Reader performs that conversion, rounding halves up and clipping:
//
//	src, _ := audio.Conform(wavSource, 44100, 1)
//	enc, _ := mpeg.NewEncoder(out, shine.NewFrameEncoder())
//	_, err := io.Copy(enc, audio.NewPCM16Reader(src, 0))
//
// # Resampling
//
// The Resampler changes the sample rate with Catmull-Rom interpolation and
// a light low-pass filter when downsampling:
//
//	resampler := audio.NewResampler(source, 16000)
//
// # Channel Mixing
//
// The MonoMixer averages all channels of each frame:
//
//	mono := audio.NewMonoMixer(source)
//
// # Format Registry
//
// The registry maps format keys to decoders:
//
//	registry := audio.NewRegistry()
//	registry.Register("wav", wav.Decoder{})
//	src, err := registry.Decode("wav", file)
//
// # Error Handling
//
// ReadSamples returns io.EOF when no more data is available:
//
//	for {
//	    n, err := source.ReadSamples(buf)
//	    // Process n samples from buf
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	}
package audio
