// SPDX-License-Identifier: EPL-2.0

// Package mpeg streams MPEG audio between byte sources and sinks and a
// frame oriented codec.
//
// The package does not decode or encode bits itself. A FrameDecoder or
// FrameEncoder does that one frame at a time; this package handles
// everything around it:
//   - staging source bytes and carrying incomplete frames over to the next read
//   - resynchronising after damaged frames
//   - telling recoverable damage apart from fatal errors
//   - handing out exactly as much PCM as the caller asked for
//   - capturing the stream format from the first frame
//   - encoder configuration, initialization on first write and flushing
//
// # Decoding
//
//	dec, err := mpeg.NewDecoder(file, mp3.NewFrameDecoder())
//	if err != nil {
//	    // Handle error
//	}
//	defer dec.Close()
//
//	// Prime the decoder to learn the stream format
//	if _, err := dec.ReadN(0); err != nil {
//	    // Handle error
//	}
//	format, _ := dec.Format()
//
//	// Read 16-bit little-endian interleaved PCM in chunks
//	for {
//	    pcm, err := dec.ReadN(4096)
//	    if err != nil || len(pcm) == 0 {
//	        break
//	    }
//	    // use pcm
//	}
//
// A Decoder is also an io.Reader, so io.Copy works too.
//
// # Errors
//
// Damaged frames are skipped and only reported to the Observer and the
// logger. A fatal codec error is held back until the audio decoded before
// it has been returned; the next read that has nothing left to give returns
// a *FormatError. A failing source is reported at once and the audio
// collected by that call is dropped.
//
// Every error wraps one of ErrArgument, ErrSourceIO, ErrSinkIO, ErrFormat,
// ErrResource or ErrState:
//
//	if errors.Is(err, mpeg.ErrFormat) {
//	    // the stream cannot be decoded any further
//	}
//
// # Encoding
//
//	enc, _ := mpeg.NewEncoder(out, shine.NewFrameEncoder())
//	enc.SetChannels(1)
//	enc.SetSampleRate(22050)
//	enc.SetBitRate(64)
//
//	if _, err := enc.Write(pcm); err != nil {
//	    // Handle error
//	}
//	if _, err := enc.Flush(); err != nil {
//	    // Handle error
//	}
//
// The first Write locks the configuration. For mono input the mode becomes
// single channel, for stereo input with single channel mode it becomes
// stereo, and ModeAuto picks joint stereo.
//
// # Suspension
//
// Codec calls can take a while. WithSuspender installs a hook that runs
// around each of them, which lets a host release shared resources for the
// duration of the call.
//
// # Concurrency
//
// Decoders and Encoders hold no shared state. Separate instances can run in
// separate goroutines; a single instance must not be used concurrently.
package mpeg
