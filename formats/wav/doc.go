// SPDX-License-Identifier: EPL-2.0

// Package wav reads and writes WAV files on top of github.com/go-audio/wav.
//
// Decoder accepts integer PCM at 16, 24 or 32 bits with any channel count
// and sample rate, and yields float32 samples in [-1, 1]. Chunks between
// "fmt " and "data" are skipped. The go-audio decoder seeks, so inputs that
// cannot seek are read into memory first.
//
// Output is always 16-bit PCM. WriteWAV16 writes a whole file when the
// samples are known up front and works with any io.Writer:
//
//	err := wav.WriteWAV16(os.Stdout, 44100, 2, samples)
//
// Writer streams interleaved little-endian PCM of unknown length into an
// io.WriteSeeker and patches the sizes on Close:
//
//	w, err := wav.NewWriter(f, 44100, 2)
//	_, err = io.Copy(w, pcm)
//	err = w.Close()
//
// Errors wrap ErrNotWavFile, ErrUnsupportedEncoding or ErrUnsupportedBitDepth
// and should be tested with errors.Is.
package wav
