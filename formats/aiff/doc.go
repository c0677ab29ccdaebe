// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes AIFF files with github.com/go-audio/aiff.
//
// Integer PCM at 16, 24 or 32 bits is supported with any channel count and
// sample rate. Samples come out as float32 in [-1, 1]. AIFF-C and 8-bit
// files are rejected with ErrUnsupportedBitDepth or ErrNotAiffFile.
//
// The go-audio decoder seeks, so inputs that cannot seek are read into
// memory first.
//
//	src, err := aiff.Decoder{}.Decode(f)
//	if errors.Is(err, aiff.ErrNotAiffFile) {
//		// try another format
//	}
package aiff
