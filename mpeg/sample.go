// SPDX-License-Identifier: EPL-2.0

package mpeg

import "encoding/binary"

// FracBits is the number of fractional bits of a Fixed sample.
const FracBits = 28

// Fixed is a fixed-point sample with FracBits fractional bits; 1<<FracBits
// is full scale.
type Fixed int32

const (
	fixedOne = Fixed(1) << FracBits
	fixedMax = fixedOne - 1
	fixedMin = -fixedOne
)

// FixedFromInt16 converts a 16-bit sample to Fixed without loss.
func FixedFromInt16(s int16) Fixed {
	return Fixed(s) << (FracBits - 15)
}

// FixedFromFloat converts a float sample in [-1, 1] to Fixed, clipping
// values outside the range.
func FixedFromFloat(f float64) Fixed {
	v := f * float64(fixedOne)
	if v >= float64(fixedMax) {
		return fixedMax
	}
	if v <= float64(fixedMin) {
		return fixedMin
	}
	return Fixed(v)
}

// Int16 rounds to the nearest 16-bit value (halves rounding up) and clips
// to the 16-bit range.
func (x Fixed) Int16() int16 {
	v := int64(x) + 1<<(FracBits-16)
	if v > int64(fixedMax) {
		v = int64(fixedMax)
	} else if v < int64(fixedMin) {
		v = int64(fixedMin)
	}
	return int16(v >> (FracBits + 1 - 16))
}

// putPCM16 appends the interleaved 16-bit little-endian rendition of pcm
// to dst, laid out for the given number of output channels.
func putPCM16(dst []byte, pcm PCM, channels int) []byte {
	n := pcm.Len()
	src := pcm.Channels()
	if src == 0 || n == 0 {
		return dst
	}
	for i := 0; i < n; i++ {
		for ch := 0; ch < channels; ch++ {
			c := ch
			if c >= src {
				// mono frame in a stereo stream
				c = src - 1
			}
			dst = binary.LittleEndian.AppendUint16(dst, uint16(pcm.Samples[c][i].Int16()))
		}
	}
	return dst
}
