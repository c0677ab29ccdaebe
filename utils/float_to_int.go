// SPDX-License-Identifier: EPL-2.0

package utils

import "math"

// Float32ToInt16 scales x from [-1, 1] to a 16-bit sample. Halves round
// up, values outside the range clip and NaN maps to silence.
func Float32ToInt16(x float32) int16 {
	if math.IsNaN(float64(x)) {
		return 0
	}

	v := math.Floor(float64(x)*32768 + 0.5)
	switch {
	case v > math.MaxInt16:
		return math.MaxInt16
	case v < math.MinInt16:
		return math.MinInt16
	}
	return int16(v)
}

// Int16ToFloat32 is the inverse of Float32ToInt16 for in-range samples.
func Int16ToFloat32(s int16) float32 {
	return float32(s) / 32768
}
