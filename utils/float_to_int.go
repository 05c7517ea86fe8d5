// SPDX-License-Identifier: EPL-2.0

package utils

import "math"

// FloatToInt16 converts a sample in [-1,1] to 16-bit PCM.
// Out of range input is clamped, and the result is rounded to nearest.
func FloatToInt16(x float64) int16 {
	// Clamp and scale
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}

	// Use 32767 for both signs so the scale stays symmetric
	return int16(math.Round(x * math.MaxInt16))
}

// Int16ToFloat is the inverse of FloatToInt16 for decoded PCM.
func Int16ToFloat(v int16) float64 {
	return float64(v) / 32768.0
}

// PCMToFloat scales a signed integer sample of bitDepth bits to [-1,1).
func PCMToFloat(v, bitDepth int) float64 {
	return float64(v) / float64(int64(1)<<(bitDepth-1))
}
