// SPDX-License-Identifier: EPL-2.0

package utils

import "math"

// SilenceDB is reported for gains at or below zero.
const SilenceDB = -144.0

// DBToGain converts decibels to a linear amplitude factor: 10^(dB/20).
func DBToGain(db float64) float64 {
	return math.Pow(10, db/20)
}

// GainToDB converts a linear amplitude factor to decibels.
func GainToDB(gain float64) float64 {
	if gain <= 0 || math.IsNaN(gain) {
		return SilenceDB
	}

	return 20 * math.Log10(gain)
}

// EqualPower returns the fade-in and fade-out gains at position t in [0,1]
// of an equal-power crossfade. in*in + out*out == 1 for every t.
func EqualPower(t float64) (in, out float64) {
	if t <= 0 {
		return 0, 1
	}
	if t >= 1 {
		return 1, 0
	}

	return math.Sin(t * math.Pi / 2), math.Cos(t * math.Pi / 2)
}
