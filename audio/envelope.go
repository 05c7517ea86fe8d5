// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"math"

	"github.com/tphakala/simd/f64"
)

// Envelope is a linear fade-in/fade-out gain curve over a fixed number of
// frames. Fades that would overlap are each clamped to half the length, so
// they meet at the midpoint and the gain never leaves [0,1].
type Envelope struct {
	frames  int
	fadeIn  int
	fadeOut int
}

// NewEnvelope builds the envelope of a frames long buffer at sampleRate.
func NewEnvelope(frames int, fadeIn, fadeOut float64, sampleRate int) (Envelope, error) {
	if !(fadeIn >= 0) || math.IsInf(fadeIn, 0) || !(fadeOut >= 0) || math.IsInf(fadeOut, 0) {
		return Envelope{}, fmt.Errorf("%w: fades %v/%v must be >= 0", ErrInvalidParameter, fadeIn, fadeOut)
	}

	half := frames / 2
	return Envelope{
		frames:  frames,
		fadeIn:  min(framesFor(fadeIn, sampleRate), half),
		fadeOut: min(framesFor(fadeOut, sampleRate), half),
	}, nil
}

// FadeFrames returns the effective fade lengths after clamping.
func (e Envelope) FadeFrames() (in, out int) { return e.fadeIn, e.fadeOut }

// Gain at frame i.
func (e Envelope) Gain(i int) float64 {
	g := 1.0
	if i < e.fadeIn {
		g = float64(i) / float64(e.fadeIn)
	}
	if tail := e.frames - e.fadeOut; i >= tail {
		g *= float64(e.frames-1-i) / float64(e.fadeOut)
	}
	return g
}

// Apply multiplies the interleaved frames of dst, which start at absolute
// frame start, by the envelope. Frames outside both fades are left untouched.
func (e Envelope) Apply(dst []float64, channels, start int) {
	n := len(dst) / channels
	tail := e.frames - e.fadeOut

	for f := range n {
		i := start + f
		if i >= e.fadeIn && i < tail {
			continue
		}
		g := e.Gain(i)
		for c := range channels {
			dst[f*channels+c] *= g
		}
	}
}

// ApplyFades returns a copy of buf with a fade-in over the first fadeIn
// seconds and a fade-out over the last fadeOut seconds.
func ApplyFades(buf Buffer, fadeIn, fadeOut float64) (Buffer, error) {
	if err := buf.Validate(); err != nil {
		return Buffer{}, err
	}
	env, err := NewEnvelope(buf.Frames(), fadeIn, fadeOut, buf.SampleRate)
	if err != nil {
		return Buffer{}, err
	}

	out := buf.Clone()
	env.Apply(out.Samples, out.Channels, 0)

	return out, nil
}

// ClipGuard scales buf down uniformly so its peak lands at ceiling when it is
// above it. Buffers already at or under the ceiling are returned unchanged.
func ClipGuard(buf Buffer, ceiling float64) Buffer {
	peak := buf.Peak()
	if peak <= ceiling {
		return buf
	}

	out := buf.Clone()
	limit(out.Samples, ceiling/peak, ceiling)

	return out
}

// limit scales samples by gain, then pins the ulp-level rounding overshoot
// back to the ceiling.
func limit(samples []float64, gain, ceiling float64) {
	f64.Scale(samples, samples, gain)
	for i, v := range samples {
		if v > ceiling {
			samples[i] = ceiling
		} else if v < -ceiling {
			samples[i] = -ceiling
		}
	}
}
