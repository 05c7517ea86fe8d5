// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"math"

	"github.com/ik5/sleepmix/utils"
)

// Resample converts buf to dstRate using Catmull-Rom cubic interpolation.
// Works on interleaved samples; preserves channel count.
//
// The output has round(frames*dstRate/srcRate) frames. Output frame m reads
// the source at position m*srcRate/dstRate, computed in integer arithmetic so
// the result does not drift over long clips. When downsampling, the source is
// first low-passed at 0.45 of the target rate. Edge frames are duplicated where
// the interpolation window runs past either end, and overshoot is clamped to
// [-1,1].
func Resample(buf Buffer, dstRate int) (Buffer, error) {
	if err := buf.Validate(); err != nil {
		return Buffer{}, err
	}
	if dstRate <= 0 {
		return Buffer{}, fmt.Errorf("%w: target rate %d", ErrInvalidParameter, dstRate)
	}
	if buf.SampleRate == dstRate {
		return buf.Clone(), nil
	}

	srcRate := int64(buf.SampleRate)
	dst := int64(dstRate)
	srcFrames := buf.Frames()
	outFrames := int((int64(srcFrames)*dst + srcRate/2) / srcRate)
	if outFrames <= 0 {
		return Buffer{}, fmt.Errorf("%w: %d frames at %d Hz vanish at %d Hz",
			ErrUnsupportedFormat, srcFrames, buf.SampleRate, dstRate)
	}

	channels := buf.Channels
	src := buf.Samples
	if srcRate > dst {
		src = lowPass(src, channels, 0.45*float64(dstRate)/float64(srcRate))
	}
	last := srcFrames - 1
	at := func(frame, c int) float64 {
		frame = max(0, min(frame, last))
		return src[frame*channels+c]
	}

	out := NewBuffer(dstRate, channels, outFrames)
	for m := range outFrames {
		num := int64(m) * srcRate
		i := int(num / dst)
		x := float64(num%dst) / float64(dst)

		for c := range channels {
			v := utils.CubicInterpolate(at(i-1, c), at(i, c), at(i+1, c), at(i+2, c), x)
			out.Samples[m*channels+c] = clamp(v)
		}
	}

	return out, nil
}

// lowPass runs a one-pole low-pass over each channel forward and then
// backward, so the filtered signal keeps its timing. cutoff is a fraction of
// the sample rate. Every output is a convex combination of inputs, so the
// peak never grows.
func lowPass(samples []float64, channels int, cutoff float64) []float64 {
	alpha := 1 - math.Exp(-2*math.Pi*cutoff)
	frames := len(samples) / channels
	out := make([]float64, len(samples))
	copy(out, samples)

	for c := range channels {
		y := out[c]
		for f := range frames {
			i := f*channels + c
			y += alpha * (out[i] - y)
			out[i] = y
		}
		y = out[(frames-1)*channels+c]
		for f := frames - 1; f >= 0; f-- {
			i := f*channels + c
			y += alpha * (out[i] - y)
			out[i] = y
		}
	}

	return out
}

func clamp(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
