// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"math"

	"github.com/tphakala/simd/f64"

	"github.com/ik5/sleepmix/utils"
)

// Split selects how the beat frequency is distributed between the ears.
type Split int

const (
	// SplitUpper plays the carrier on the left and carrier+beat on the right.
	SplitUpper Split = iota
	// SplitSymmetric plays carrier-beat/2 on the left and carrier+beat/2 on the right.
	SplitSymmetric
)

func (s Split) String() string {
	switch s {
	case SplitUpper:
		return "upper"
	case SplitSymmetric:
		return "symmetric"
	default:
		return fmt.Sprintf("Split(%d)", int(s))
	}
}

// BinauralSpec describes the binaural tone.
type BinauralSpec struct {
	// Duration in seconds.
	Duration  float64
	BeatHz    float64
	CarrierHz float64
	// GainDB sets the peak amplitude of each channel, 10^(GainDB/20),
	// clamped to full scale.
	GainDB float64
	Split  Split
}

func (s BinauralSpec) Validate() error {
	switch {
	case !(s.Duration > 0) || math.IsInf(s.Duration, 0):
		return fmt.Errorf("%w: duration %v must be > 0", ErrInvalidParameter, s.Duration)
	case !(s.BeatHz > 0) || math.IsInf(s.BeatHz, 0):
		return fmt.Errorf("%w: beat frequency %v must be > 0", ErrInvalidParameter, s.BeatHz)
	case !(s.CarrierHz > 0) || math.IsInf(s.CarrierHz, 0):
		return fmt.Errorf("%w: carrier frequency %v must be > 0", ErrInvalidParameter, s.CarrierHz)
	case math.IsNaN(s.GainDB):
		return fmt.Errorf("%w: gain is NaN", ErrInvalidParameter)
	case s.Split != SplitUpper && s.Split != SplitSymmetric:
		return fmt.Errorf("%w: unknown split %v", ErrInvalidParameter, s.Split)
	case s.Split == SplitSymmetric && s.CarrierHz <= s.BeatHz/2:
		return fmt.Errorf("%w: carrier %v must exceed half the beat %v", ErrInvalidParameter, s.CarrierHz, s.BeatHz)
	}
	return nil
}

// Frequencies returns the left and right ear tone frequencies.
func (s BinauralSpec) Frequencies() (left, right float64) {
	if s.Split == SplitSymmetric {
		return s.CarrierHz - s.BeatHz/2, s.CarrierHz + s.BeatHz/2
	}
	return s.CarrierHz, s.CarrierHz + s.BeatHz
}

// Amplitude is the linear peak of each channel.
func (s BinauralSpec) Amplitude() float64 {
	return math.Min(utils.DBToGain(s.GainDB), 1)
}

// Generator renders a binaural tone. Every frame is computed from its absolute
// index, so any range renders bit-identically to the same range of a full
// render. A Generator reuses scratch space and must not be shared between
// goroutines.
type Generator struct {
	frames int
	amp    float64
	wLeft  float64 // radians per frame
	wRight float64

	left  []float64
	right []float64
}

// NewGenerator validates spec and prepares a Generator at sampleRate.
func NewGenerator(spec BinauralSpec, sampleRate int) (*Generator, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate %d", ErrInvalidParameter, sampleRate)
	}

	frames := framesFor(spec.Duration, sampleRate)
	if frames <= 0 {
		return nil, fmt.Errorf("%w: duration %vs is shorter than one frame", ErrInvalidParameter, spec.Duration)
	}

	fl, fr := spec.Frequencies()
	rate := float64(sampleRate)

	return &Generator{
		frames: frames,
		amp:    spec.Amplitude(),
		wLeft:  2 * math.Pi * fl / rate,
		wRight: 2 * math.Pi * fr / rate,
	}, nil
}

// Frames is the total length of the tone.
func (g *Generator) Frames() int { return g.frames }

// Fill renders stereo frames starting at frame start into the interleaved dst
// and returns the number of frames written.
func (g *Generator) Fill(dst []float64, start int) int {
	n := min(len(dst)/CanonicalChannels, g.frames-start)
	if n <= 0 {
		return 0
	}

	if cap(g.left) < n {
		g.left = make([]float64, n)
		g.right = make([]float64, n)
	}
	left, right := g.left[:n], g.right[:n]

	for i := range n {
		idx := float64(start + i)
		left[i] = math.Sin(g.wLeft * idx)
		right[i] = math.Sin(g.wRight * idx)
	}

	f64.Scale(left, left, g.amp)
	f64.Scale(right, right, g.amp)
	f64.Interleave2(dst[:n*CanonicalChannels], left, right)

	return n
}

// Generate renders the complete binaural tone described by spec.
func Generate(spec BinauralSpec, sampleRate int) (Buffer, error) {
	g, err := NewGenerator(spec, sampleRate)
	if err != nil {
		return Buffer{}, err
	}

	out := NewBuffer(sampleRate, CanonicalChannels, g.Frames())
	g.Fill(out.Samples, 0)

	return out, nil
}
