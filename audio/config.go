// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"math"
	"time"
)

const (
	// DefaultCrossfade is the loop seam crossfade length.
	DefaultCrossfade = 50 * time.Millisecond
	// DefaultCeiling is the clip guard ceiling, just under full scale.
	DefaultCeiling = 0.999
	// DefaultChunkFrames bounds the per-stage working set of the pipeline.
	DefaultChunkFrames = 65536
)

// Levels are the reference levels the binaural signal and the ambient bed are
// blended at.
type Levels struct {
	BinauralDB float64
	AmbientDB  float64
}

// DefaultLevels keeps the binaural reference 6 dB above the bed, the
// -15/-21 dB balance of a classic sleep mix.
func DefaultLevels() Levels {
	return Levels{BinauralDB: 0, AmbientDB: -6}
}

// Config holds the fixed engine settings. It is passed by value and never
// mutated by the engine, so pipelines with different policies can coexist.
type Config struct {
	SampleRate  int
	Crossfade   time.Duration
	Ceiling     float64
	ChunkFrames int
	Levels      Levels
	// StrictFades rejects requests whose fades add up to more than the
	// duration instead of clamping them at the midpoint.
	StrictFades bool
}

func DefaultConfig() Config {
	return Config{
		SampleRate:  CanonicalRate,
		Crossfade:   DefaultCrossfade,
		Ceiling:     DefaultCeiling,
		ChunkFrames: DefaultChunkFrames,
		Levels:      DefaultLevels(),
	}
}

// CrossfadeFrames is the crossfade window in frames at SampleRate.
func (c Config) CrossfadeFrames() int {
	return int(math.Round(c.Crossfade.Seconds() * float64(c.SampleRate)))
}

func (c Config) Validate() error {
	switch {
	case c.SampleRate <= 0:
		return fmt.Errorf("%w: sample rate %d", ErrInvalidParameter, c.SampleRate)
	case c.Crossfade < 0:
		return fmt.Errorf("%w: crossfade %v", ErrInvalidParameter, c.Crossfade)
	case !(c.Ceiling > 0 && c.Ceiling <= 1):
		return fmt.Errorf("%w: ceiling %v outside (0,1]", ErrInvalidParameter, c.Ceiling)
	case c.ChunkFrames <= 0:
		return fmt.Errorf("%w: chunk frames %d", ErrInvalidParameter, c.ChunkFrames)
	case !finite(c.Levels.BinauralDB) || !finite(c.Levels.AmbientDB):
		return fmt.Errorf("%w: levels %+v", ErrInvalidParameter, c.Levels)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// framesFor converts seconds to a whole frame count at rate.
func framesFor(seconds float64, rate int) int {
	return int(math.Round(seconds * float64(rate)))
}
