// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"

	"github.com/tphakala/simd/f64"
	"gonum.org/v1/gonum/floats"

	"github.com/ik5/sleepmix/utils"
)

// AmbientSource is one ambient recording of a mix and its gain.
type AmbientSource struct {
	// Buffer must already be canonical stereo at the mixer sample rate.
	Buffer Buffer
	GainDB float64
	// Name is used in error messages and logs only.
	Name string
}

func (s AmbientSource) label(i int) string {
	if s.Name != "" {
		return s.Name
	}
	return fmt.Sprintf("ambient[%d]", i)
}

// Mixer sums ambient sources into a bed and blends the bed with the binaural
// tone at the configured reference levels.
type Mixer struct {
	rate   int
	window int
	levels Levels
}

func NewMixer(cfg Config) (*Mixer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Mixer{
		rate:   cfg.SampleRate,
		window: cfg.CrossfadeFrames(),
		levels: cfg.Levels,
	}, nil
}

// Levels returns the reference levels of the mixer.
func (m *Mixer) Levels() Levels { return m.levels }

// bed renders the ambient bed range by range. Sources are always summed in
// slice order.
type bed struct {
	tilers  []*Tiler
	gains   []float64
	frames  int
	scratch []float64
}

func (m *Mixer) newBed(sources []AmbientSource, target int) (*bed, error) {
	if target <= 0 {
		return nil, fmt.Errorf("%w: target length %d", ErrInvalidParameter, target)
	}

	b := &bed{
		tilers: make([]*Tiler, 0, len(sources)),
		gains:  make([]float64, 0, len(sources)),
		frames: target,
	}

	for i, src := range sources {
		if src.Buffer.Channels != CanonicalChannels || src.Buffer.SampleRate != m.rate {
			return nil, fmt.Errorf("%w: %s is %d ch @ %d Hz, want %d ch @ %d Hz (normalize it first)",
				ErrUnsupportedFormat, src.label(i), src.Buffer.Channels, src.Buffer.SampleRate,
				CanonicalChannels, m.rate)
		}
		if !finite(src.GainDB) {
			return nil, fmt.Errorf("%w: %s gain %v", ErrInvalidParameter, src.label(i), src.GainDB)
		}

		t, err := NewTiler(src.Buffer, target, m.window)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", src.label(i), err)
		}

		b.tilers = append(b.tilers, t)
		b.gains = append(b.gains, utils.DBToGain(src.GainDB))
	}

	return b, nil
}

// fill writes the bed frames starting at start into dst.
func (b *bed) fill(dst []float64, start int) int {
	n := min(len(dst)/CanonicalChannels, b.frames-start)
	if n <= 0 {
		return 0
	}
	dst = dst[:n*CanonicalChannels]
	clear(dst)

	if len(b.tilers) == 0 {
		return n
	}
	if cap(b.scratch) < len(dst) {
		b.scratch = make([]float64, len(dst))
	}
	scratch := b.scratch[:len(dst)]

	for i, t := range b.tilers {
		t.Fill(scratch, start)
		f64.Scale(scratch, scratch, b.gains[i])
		floats.Add(dst, scratch)
	}

	return n
}

// MixAmbient tiles every source to target frames, applies its gain and sums
// them. No sources yields a silent bed.
func (m *Mixer) MixAmbient(sources []AmbientSource, target int) (Buffer, error) {
	b, err := m.newBed(sources, target)
	if err != nil {
		return Buffer{}, err
	}

	out := NewBuffer(m.rate, CanonicalChannels, target)
	b.fill(out.Samples, 0)

	return out, nil
}

// MixFinal blends the binaural signal with the ambient bed at the reference
// levels. A nil bed is silence.
func (m *Mixer) MixFinal(binaural Buffer, ambient *Buffer) (Buffer, error) {
	if err := binaural.Validate(); err != nil {
		return Buffer{}, fmt.Errorf("binaural: %w", err)
	}

	out := binaural.Clone()
	var bedSamples []float64
	if ambient != nil {
		if ambient.Channels != binaural.Channels || ambient.Frames() != binaural.Frames() {
			return Buffer{}, fmt.Errorf("%w: binaural %d frames x %d ch, bed %d frames x %d ch",
				ErrLengthMismatch, binaural.Frames(), binaural.Channels, ambient.Frames(), ambient.Channels)
		}
		bedSamples = make([]float64, len(ambient.Samples))
		copy(bedSamples, ambient.Samples)
	}

	m.blend(out.Samples, bedSamples)

	return out, nil
}

// blend scales binaural in place to the binaural reference and adds the bed at
// the ambient reference. bed is scaled in place too.
func (m *Mixer) blend(binaural, bed []float64) {
	f64.Scale(binaural, binaural, utils.DBToGain(m.levels.BinauralDB))
	if bed == nil {
		return
	}
	f64.Scale(bed, bed, utils.DBToGain(m.levels.AmbientDB))
	floats.Add(binaural, bed)
}
