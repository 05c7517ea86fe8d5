// SPDX-License-Identifier: EPL-2.0

package preset

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_NamesResolveToThemselves(t *testing.T) {
	t.Parallel()

	s := Default()
	names := s.Names()
	assert.Equal(t, []string{
		"deep", "calm", "soothe", "dream", "focus",
		"flow", "alert", "meditate", "warm", "airy",
	}, names)

	for _, name := range names {
		got, p, err := s.Resolve(name)
		require.NoError(t, err)
		assert.Equal(t, name, got)
		require.NoError(t, p.Validate())
	}
}

func TestResolve_Aliases(t *testing.T) {
	t.Parallel()

	s := Default()
	tests := map[string]string{
		"sleep":    "deep",
		"deeper":   "deep",
		"settle":   "deep",
		"night":    "calm",
		"study":    "focus",
		"work":     "focus",
		"creative": "flow",
		"energize": "alert",
		"presence": "meditate",
		"soft":     "soothe",
		"rain":     "warm",
		"fire":     "warm",
		"bright":   "airy",
	}

	for alias, want := range tests {
		got, _, err := s.Resolve(alias)
		require.NoError(t, err, alias)
		assert.Equal(t, want, got, alias)
	}
}

func TestResolve_Fuzzy(t *testing.T) {
	t.Parallel()

	s := Default()
	tests := []struct {
		in   string
		want string
	}{
		{"cal", "calm"},
		{"de", "deep"},
		{"d", "deep"},
		{"dr", "dream"},
		{"fo", "focus"},
		{"fl", "flow"},
		{"  DEEP ", "deep"},
		{"Med", "meditate"},
	}

	for _, tt := range tests {
		got, _, err := s.Resolve(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestResolve_Unknown(t *testing.T) {
	t.Parallel()

	s := Default()
	for _, name := range []string{"unknown", "", "   ", "zzz"} {
		_, _, err := s.Resolve(name)
		require.ErrorIs(t, err, ErrUnknownVibe, name)
		assert.Contains(t, err.Error(), "deep, calm, soothe")
	}
}

func TestPreset_Binaural(t *testing.T) {
	t.Parallel()

	_, p, err := Default().Resolve("deep")
	require.NoError(t, err)

	spec := p.Binaural()
	assert.Equal(t, 4.5, spec.BeatHz)
	assert.Equal(t, 180.0, spec.CarrierHz)
	assert.InDelta(t, 20*math.Log10(0.25), spec.GainDB, 1e-12)
	assert.InDelta(t, 0.25, spec.Amplitude(), 1e-12)
	assert.Zero(t, spec.Duration)
}

func TestSet_Add(t *testing.T) {
	t.Parallel()

	s := Default()
	require.NoError(t, s.Add("Ocean", Preset{Beat: 3, Carrier: 150, Volume: 0.2}))
	require.NoError(t, s.Add("calm", Preset{Beat: 6.2, Carrier: 205, Volume: 0.3}))

	names := s.Names()
	assert.Equal(t, "ocean", names[len(names)-1])
	assert.Equal(t, "calm", names[1], "overrides keep their position")

	_, p, err := s.Resolve("calm")
	require.NoError(t, err)
	assert.Equal(t, 6.2, p.Beat)

	got, _, err := s.Resolve("oce")
	require.NoError(t, err)
	assert.Equal(t, "ocean", got)

	// a preset named like an alias wins over the alias
	require.NoError(t, s.Add("rain", Preset{Beat: 2, Carrier: 120, Volume: 0.2}))
	got, p, err = s.Resolve("rain")
	require.NoError(t, err)
	assert.Equal(t, "rain", got)
	assert.Equal(t, 2.0, p.Beat)
}

func TestSet_AddInvalid(t *testing.T) {
	t.Parallel()

	s := NewSet()
	tests := []struct {
		name string
		p    Preset
	}{
		{"zero beat", Preset{Carrier: 200, Volume: 0.2}},
		{"negative carrier", Preset{Beat: 4, Carrier: -1, Volume: 0.2}},
		{"silent", Preset{Beat: 4, Carrier: 200}},
		{"too loud", Preset{Beat: 4, Carrier: 200, Volume: 1.5}},
		{"NaN beat", Preset{Beat: math.NaN(), Carrier: 200, Volume: 0.2}},
	}

	for _, tt := range tests {
		require.ErrorIs(t, s.Add(tt.name, tt.p), ErrInvalidPreset, tt.name)
	}
	require.ErrorIs(t, s.Add(" ", Preset{Beat: 4, Carrier: 200, Volume: 0.2}), ErrInvalidPreset)
	assert.Empty(t, s.Names())
}

func TestSet_Alias(t *testing.T) {
	t.Parallel()

	s := Default()
	require.NoError(t, s.Alias("Nap", "dream"))

	got, _, err := s.Resolve("nap")
	require.NoError(t, err)
	assert.Equal(t, "dream", got)

	require.ErrorIs(t, s.Alias("x", "nope"), ErrUnknownVibe)
	require.ErrorIs(t, s.Alias("calm", "deep"), ErrInvalidPreset)
}
