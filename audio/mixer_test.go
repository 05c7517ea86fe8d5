// SPDX-License-Identifier: EPL-2.0

package audio_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/sleepmix/audio"
	"github.com/ik5/sleepmix/internal/audiotest"
)

// testConfig is the default engine at 8 kHz, where the crossfade is 400
// frames.
func testConfig() audio.Config {
	cfg := audio.DefaultConfig()
	cfg.SampleRate = 8000
	return cfg
}

func newMixer(t *testing.T, cfg audio.Config) *audio.Mixer {
	t.Helper()

	m, err := audio.NewMixer(cfg)
	require.NoError(t, err)
	return m
}

func TestNewMixer_InvalidConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(*audio.Config)
	}{
		{"zero rate", func(c *audio.Config) { c.SampleRate = 0 }},
		{"negative crossfade", func(c *audio.Config) { c.Crossfade = -1 }},
		{"zero ceiling", func(c *audio.Config) { c.Ceiling = 0 }},
		{"ceiling above full scale", func(c *audio.Config) { c.Ceiling = 1.5 }},
		{"zero chunk", func(c *audio.Config) { c.ChunkFrames = 0 }},
		{"NaN level", func(c *audio.Config) { c.Levels.AmbientDB = math.NaN() }},
		{"infinite level", func(c *audio.Config) { c.Levels.BinauralDB = math.Inf(1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := audio.DefaultConfig()
			tt.modify(&cfg)
			_, err := audio.NewMixer(cfg)
			require.ErrorIs(t, err, audio.ErrInvalidParameter)
		})
	}
}

func TestMixer_Levels(t *testing.T) {
	t.Parallel()

	m := newMixer(t, audio.DefaultConfig())
	assert.Equal(t, audio.Levels{BinauralDB: 0, AmbientDB: -6}, m.Levels())
	assert.Greater(t, m.Levels().BinauralDB, m.Levels().AmbientDB)
}

func TestMixAmbient_NoSourcesIsSilence(t *testing.T) {
	t.Parallel()

	m := newMixer(t, testConfig())
	bed, err := m.MixAmbient(nil, 1234)
	require.NoError(t, err)

	assert.Equal(t, 1234, bed.Frames())
	assert.Equal(t, 2, bed.Channels)
	assert.Equal(t, 0.0, bed.Peak())
}

func TestMixAmbient_GainsAndSum(t *testing.T) {
	t.Parallel()

	m := newMixer(t, testConfig())
	sources := []audio.AmbientSource{
		{Buffer: audiotest.Constant(8000, 2, 4000, 0.5), GainDB: 0, Name: "a"},
		{Buffer: audiotest.Constant(8000, 2, 4000, 0.4), GainDB: -20, Name: "b"},
	}

	bed, err := m.MixAmbient(sources, 2000)
	require.NoError(t, err)
	require.Equal(t, 2000, bed.Frames())

	for _, v := range bed.Samples {
		assert.InDelta(t, 0.5+0.04, v, 1e-12)
	}
}

func TestMixAmbient_TilesShortSources(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	m := newMixer(t, cfg)
	clip := audiotest.Noise(8000, 2, 1000, 0.3)

	bed, err := m.MixAmbient([]audio.AmbientSource{{Buffer: clip}}, 5000)
	require.NoError(t, err)

	tiled, err := audio.Tile(clip, 5000, cfg.CrossfadeFrames())
	require.NoError(t, err)
	assert.Equal(t, tiled.Samples, bed.Samples)
}

func TestMixAmbient_Deterministic(t *testing.T) {
	t.Parallel()

	m := newMixer(t, testConfig())
	sources := []audio.AmbientSource{
		{Buffer: audiotest.Noise(8000, 2, 1500, 0.6), GainDB: -3},
		{Buffer: audiotest.Sine(8000, 2, 2500, 330, 0.4), GainDB: -9},
		{Buffer: audiotest.Ramp(8000, 2, 900), GainDB: -12},
	}

	a, err := m.MixAmbient(sources, 7000)
	require.NoError(t, err)
	b, err := m.MixAmbient(sources, 7000)
	require.NoError(t, err)
	assert.Equal(t, a.Samples, b.Samples)
}

func TestMixAmbient_Errors(t *testing.T) {
	t.Parallel()

	m := newMixer(t, testConfig())

	tests := []struct {
		name    string
		sources []audio.AmbientSource
		target  int
		wantErr error
	}{
		{
			name:    "zero target",
			target:  0,
			wantErr: audio.ErrInvalidParameter,
		},
		{
			name:    "mono source",
			sources: []audio.AmbientSource{{Buffer: audiotest.Silent(8000, 1, 4000)}},
			target:  100,
			wantErr: audio.ErrUnsupportedFormat,
		},
		{
			name:    "wrong rate",
			sources: []audio.AmbientSource{{Buffer: audiotest.Silent(44100, 2, 4000)}},
			target:  100,
			wantErr: audio.ErrUnsupportedFormat,
		},
		{
			name:    "NaN gain",
			sources: []audio.AmbientSource{{Buffer: audiotest.Silent(8000, 2, 4000), GainDB: math.NaN()}},
			target:  100,
			wantErr: audio.ErrInvalidParameter,
		},
		{
			name: "clip shorter than crossfade",
			sources: []audio.AmbientSource{
				{Buffer: audiotest.Silent(8000, 2, 4000)},
				{Buffer: audiotest.Silent(8000, 2, 300), Name: "drip.wav"},
			},
			target:  8000,
			wantErr: audio.ErrClipTooShort,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := m.MixAmbient(tt.sources, tt.target)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestMixAmbient_ErrorNamesSource(t *testing.T) {
	t.Parallel()

	m := newMixer(t, testConfig())
	_, err := m.MixAmbient([]audio.AmbientSource{
		{Buffer: audiotest.Silent(8000, 2, 4000)},
		{Buffer: audiotest.Silent(8000, 2, 300)},
	}, 8000)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ambient[1]")
}

func TestMixFinal_SilentBed(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Levels = audio.Levels{BinauralDB: -6, AmbientDB: -12}
	m := newMixer(t, cfg)

	bin, err := audio.Generate(audio.BinauralSpec{Duration: 0.5, BeatHz: 6, CarrierHz: 200}, 8000)
	require.NoError(t, err)
	silent := audiotest.Silent(8000, 2, bin.Frames())

	withBed, err := m.MixFinal(bin, &silent)
	require.NoError(t, err)
	withoutBed, err := m.MixFinal(bin, nil)
	require.NoError(t, err)

	gain := math.Pow(10, -6.0/20)
	for i, v := range bin.Samples {
		assert.InDelta(t, v*gain, withBed.Samples[i], 1e-12)
	}
	assert.Equal(t, withBed.Samples, withoutBed.Samples)
}

func TestMixFinal_Blend(t *testing.T) {
	t.Parallel()

	m := newMixer(t, testConfig())
	bin := audiotest.Constant(8000, 2, 10, 0.5)
	bed := audiotest.Constant(8000, 2, 10, 0.2)
	binOrig, bedOrig := bin.Clone(), bed.Clone()

	out, err := m.MixFinal(bin, &bed)
	require.NoError(t, err)

	want := 0.5 + 0.2*math.Pow(10, -6.0/20)
	for _, v := range out.Samples {
		assert.InDelta(t, want, v, 1e-12)
	}

	assert.Equal(t, binOrig.Samples, bin.Samples, "binaural input modified")
	assert.Equal(t, bedOrig.Samples, bed.Samples, "bed input modified")
}

func TestMixFinal_LengthMismatch(t *testing.T) {
	t.Parallel()

	m := newMixer(t, testConfig())
	bin := audiotest.Silent(8000, 2, 100)

	short := audiotest.Silent(8000, 2, 99)
	_, err := m.MixFinal(bin, &short)
	require.ErrorIs(t, err, audio.ErrLengthMismatch)

	mono := audiotest.Silent(8000, 1, 200)
	_, err = m.MixFinal(bin, &mono)
	require.ErrorIs(t, err, audio.ErrLengthMismatch)

	_, err = m.MixFinal(audio.Buffer{SampleRate: 8000, Channels: 2}, nil)
	require.ErrorIs(t, err, audio.ErrUnsupportedFormat)
}
