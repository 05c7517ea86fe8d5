// SPDX-License-Identifier: EPL-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/sleepmix/audio"
	"github.com/ik5/sleepmix/internal/preset"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "sleepmix.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

// clearEnv keeps the developer's environment out of the tests.
func clearEnv(t *testing.T) {
	t.Helper()

	for _, key := range []string{
		"SLEEPMIX_CONFIG", "SLEEPMIX_SAMPLE_RATE", "SLEEPMIX_CROSSFADE_MS",
		"SLEEPMIX_CEILING", "SLEEPMIX_CHUNK_FRAMES", "SLEEPMIX_BINAURAL_DB",
		"SLEEPMIX_AMBIENT_DB", "SLEEPMIX_STRICT_FADES", "SLEEPMIX_VIBE",
		"SLEEPMIX_AMBIENCE_DB", "SLEEPMIX_FADE_IN", "SLEEPMIX_FADE_OUT",
	} {
		t.Setenv(key, "")
	}
}

func TestDefault_MatchesEngine(t *testing.T) {
	t.Parallel()

	cfg := Default()
	assert.Equal(t, audio.DefaultConfig(), cfg.Engine())
	assert.Equal(t, 50, cfg.CrossfadeMS)
	assert.Equal(t, DefaultVibe, cfg.Vibe)
	require.NoError(t, cfg.Validate())
}

func TestLoad_NoFile(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, `
sample_rate: 44100
crossfade_ms: 80
ambient_db: -9
strict_fades: true
vibe: deep
fade_out: 10
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	engine := cfg.Engine()
	assert.Equal(t, 44100, engine.SampleRate)
	assert.Equal(t, 80*time.Millisecond, engine.Crossfade)
	assert.Equal(t, -9.0, engine.Levels.AmbientDB)
	assert.True(t, engine.StrictFades)
	assert.Equal(t, "deep", cfg.Vibe)
	assert.Equal(t, 10.0, cfg.FadeOut)

	// absent keys keep their defaults
	assert.Equal(t, audio.DefaultCeiling, engine.Ceiling)
	assert.Equal(t, DefaultFade, cfg.FadeIn)
	assert.Equal(t, 0.0, engine.Levels.BinauralDB)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, "ceiling: 0.9\nvibe: deep\n")
	t.Setenv("SLEEPMIX_CEILING", "0.95")
	t.Setenv("SLEEPMIX_VIBE", "focus")
	t.Setenv("SLEEPMIX_CHUNK_FRAMES", "not a number")
	t.Setenv("SLEEPMIX_STRICT_FADES", "true")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0.95, cfg.Ceiling)
	assert.Equal(t, "focus", cfg.Vibe)
	assert.Equal(t, audio.DefaultChunkFrames, cfg.ChunkFrames, "unparsable values are ignored")
	assert.True(t, cfg.StrictFades)
}

func TestLoad_ConfigFromEnv(t *testing.T) {
	clearEnv(t)

	t.Setenv("SLEEPMIX_CONFIG", writeConfig(t, "binaural_db: -3\n"))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, -3.0, cfg.BinauralDB)
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name string
		body string
	}{
		{"unknown key", "sampel_rate: 48000\n"},
		{"bad yaml", "sample_rate: [\n"},
		{"invalid ceiling", "ceiling: 2\n"},
		{"negative fade", "fade_in: -1\n"},
		{"zero chunk", "chunk_frames: 0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_EmptyFile(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestPresetSet(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(writeConfig(t, `
presets:
  ocean:
    beat: 3.5
    carrier: 160
    volume: 0.22
    description: Slow swell.
  calm:
    beat: 6.1
    carrier: 200
    volume: 0.28
aliases:
  sea: ocean
`))
	require.NoError(t, err)

	set, err := cfg.PresetSet()
	require.NoError(t, err)

	name, p, err := set.Resolve("sea")
	require.NoError(t, err)
	assert.Equal(t, "ocean", name)
	assert.Equal(t, preset.Preset{Beat: 3.5, Carrier: 160, Volume: 0.22, Description: "Slow swell."}, p)

	_, p, err = set.Resolve("calm")
	require.NoError(t, err)
	assert.Equal(t, 6.1, p.Beat)
}

func TestPresetSet_Invalid(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Presets = map[string]preset.Preset{"broken": {Beat: 4, Carrier: 200}}
	_, err := cfg.PresetSet()
	require.ErrorIs(t, err, preset.ErrInvalidPreset)

	cfg = Default()
	cfg.Aliases = map[string]string{"nap": "siesta"}
	_, err = cfg.PresetSet()
	require.ErrorIs(t, err, preset.ErrUnknownVibe)
}
