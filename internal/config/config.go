// SPDX-License-Identifier: EPL-2.0

// Package config loads the settings of the sleepmix command from an optional
// YAML file and SLEEPMIX_* environment variables.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ik5/sleepmix/audio"
	"github.com/ik5/sleepmix/internal/preset"
)

const (
	// DefaultVibe is rendered when no vibe is given.
	DefaultVibe = "calm"
	// DefaultAmbienceDB is the gain of an ambient file without its own.
	DefaultAmbienceDB = -15.0
	// DefaultFade is the fade-in and fade-out length in seconds.
	DefaultFade = 2.0
)

// Config holds all runtime configuration. Zero values in a file keep the
// defaults only for keys that are absent.
type Config struct {
	// engine
	SampleRate  int     `yaml:"sample_rate"`
	CrossfadeMS int     `yaml:"crossfade_ms"`
	Ceiling     float64 `yaml:"ceiling"`
	ChunkFrames int     `yaml:"chunk_frames"`
	BinauralDB  float64 `yaml:"binaural_db"`
	AmbientDB   float64 `yaml:"ambient_db"`
	StrictFades bool    `yaml:"strict_fades"`

	// render defaults
	Vibe       string  `yaml:"vibe"`
	AmbienceDB float64 `yaml:"ambience_db"`
	FadeIn     float64 `yaml:"fade_in"`
	FadeOut    float64 `yaml:"fade_out"`

	Presets map[string]preset.Preset `yaml:"presets"`
	Aliases map[string]string        `yaml:"aliases"`
}

// Default mirrors audio.DefaultConfig.
func Default() Config {
	engine := audio.DefaultConfig()

	return Config{
		SampleRate:  engine.SampleRate,
		CrossfadeMS: int(engine.Crossfade / time.Millisecond),
		Ceiling:     engine.Ceiling,
		ChunkFrames: engine.ChunkFrames,
		BinauralDB:  engine.Levels.BinauralDB,
		AmbientDB:   engine.Levels.AmbientDB,
		StrictFades: engine.StrictFades,

		Vibe:       DefaultVibe,
		AmbienceDB: DefaultAmbienceDB,
		FadeIn:     DefaultFade,
		FadeOut:    DefaultFade,
	}
}

// Load builds the configuration from the defaults, the YAML file at path and
// the environment, in that order. An empty path falls back to
// $SLEEPMIX_CONFIG, and no file at all is fine.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = envStr("SLEEPMIX_CONFIG", "")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
		if err := cfg.decode(data); err != nil {
			return Config{}, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) decode(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c *Config) applyEnv() {
	c.SampleRate = envInt("SLEEPMIX_SAMPLE_RATE", c.SampleRate)
	c.CrossfadeMS = envInt("SLEEPMIX_CROSSFADE_MS", c.CrossfadeMS)
	c.Ceiling = envFloat("SLEEPMIX_CEILING", c.Ceiling)
	c.ChunkFrames = envInt("SLEEPMIX_CHUNK_FRAMES", c.ChunkFrames)
	c.BinauralDB = envFloat("SLEEPMIX_BINAURAL_DB", c.BinauralDB)
	c.AmbientDB = envFloat("SLEEPMIX_AMBIENT_DB", c.AmbientDB)
	c.StrictFades = envBool("SLEEPMIX_STRICT_FADES", c.StrictFades)

	c.Vibe = envStr("SLEEPMIX_VIBE", c.Vibe)
	c.AmbienceDB = envFloat("SLEEPMIX_AMBIENCE_DB", c.AmbienceDB)
	c.FadeIn = envFloat("SLEEPMIX_FADE_IN", c.FadeIn)
	c.FadeOut = envFloat("SLEEPMIX_FADE_OUT", c.FadeOut)
}

// Engine converts the engine part of the configuration.
func (c Config) Engine() audio.Config {
	return audio.Config{
		SampleRate:  c.SampleRate,
		Crossfade:   time.Duration(c.CrossfadeMS) * time.Millisecond,
		Ceiling:     c.Ceiling,
		ChunkFrames: c.ChunkFrames,
		Levels: audio.Levels{
			BinauralDB: c.BinauralDB,
			AmbientDB:  c.AmbientDB,
		},
		StrictFades: c.StrictFades,
	}
}

func (c Config) Validate() error {
	if err := c.Engine().Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.FadeIn < 0 || c.FadeOut < 0 {
		return fmt.Errorf("config: %w: fades %v/%v", audio.ErrInvalidParameter, c.FadeIn, c.FadeOut)
	}
	return nil
}

// PresetSet returns the built-in vibes with the configured presets and
// aliases merged in, presets first and each group in name order.
func (c Config) PresetSet() (*preset.Set, error) {
	set := preset.Default()

	for _, name := range slices.Sorted(maps.Keys(c.Presets)) {
		if err := set.Add(name, c.Presets[name]); err != nil {
			return nil, fmt.Errorf("config presets: %w", err)
		}
	}
	for _, alias := range slices.Sorted(maps.Keys(c.Aliases)) {
		if err := set.Alias(alias, c.Aliases[alias]); err != nil {
			return nil, fmt.Errorf("config aliases: %w", err)
		}
	}

	return set, nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
