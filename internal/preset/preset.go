// SPDX-License-Identifier: EPL-2.0

// Package preset holds the named binaural settings ("vibes") the command line
// tool renders from.
package preset

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/ik5/sleepmix/audio"
	"github.com/ik5/sleepmix/utils"
)

var (
	ErrUnknownVibe   = errors.New("unknown vibe")
	ErrInvalidPreset = errors.New("invalid preset")
)

// Preset is one vibe.
type Preset struct {
	Beat    float64 `yaml:"beat"`
	Carrier float64 `yaml:"carrier"`
	// Volume is the linear peak amplitude of the tone, in (0,1].
	Volume      float64 `yaml:"volume"`
	Description string  `yaml:"description"`
}

// GainDB is Volume in decibels.
func (p Preset) GainDB() float64 {
	return utils.GainToDB(p.Volume)
}

// Binaural returns the tone settings of the preset. The duration is left to
// the mix request.
func (p Preset) Binaural() audio.BinauralSpec {
	return audio.BinauralSpec{
		BeatHz:    p.Beat,
		CarrierHz: p.Carrier,
		GainDB:    p.GainDB(),
	}
}

func (p Preset) Validate() error {
	switch {
	case !(p.Beat > 0) || math.IsInf(p.Beat, 0):
		return fmt.Errorf("%w: beat %v must be > 0", ErrInvalidPreset, p.Beat)
	case !(p.Carrier > 0) || math.IsInf(p.Carrier, 0):
		return fmt.Errorf("%w: carrier %v must be > 0", ErrInvalidPreset, p.Carrier)
	case !(p.Volume > 0 && p.Volume <= 1):
		return fmt.Errorf("%w: volume %v outside (0,1]", ErrInvalidPreset, p.Volume)
	}
	return nil
}

// Set is an ordered collection of presets and aliases. Prefix matches are
// tried in insertion order.
type Set struct {
	names   []string
	presets map[string]Preset
	aliases map[string]string
}

func NewSet() *Set {
	return &Set{
		presets: make(map[string]Preset),
		aliases: make(map[string]string),
	}
}

// Default returns the built-in vibes.
func Default() *Set {
	s := NewSet()

	// night
	s.mustAdd("deep", Preset{4.5, 180, 0.25, "Deeper settle (theta-delta border)."})
	s.mustAdd("calm", Preset{6.0, 200, 0.28, "Mid-theta calm and clear."})
	s.mustAdd("soothe", Preset{5.0, 190, 0.26, "Gentle settle."})
	s.mustAdd("dream", Preset{4.0, 170, 0.24, "Very sleepy."})
	// awake
	s.mustAdd("focus", Preset{6.5, 210, 0.27, "Light focus."})
	s.mustAdd("flow", Preset{7.0, 220, 0.27, "Creative energy."})
	s.mustAdd("alert", Preset{8.0, 240, 0.26, "Alpha-theta edge, peppy."})
	s.mustAdd("meditate", Preset{5.5, 200, 0.26, "Balanced presence."})
	s.mustAdd("warm", Preset{5.5, 180, 0.27, "Warmer timbre, good under fire or rain."})
	s.mustAdd("airy", Preset{6.0, 260, 0.26, "Brighter, leaves space for deep voices."})

	for alias, target := range map[string]string{
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
	} {
		s.aliases[alias] = target
	}

	return s
}

func (s *Set) mustAdd(name string, p Preset) {
	if err := s.Add(name, p); err != nil {
		panic(err)
	}
}

// Add registers p under name, replacing an existing preset of that name in
// place.
func (s *Set) Add(name string, p Preset) error {
	key := normalize(name)
	if key == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidPreset)
	}
	if err := p.Validate(); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}

	if _, ok := s.presets[key]; !ok {
		s.names = append(s.names, key)
	}
	s.presets[key] = p
	delete(s.aliases, key)

	return nil
}

// Alias makes alias resolve to the preset target.
func (s *Set) Alias(alias, target string) error {
	key, tgt := normalize(alias), normalize(target)
	if _, ok := s.presets[tgt]; !ok {
		return fmt.Errorf("%w: alias %q points at %q", ErrUnknownVibe, key, tgt)
	}
	if _, ok := s.presets[key]; ok {
		return fmt.Errorf("%w: alias %q shadows a preset", ErrInvalidPreset, key)
	}
	s.aliases[key] = tgt
	return nil
}

// Names lists the presets in insertion order.
func (s *Set) Names() []string {
	return append([]string(nil), s.names...)
}

// Resolve finds a preset by exact name, then by alias, then by the first
// preset name starting with name.
func (s *Set) Resolve(name string) (string, Preset, error) {
	key := normalize(name)
	if key != "" {
		if p, ok := s.presets[key]; ok {
			return key, p, nil
		}
		if target, ok := s.aliases[key]; ok {
			return target, s.presets[target], nil
		}
		for _, n := range s.names {
			if strings.HasPrefix(n, key) {
				return n, s.presets[n], nil
			}
		}
	}

	return "", Preset{}, fmt.Errorf("%w %q, choices: %s", ErrUnknownVibe, name, strings.Join(s.names, ", "))
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
