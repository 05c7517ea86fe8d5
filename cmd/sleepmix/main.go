// SPDX-License-Identifier: EPL-2.0

// Command sleepmix renders a binaural track for a vibe, optionally blended
// with looped ambient recordings, to a 16-bit stereo WAV file.
//
// Usage:
//
//	sleepmix -vibe deep -minutes 30 -ambient rain.ogg -ambient fire.wav:-18
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/ik5/sleepmix"
	"github.com/ik5/sleepmix/audio"
	"github.com/ik5/sleepmix/internal/config"
	"github.com/ik5/sleepmix/internal/logger"
	"github.com/ik5/sleepmix/internal/preset"
)

func main() {
	err := run(os.Args[1:], os.Stdout, os.Stderr)
	switch {
	case err == nil, errors.Is(err, flag.ErrHelp):
		return
	case isUsage(err):
		fmt.Fprintln(os.Stderr, "sleepmix:", err)
		os.Exit(2)
	default:
		fmt.Fprintln(os.Stderr, explain(err))
		os.Exit(1)
	}
}

type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

func isUsage(err error) bool {
	var ue *usageError
	return errors.As(err, &ue)
}

// ambientArg is one -ambient value, path[:dB].
type ambientArg struct {
	path   string
	gainDB *float64
}

type ambientArgs []ambientArg

func (a *ambientArgs) String() string {
	parts := make([]string, 0, len(*a))
	for _, arg := range *a {
		if arg.gainDB != nil {
			parts = append(parts, fmt.Sprintf("%s:%g", arg.path, *arg.gainDB))
			continue
		}
		parts = append(parts, arg.path)
	}
	return strings.Join(parts, ",")
}

// Set keeps a colon in the path when what follows it is not a number.
func (a *ambientArgs) Set(v string) error {
	arg := ambientArg{path: v}
	if i := strings.LastIndexByte(v, ':'); i > 0 {
		if db, err := strconv.ParseFloat(v[i+1:], 64); err == nil {
			arg = ambientArg{path: v[:i], gainDB: &db}
		}
	}
	if arg.path == "" {
		return errors.New("empty ambient path")
	}

	*a = append(*a, arg)
	return nil
}

type options struct {
	vibe       string
	minutes    float64
	seconds    float64
	beat       float64
	carrier    float64
	gainDB     float64
	symmetric  bool
	ambient    ambientArgs
	ambienceDB float64
	binauralDB float64
	fadeIn     float64
	fadeOut    float64
	loop       bool
	configPath string
	out        string
	list       bool
	verbose    bool

	// set holds the flags given on the command line
	set map[string]bool
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	opts := &options{set: make(map[string]bool)}

	fs := flag.NewFlagSet("sleepmix", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&opts.vibe, "vibe", config.DefaultVibe, "vibe preset name, alias or prefix")
	fs.Float64Var(&opts.minutes, "minutes", 0, "duration in minutes")
	fs.Float64Var(&opts.seconds, "seconds", 0, "duration in seconds")
	fs.Float64Var(&opts.beat, "beat", 0, "override the beat frequency in Hz")
	fs.Float64Var(&opts.carrier, "carrier", 0, "override the carrier frequency in Hz")
	fs.Float64Var(&opts.gainDB, "gain-db", 0, "override the binaural tone gain in dB")
	fs.BoolVar(&opts.symmetric, "symmetric", false, "split the beat evenly around the carrier")
	fs.Var(&opts.ambient, "ambient", "ambient recording `path[:dB]`, may be repeated")
	fs.Float64Var(&opts.ambienceDB, "ambience-db", config.DefaultAmbienceDB, "gain of ambient files without their own")
	fs.Float64Var(&opts.binauralDB, "binaural-db", 0, "binaural reference level in dB")
	fs.Float64Var(&opts.fadeIn, "fade-in", config.DefaultFade, "fade-in seconds")
	fs.Float64Var(&opts.fadeOut, "fade-out", config.DefaultFade, "fade-out seconds")
	fs.BoolVar(&opts.loop, "loop", false, "no fades, so the track loops seamlessly")
	fs.StringVar(&opts.configPath, "config", "", "YAML configuration file")
	fs.StringVar(&opts.out, "out", "", "output WAV path (default: generated from the settings)")
	fs.BoolVar(&opts.list, "list", false, "list the available vibes and exit")
	fs.BoolVar(&opts.verbose, "v", false, "verbose logging")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, &usageError{fmt.Sprintf("unexpected arguments: %s", strings.Join(fs.Args(), " "))}
	}
	fs.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })

	return opts, nil
}

// duration in seconds from exactly one of -minutes and -seconds.
func (o *options) duration() (float64, error) {
	switch {
	case o.set["minutes"] && o.set["seconds"]:
		return 0, &usageError{"-minutes and -seconds are mutually exclusive"}
	case o.set["minutes"]:
		if !(o.minutes > 0) {
			return 0, &usageError{"-minutes must be > 0"}
		}
		return o.minutes * 60, nil
	case o.set["seconds"]:
		if !(o.seconds > 0) {
			return 0, &usageError{"-seconds must be > 0"}
		}
		return o.seconds, nil
	}
	return 0, &usageError{"one of -minutes or -seconds is required"}
}

func run(args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	presets, err := cfg.PresetSet()
	if err != nil {
		return err
	}

	if opts.list {
		return listVibes(stdout, presets)
	}

	duration, err := opts.duration()
	if err != nil {
		return err
	}

	log := logger.NewConsole(stderr, opts.verbose)
	defer func() { _ = log.Sync() }()

	vibe := cfg.Vibe
	if opts.set["vibe"] {
		vibe = opts.vibe
	}
	name, p, err := presets.Resolve(vibe)
	if err != nil {
		return err
	}

	spec := p.Binaural()
	if opts.set["beat"] {
		spec.BeatHz = opts.beat
	}
	if opts.set["carrier"] {
		spec.CarrierHz = opts.carrier
	}
	if opts.set["gain-db"] {
		spec.GainDB = opts.gainDB
	}
	if opts.symmetric {
		spec.Split = audio.SplitSymmetric
	}

	engine := cfg.Engine()
	if opts.set["binaural-db"] {
		engine.Levels.BinauralDB = opts.binauralDB
	}
	ambienceDB := pick(opts, "ambience-db", opts.ambienceDB, cfg.AmbienceDB)

	sources, err := loadAmbient(opts.ambient, ambienceDB, log)
	if err != nil {
		return err
	}

	pipeline, err := audio.NewPipeline(engine, audio.WithLogger(log))
	if err != nil {
		return err
	}

	req := audio.MixRequest{
		Duration: duration,
		Binaural: spec,
		Ambient:  sources,
		FadeIn:   pick(opts, "fade-in", opts.fadeIn, cfg.FadeIn),
		FadeOut:  pick(opts, "fade-out", opts.fadeOut, cfg.FadeOut),
	}
	if opts.loop {
		req.FadeIn, req.FadeOut = 0, 0
	}

	out := opts.out
	if out == "" {
		out = outputName(name, spec, duration, opts.ambient)
	}

	log.Info("rendering",
		zap.String("vibe", name),
		zap.Float64("beat", spec.BeatHz),
		zap.Float64("carrier", spec.CarrierHz),
		zap.Stringer("split", spec.Split),
		zap.Float64("seconds", duration),
		zap.Int("ambient", len(sources)))

	res, err := render(out, req, pipeline)
	if err != nil {
		return err
	}

	log.Info("rendered",
		zap.String("out", out),
		zap.Int("frames", res.Buffer.Frames()),
		zap.Float64("peak", res.Peak))
	fmt.Fprintln(stdout, out)

	return nil
}

// pick returns the flag value when the flag was given and fallback otherwise.
func pick(opts *options, name string, value, fallback float64) float64 {
	if opts.set[name] {
		return value
	}
	return fallback
}

// loadAmbient decodes every file and reports all failures together.
func loadAmbient(args ambientArgs, defaultDB float64, log *logger.Logger) ([]audio.AmbientSource, error) {
	reg := sleepmix.DefaultRegistry()
	sources := make([]audio.AmbientSource, 0, len(args))

	var errs error
	for _, arg := range args {
		gain := defaultDB
		if arg.gainDB != nil {
			gain = *arg.gainDB
		}

		src, err := sleepmix.LoadAmbient(arg.path, gain, reg)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}

		log.Debug("ambient loaded",
			zap.String("name", src.Name),
			zap.Float64("seconds", src.Buffer.Duration()),
			zap.Float64("gain_db", gain))
		sources = append(sources, src)
	}

	if errs != nil {
		return nil, errs
	}
	return sources, nil
}

func render(path string, req audio.MixRequest, p *audio.Pipeline) (audio.MixResult, error) {
	f, err := os.Create(path)
	if err != nil {
		return audio.MixResult{}, err
	}

	res, err := sleepmix.Render(f, req, p)
	err = multierr.Append(err, f.Close())
	if err != nil {
		_ = os.Remove(path)
		return audio.MixResult{}, err
	}

	return res, nil
}

// outputName builds <vibe>_beat<b>_car<c>_<dur>[__<ambient>].wav.
func outputName(vibe string, spec audio.BinauralSpec, duration float64, ambient ambientArgs) string {
	durTag := fmt.Sprintf("%dsec", int(duration))
	if math.Mod(duration, 60) == 0 {
		durTag = fmt.Sprintf("%dmin", int(duration/60))
	}

	name := fmt.Sprintf("%s_beat%s_car%s_%s", vibe,
		strconv.FormatFloat(spec.BeatHz, 'g', -1, 64),
		strconv.FormatFloat(spec.CarrierHz, 'g', -1, 64),
		durTag)

	if len(ambient) > 0 {
		tags := make([]string, len(ambient))
		for i, a := range ambient {
			base := filepath.Base(a.path)
			tags[i] = strings.TrimSuffix(base, filepath.Ext(base))
		}
		name += "__" + strings.Join(tags, "+")
	}

	return name + ".wav"
}

func listVibes(w io.Writer, presets *preset.Set) error {
	for _, name := range presets.Names() {
		_, p, err := presets.Resolve(name)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%-10s beat %5.2f Hz  carrier %6.1f Hz  %s\n",
			name, p.Beat, p.Carrier, p.Description); err != nil {
			return err
		}
	}
	return nil
}

// explain turns engine errors into messages that say what to change.
func explain(err error) string {
	errs := multierr.Errors(err)
	lines := make([]string, 0, len(errs))

	for _, e := range errs {
		hint := ""
		switch {
		case errors.Is(e, preset.ErrUnknownVibe):
			hint = "run with -list to see the available vibes"
		case errors.Is(e, preset.ErrInvalidPreset):
			hint = "check the presets in the configuration file"
		case errors.Is(e, audio.ErrUnsupportedFormat):
			hint = "convert the file to one of: " + strings.Join(sleepmix.DefaultRegistry().Formats(), ", ")
		case errors.Is(e, audio.ErrClipTooShort):
			hint = "use a longer ambient clip or lower crossfade_ms"
		case errors.Is(e, audio.ErrInvalidParameter):
			hint = "check the duration, frequency, fade and level settings"
		case errors.Is(e, audio.ErrLengthMismatch):
			hint = "this is a bug, please report it"
		}

		line := "sleepmix: " + e.Error()
		if hint != "" {
			line += " (" + hint + ")"
		}
		lines = append(lines, line)
	}

	return strings.Join(lines, "\n")
}
