// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"

	"github.com/ik5/sleepmix/internal/logger"
)

// State of a pipeline run.
type State int

const (
	StateInitialized State = iota
	StateNormalizing
	StateSynthesizing
	StateTiling
	StateMixing
	StateEnveloping
	StateComplete
	StateFailed
)

var stateNames = [...]string{
	StateInitialized:  "initialized",
	StateNormalizing:  "normalizing",
	StateSynthesizing: "synthesizing",
	StateTiling:       "tiling",
	StateMixing:       "mixing",
	StateEnveloping:   "enveloping",
	StateComplete:     "complete",
	StateFailed:       "failed",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// StageError carries the state a run failed in.
type StageError struct {
	Stage State
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// FailedStage returns the stage a pipeline error originated in.
func FailedStage(err error) (State, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return StateFailed, false
}

// MixRequest is one render job.
type MixRequest struct {
	// Duration of the rendered track in seconds.
	Duration float64
	// Binaural describes the tone. A zero Binaural.Duration follows Duration.
	Binaural BinauralSpec
	Ambient  []AmbientSource
	FadeIn   float64
	FadeOut  float64
}

// Validate checks the request fields against cfg.
func (r MixRequest) Validate(cfg Config) error {
	switch {
	case !(r.Duration > 0) || math.IsInf(r.Duration, 0):
		return fmt.Errorf("%w: duration %v must be > 0", ErrInvalidParameter, r.Duration)
	case framesFor(r.Duration, cfg.SampleRate) <= 0:
		return fmt.Errorf("%w: duration %vs is shorter than one frame", ErrInvalidParameter, r.Duration)
	case !(r.FadeIn >= 0) || math.IsInf(r.FadeIn, 0):
		return fmt.Errorf("%w: fade-in %v must be >= 0", ErrInvalidParameter, r.FadeIn)
	case !(r.FadeOut >= 0) || math.IsInf(r.FadeOut, 0):
		return fmt.Errorf("%w: fade-out %v must be >= 0", ErrInvalidParameter, r.FadeOut)
	case cfg.StrictFades && r.FadeIn+r.FadeOut > r.Duration:
		return fmt.Errorf("%w: fades %vs+%vs exceed duration %vs",
			ErrInvalidParameter, r.FadeIn, r.FadeOut, r.Duration)
	case r.Binaural.Duration != 0 &&
		framesFor(r.Binaural.Duration, cfg.SampleRate) != framesFor(r.Duration, cfg.SampleRate):
		return fmt.Errorf("%w: binaural duration %vs does not match request duration %vs",
			ErrInvalidParameter, r.Binaural.Duration, r.Duration)
	}
	return nil
}

// MixResult is a finished track.
type MixResult struct {
	Buffer Buffer
	Peak   float64
}

// Observer is called on every state transition of a run.
type Observer func(from, to State)

// Option configures a Pipeline.
type Option func(*Pipeline)

func WithLogger(l *logger.Logger) Option {
	return func(p *Pipeline) { p.log = l }
}

func WithObserver(o Observer) Option {
	return func(p *Pipeline) { p.observers = append(p.observers, o) }
}

// WithChunkFrames overrides Config.ChunkFrames.
func WithChunkFrames(n int) Option {
	return func(p *Pipeline) { p.cfg.ChunkFrames = n }
}

// Pipeline renders MixRequests. It keeps no per-request state, so one
// Pipeline may serve concurrent Run calls.
type Pipeline struct {
	cfg       Config
	mixer     *Mixer
	log       *logger.Logger
	observers []Observer
}

func NewPipeline(cfg Config, opts ...Option) (*Pipeline, error) {
	p := &Pipeline{cfg: cfg, log: logger.Nop()}
	for _, opt := range opts {
		opt(p)
	}

	mixer, err := NewMixer(p.cfg)
	if err != nil {
		return nil, err
	}
	p.mixer = mixer

	return p, nil
}

// Config returns the effective configuration.
func (p *Pipeline) Config() Config { return p.cfg }

// Run renders req. On failure it returns a *StageError wrapping the original
// error and no result.
func (p *Pipeline) Run(req MixRequest) (MixResult, error) {
	r := &run{
		p:     p,
		state: StateInitialized,
		log:   p.log.With(zap.String("request", uuid.NewString())),
	}

	res, err := r.execute(req)
	if err != nil {
		failedIn := r.state
		r.enter(StateFailed)
		r.log.Debug("mix failed", zap.Stringer("stage", failedIn), zap.Error(err))
		return MixResult{}, &StageError{Stage: failedIn, Err: err}
	}

	r.log.Debug("mix complete",
		zap.Int("frames", res.Buffer.Frames()),
		zap.Float64("peak", res.Peak))
	return res, nil
}

type run struct {
	p     *Pipeline
	state State
	log   *logger.Logger
}

func (r *run) enter(next State) {
	prev := r.state
	r.state = next
	r.log.Debug("stage", zap.Stringer("from", prev), zap.Stringer("to", next))
	for _, o := range r.p.observers {
		o(prev, next)
	}
}

func (r *run) execute(req MixRequest) (MixResult, error) {
	cfg := r.p.cfg
	if err := req.Validate(cfg); err != nil {
		return MixResult{}, err
	}
	target := framesFor(req.Duration, cfg.SampleRate)
	chunk := cfg.ChunkFrames

	r.enter(StateNormalizing)
	sources := make([]AmbientSource, len(req.Ambient))
	for i, src := range req.Ambient {
		buf, err := Normalize(src.Buffer, cfg.SampleRate)
		if err != nil {
			return MixResult{}, fmt.Errorf("%s: %w", src.label(i), err)
		}
		sources[i] = AmbientSource{Buffer: buf, GainDB: src.GainDB, Name: src.Name}
	}

	r.enter(StateSynthesizing)
	spec := req.Binaural
	spec.Duration = req.Duration
	gen, err := NewGenerator(spec, cfg.SampleRate)
	if err != nil {
		return MixResult{}, err
	}

	r.enter(StateTiling)
	ambient, err := r.p.mixer.newBed(sources, target)
	if err != nil {
		return MixResult{}, err
	}
	if gen.Frames() != target || ambient.frames != target {
		return MixResult{}, fmt.Errorf("%w: binaural %d, bed %d, target %d frames",
			ErrLengthMismatch, gen.Frames(), ambient.frames, target)
	}

	r.enter(StateMixing)
	out := NewBuffer(cfg.SampleRate, CanonicalChannels, target)
	binChunk := make([]float64, min(chunk, target)*CanonicalChannels)
	var bedChunk []float64
	if len(sources) > 0 {
		bedChunk = make([]float64, len(binChunk))
	}

	for start := 0; start < target; start += chunk {
		n := gen.Fill(binChunk, start)
		b := binChunk[:n*CanonicalChannels]
		var bb []float64
		if bedChunk != nil {
			ambient.fill(bedChunk, start)
			bb = bedChunk[:len(b)]
		}
		r.p.mixer.blend(b, bb)
		copy(out.Samples[start*CanonicalChannels:], b)
	}

	r.enter(StateEnveloping)
	env, err := NewEnvelope(target, req.FadeIn, req.FadeOut, cfg.SampleRate)
	if err != nil {
		return MixResult{}, err
	}

	peak := 0.0
	r.eachChunk(out.Samples, func(s []float64, start int) {
		env.Apply(s, CanonicalChannels, start)
		peak = math.Max(peak, floats.Norm(s, math.Inf(1)))
	})

	if peak > cfg.Ceiling {
		gain := cfg.Ceiling / peak
		r.log.Warn("clip guard attenuating", zap.Float64("peak", peak), zap.Float64("gain", gain))
		r.eachChunk(out.Samples, func(s []float64, _ int) {
			limit(s, gain, cfg.Ceiling)
		})
		peak = out.Peak()
	}

	r.enter(StateComplete)
	return MixResult{Buffer: out, Peak: peak}, nil
}

// eachChunk calls fn on consecutive chunk-sized views of interleaved stereo
// samples along with their first frame index.
func (r *run) eachChunk(samples []float64, fn func(s []float64, start int)) {
	step := r.p.cfg.ChunkFrames * CanonicalChannels
	for off := 0; off < len(samples); off += step {
		fn(samples[off:min(off+step, len(samples))], off/CanonicalChannels)
	}
}
