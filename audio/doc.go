// SPDX-License-Identifier: EPL-2.0

// Package audio is the synthesis and mixing engine of sleepmix.
//
// It renders fixed length stereo tracks from a binaural tone and any number
// of ambient recordings:
//   - Generator for binaural tone synthesis
//   - Tiler for seamless looping of short clips
//   - Normalize and Resample for channel and rate conversion
//   - Mixer for the ambient bed and the final blend
//   - Envelope and ClipGuard for fades and level safety
//   - Pipeline to run the stages above in fixed size chunks
//   - Registry for decoder lookup by format name
//
// # Buffers
//
// Audio is held in a Buffer of interleaved float64 samples in the range
// [-1.0, 1.0]:
//
//	type Buffer struct {
//	    SampleRate int
//	    Channels   int
//	    Samples    []float64
//	}
//
// Every transform returns a new Buffer and leaves its input alone. The
// pipeline works on canonical stereo at 48 kHz.
//
// # Rendering
//
// A Pipeline runs a MixRequest end to end:
//
//	p, _ := audio.NewPipeline(audio.DefaultConfig())
//	res, err := p.Run(audio.MixRequest{
//	    Duration: 600,
//	    Binaural: audio.BinauralSpec{BeatHz: 2.5, CarrierHz: 200, GainDB: -15},
//	    Ambient:  []audio.AmbientSource{{Buffer: rain, GainDB: -21}},
//	    FadeIn:   3,
//	    FadeOut:  3,
//	})
//
// Synthesis, tiling and mixing happen ChunkFrames at a time. Every stage
// computes its output from absolute frame indices, so the result does not
// depend on the chunk size.
//
// # Looping
//
// Clips shorter than the target are repeated with an equal-power crossfade
// of Config.Crossfade at every seam. The loop period is the clip length minus
// the crossfade. Clips no longer than the crossfade cannot be looped and fail
// with ErrClipTooShort.
//
// # Levels
//
// The binaural tone and the ambient bed are blended at the reference levels
// of Config.Levels, by default 0 dB and -6 dB. Individual ambient sources are
// scaled by their own GainDB first. After the fades the clip guard scales the
// whole track down when its peak exceeds Config.Ceiling. Quiet mixes are
// never raised.
//
// # Error Handling
//
// Errors wrap one of the sentinels ErrInvalidParameter, ErrUnsupportedFormat,
// ErrClipTooShort or ErrLengthMismatch. Pipeline errors are a *StageError
// that records where the run failed:
//
//	res, err := p.Run(req)
//	if errors.Is(err, audio.ErrClipTooShort) {
//	    stage, _ := audio.FailedStage(err) // audio.StateTiling
//	}
package audio
