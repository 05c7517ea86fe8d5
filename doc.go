// SPDX-License-Identifier: EPL-2.0

// Package sleepmix renders sleep and focus tracks: a binaural tone blended
// with looped ambient recordings, faded in and out and written as 16-bit
// stereo WAV.
//
// The engine lives in the audio subpackage. This package ties it to the
// format decoders and the WAV writer.
//
// # Quick Start
//
//	rain, _ := sleepmix.LoadAmbient("rain.ogg", -15, nil)
//
//	p, _ := audio.NewPipeline(audio.DefaultConfig())
//	out, _ := os.Create("calm.wav")
//	defer out.Close()
//
//	res, err := sleepmix.Render(out, audio.MixRequest{
//		Duration: 600,
//		Binaural: audio.BinauralSpec{BeatHz: 6, CarrierHz: 200, GainDB: -12},
//		Ambient:  []audio.AmbientSource{rain},
//		FadeIn:   2,
//		FadeOut:  2,
//	}, p)
//
// # Supported Formats
//
// Ambient recordings may be:
//   - WAV (PCM 8, 16, 24 and 32-bit) via formats/wav
//   - AIFF via formats/aiff
//   - MP3 via formats/mp3
//   - Ogg Vorbis via formats/vorbis
//
// Output is always WAV, written chunk by chunk.
package sleepmix
