// SPDX-License-Identifier: EPL-2.0

// Package wav reads and writes WAV files.
//
// Both directions go through github.com/go-audio/wav.
//
// # Decoding
//
// The Decoder accepts integer PCM at 8, 16, 24 and 32 bits, mono or stereo,
// at any sample rate, and returns the whole file as an audio.Buffer:
//
//	f, _ := os.Open("rain.wav")
//	buf, err := wav.Decoder{}.Decode(f)
//
// Readers that cannot seek are buffered in memory first.
//
// # Writing
//
// Writer streams 16-bit PCM to any io.WriteSeeker, one chunk of interleaved
// float samples at a time, so a long render never needs a second copy of the
// track in memory:
//
//	out, _ := os.Create("mix.wav")
//	w, _ := wav.NewWriter(out, 48000, 2)
//	for ... {
//	    w.Write(chunk)
//	}
//	w.Close()
//
// WriteBuffer does the same for a complete Buffer. Samples are clamped to
// [-1, 1] and rounded to the nearest 16-bit value.
//
// # Error Handling
//
//   - ErrNotWavFile: the input is not a RIFF/WAVE file
//   - ErrUnsupportedWavLayout: the fmt chunk is not integer PCM
//   - ErrUnsupportedBitDepth: PCM other than 8, 16, 24 or 32 bits
//   - ErrWriterClosed: Write after Close
package wav
