// SPDX-License-Identifier: EPL-2.0

// Package audiotest builds deterministic audio buffers for tests.
package audiotest

import (
	"math"

	"github.com/ik5/sleepmix/audio"
)

// NewBuffer builds a buffer of frames frames where each sample is produced by
// waveform given its frame index and channel.
func NewBuffer(sampleRate, channels, frames int, waveform func(frame, channel int) float64) audio.Buffer {
	buf := audio.NewBuffer(sampleRate, channels, frames)
	for f := range frames {
		for c := range channels {
			buf.Samples[f*channels+c] = waveform(f, c)
		}
	}
	return buf
}

// Silent generates silence (all zeros).
func Silent(sampleRate, channels, frames int) audio.Buffer {
	return audio.NewBuffer(sampleRate, channels, frames)
}

// Sine generates the same sine wave on every channel.
func Sine(sampleRate, channels, frames int, frequency, amplitude float64) audio.Buffer {
	return NewBuffer(sampleRate, channels, frames, func(frame, _ int) float64 {
		t := float64(frame) / float64(sampleRate)
		return amplitude * math.Sin(2*math.Pi*frequency*t)
	})
}

// Constant fills every sample with value.
func Constant(sampleRate, channels, frames int, value float64) audio.Buffer {
	return NewBuffer(sampleRate, channels, frames, func(int, int) float64 {
		return value
	})
}

// Ramp rises linearly from -1 to 1 over the buffer, giving every frame a
// distinct value. The right channel is inverted when stereo.
func Ramp(sampleRate, channels, frames int) audio.Buffer {
	return NewBuffer(sampleRate, channels, frames, func(frame, channel int) float64 {
		v := -1 + 2*float64(frame)/float64(max(frames-1, 1))
		if channel == 1 {
			return -v
		}
		return v
	})
}

// Noise is a deterministic pseudo random signal in [-amplitude, amplitude].
func Noise(sampleRate, channels, frames int, amplitude float64) audio.Buffer {
	state := uint32(2463534242)
	return NewBuffer(sampleRate, channels, frames, func(int, int) float64 {
		// xorshift32
		state ^= state << 13
		state ^= state >> 17
		state ^= state << 5
		return amplitude * (float64(state)/float64(math.MaxUint32)*2 - 1)
	})
}

// MaxJump returns the largest absolute difference between consecutive frames
// of one channel.
func MaxJump(buf audio.Buffer, channel int) float64 {
	jump := 0.0
	for f := 1; f < buf.Frames(); f++ {
		d := math.Abs(buf.Samples[f*buf.Channels+channel] - buf.Samples[(f-1)*buf.Channels+channel])
		jump = math.Max(jump, d)
	}
	return jump
}

// Channel extracts one channel of buf.
func Channel(buf audio.Buffer, channel int) []float64 {
	out := make([]float64, buf.Frames())
	for f := range out {
		out[f] = buf.Samples[f*buf.Channels+channel]
	}
	return out
}
