// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"

	"github.com/tphakala/simd/f64"
)

// Normalize conforms buf to stereo at sampleRate: mono input is duplicated to
// both channels at unchanged level, and a mismatched rate is converted with
// Resample. The result is always a new buffer.
func Normalize(buf Buffer, sampleRate int) (Buffer, error) {
	if err := buf.Validate(); err != nil {
		return Buffer{}, err
	}

	// Resample before upmixing so mono clips are interpolated once.
	out, err := Resample(buf, sampleRate)
	if err != nil {
		return Buffer{}, fmt.Errorf("normalize: %w", err)
	}

	if out.Channels == 1 {
		out = upmix(out)
	}

	return out, nil
}

// upmix duplicates a mono buffer to both stereo channels.
func upmix(mono Buffer) Buffer {
	out := NewBuffer(mono.SampleRate, CanonicalChannels, mono.Frames())
	f64.Interleave2(out.Samples, mono.Samples, mono.Samples)

	return out
}
