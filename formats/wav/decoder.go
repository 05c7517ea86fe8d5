// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-audio/wav"

	"github.com/ik5/sleepmix/audio"
	"github.com/ik5/sleepmix/utils"
)

const (
	formatPCM        = 1
	formatExtensible = 0xFFFE
)

// Decoder reads integer PCM WAV files of 8, 16, 24 or 32 bits.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Buffer, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		// go-audio needs to seek between chunks
		data, err := io.ReadAll(r)
		if err != nil {
			return audio.Buffer{}, fmt.Errorf("reading wav data: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	dec := wav.NewDecoder(rs)
	if !dec.IsValidFile() {
		if err := dec.Err(); err != nil {
			return audio.Buffer{}, fmt.Errorf("%w: %v", ErrNotWavFile, err)
		}
		return audio.Buffer{}, ErrNotWavFile
	}

	if dec.WavAudioFormat != formatPCM && dec.WavAudioFormat != formatExtensible {
		return audio.Buffer{}, fmt.Errorf("%w: format tag %#x", ErrUnsupportedWavLayout, dec.WavAudioFormat)
	}

	bitDepth := int(dec.BitDepth)
	switch bitDepth {
	case 8, 16, 24, 32:
	default:
		return audio.Buffer{}, fmt.Errorf("%w: %d bits", ErrUnsupportedBitDepth, bitDepth)
	}

	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		return audio.Buffer{}, fmt.Errorf("%w", err)
	}

	channels := int(dec.NumChans)
	// drop a trailing partial frame
	n := len(pcm.Data) - len(pcm.Data)%channels

	buf := audio.Buffer{
		SampleRate: int(dec.SampleRate),
		Channels:   channels,
		Samples:    make([]float64, n),
	}

	for i, v := range pcm.Data[:n] {
		if bitDepth == 8 {
			// 8-bit WAV is unsigned
			v -= 128
		}
		buf.Samples[i] = utils.PCMToFloat(v, bitDepth)
	}

	if err := buf.Validate(); err != nil {
		return audio.Buffer{}, err
	}

	return buf, nil
}
