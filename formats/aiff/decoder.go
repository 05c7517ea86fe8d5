// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"

	"github.com/ik5/sleepmix/audio"
	"github.com/ik5/sleepmix/utils"
)

// readFrames is how many frames are pulled from the decoder per call.
const readFrames = 4096

// aiffReader is an interface for aiff.Decoder to allow testing
type aiffReader interface {
	Format() *goaudio.Format
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// Decoder reads uncompressed AIFF files of 8, 16, 24 or 32 bits.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Buffer, error) {
	// go-audio requires io.ReadSeeker
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return audio.Buffer{}, fmt.Errorf("reading aiff data: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	dec := aiff.NewDecoder(rs)
	if !dec.IsValidFile() {
		return audio.Buffer{}, ErrNotAiffFile
	}

	dec.ReadInfo()

	bitDepth := int(dec.BitDepth)
	switch bitDepth {
	case 8, 16, 24, 32:
	default:
		return audio.Buffer{}, fmt.Errorf("%w: %d bits", ErrUnsupportedBitDepth, bitDepth)
	}

	return readAll(dec, bitDepth)
}

// readAll drains dec into a Buffer.
func readAll(dec aiffReader, bitDepth int) (audio.Buffer, error) {
	format := dec.Format()
	if format == nil || format.NumChannels < 1 {
		return audio.Buffer{}, ErrUnsupportedAiffLayout
	}

	out := audio.Buffer{
		SampleRate: format.SampleRate,
		Channels:   format.NumChannels,
	}

	chunk := &goaudio.IntBuffer{
		Data:           make([]int, readFrames*format.NumChannels),
		Format:         format,
		SourceBitDepth: bitDepth,
	}

	for {
		n, err := dec.PCMBuffer(chunk)
		for _, v := range chunk.Data[:n] {
			// AIFF PCM is signed at every bit depth
			out.Samples = append(out.Samples, utils.PCMToFloat(v, bitDepth))
		}

		if err == io.EOF || (err == nil && n == 0) {
			break
		}
		if err != nil {
			return audio.Buffer{}, fmt.Errorf("reading aiff samples: %w", err)
		}
	}

	out.Samples = out.Samples[:len(out.Samples)-len(out.Samples)%out.Channels]
	if err := out.Validate(); err != nil {
		return audio.Buffer{}, err
	}

	return out, nil
}
