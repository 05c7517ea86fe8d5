// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"errors"
	"fmt"
	"io"

	"github.com/jfreymuth/oggvorbis"

	"github.com/ik5/sleepmix/audio"
)

// readFrames is how many frames are pulled from the decoder per call.
const readFrames = 4096

// oggReader is an interface for oggvorbis.Reader to allow testing
type oggReader interface {
	SampleRate() int
	Channels() int
	Read([]float32) (int, error)
}

// Decoder reads Ogg Vorbis files.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Buffer, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return audio.Buffer{}, fmt.Errorf("%w", err)
	}

	return readAll(dec)
}

// readAll drains dec into a Buffer. oggvorbis.Reader.Read returns a count of
// values, always a multiple of the channel count.
func readAll(dec oggReader) (audio.Buffer, error) {
	ch := dec.Channels()
	if ch < 1 {
		return audio.Buffer{}, fmt.Errorf("%w: %d channels", audio.ErrUnsupportedFormat, ch)
	}

	out := audio.Buffer{SampleRate: dec.SampleRate(), Channels: ch}
	chunk := make([]float32, readFrames*ch)

	for {
		n, err := dec.Read(chunk)
		for _, v := range chunk[:n] {
			out.Samples = append(out.Samples, float64(v))
		}

		if errors.Is(err, io.EOF) || (err == nil && n == 0) {
			break
		}
		if err != nil {
			return audio.Buffer{}, fmt.Errorf("reading vorbis packets: %w", err)
		}
	}

	out.Samples = out.Samples[:len(out.Samples)-len(out.Samples)%ch]
	if err := out.Validate(); err != nil {
		return audio.Buffer{}, err
	}

	return out, nil
}
