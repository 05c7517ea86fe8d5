// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"

	"github.com/ik5/sleepmix/audio"
	"github.com/ik5/sleepmix/utils"
)

// go-mp3 always produces 16-bit little-endian stereo
const (
	channels       = 2
	bytesPerSample = 2
)

// mp3Reader is an interface for gomp3.Decoder to allow testing
type mp3Reader interface {
	Read([]byte) (int, error)
	SampleRate() int
}

// Decoder reads MPEG-1/2 Layer III files.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Buffer, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return audio.Buffer{}, fmt.Errorf("%w", err)
	}

	return readAll(dec)
}

// readAll drains dec into a Buffer.
func readAll(dec mp3Reader) (audio.Buffer, error) {
	data, err := io.ReadAll(dec)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return audio.Buffer{}, fmt.Errorf("reading mp3 frames: %w", err)
	}

	// a truncated last frame is dropped together with any partial sample
	frameBytes := channels * bytesPerSample
	data = data[:len(data)-len(data)%frameBytes]

	buf := audio.Buffer{
		SampleRate: dec.SampleRate(),
		Channels:   channels,
		Samples:    make([]float64, len(data)/bytesPerSample),
	}
	for i := range buf.Samples {
		v := int16(binary.LittleEndian.Uint16(data[i*bytesPerSample:]))
		buf.Samples[i] = utils.Int16ToFloat(v)
	}

	if err := buf.Validate(); err != nil {
		return audio.Buffer{}, err
	}

	return buf, nil
}
