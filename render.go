// SPDX-License-Identifier: EPL-2.0

package sleepmix

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"

	"github.com/ik5/sleepmix/audio"
	"github.com/ik5/sleepmix/formats/aiff"
	"github.com/ik5/sleepmix/formats/mp3"
	"github.com/ik5/sleepmix/formats/vorbis"
	"github.com/ik5/sleepmix/formats/wav"
)

// DefaultRegistry returns a registry with every bundled decoder.
func DefaultRegistry() *audio.Registry {
	reg := audio.NewRegistry()
	reg.Register("wav", wav.Decoder{})
	reg.Register("aiff", aiff.Decoder{})
	reg.Register("aif", aiff.Decoder{})
	reg.Register("mp3", mp3.Decoder{})
	reg.Register("ogg", vorbis.Decoder{})

	return reg
}

// DecodeFile decodes the file at path with the decoder registered for its
// extension. A nil reg means DefaultRegistry.
func DecodeFile(path string, reg *audio.Registry) (audio.Buffer, error) {
	if reg == nil {
		reg = DefaultRegistry()
	}

	dec, ok := reg.ForPath(path)
	if !ok {
		return audio.Buffer{}, fmt.Errorf("%w: %s (known: %s)",
			audio.ErrUnsupportedFormat, path, strings.Join(reg.Formats(), ", "))
	}

	f, err := os.Open(path)
	if err != nil {
		return audio.Buffer{}, err
	}
	defer f.Close()

	buf, err := dec.Decode(f)
	if err != nil {
		return audio.Buffer{}, fmt.Errorf("%s: %w", path, err)
	}

	return buf, nil
}

// LoadAmbient decodes an ambient recording and converts it to canonical
// stereo. The source is named after the file.
func LoadAmbient(path string, gainDB float64, reg *audio.Registry) (audio.AmbientSource, error) {
	buf, err := DecodeFile(path, reg)
	if err != nil {
		return audio.AmbientSource{}, err
	}

	buf, err = audio.Normalize(buf, audio.CanonicalRate)
	if err != nil {
		return audio.AmbientSource{}, fmt.Errorf("%s: %w", path, err)
	}

	return audio.AmbientSource{
		Buffer: buf,
		GainDB: gainDB,
		Name:   filepath.Base(path),
	}, nil
}

// Render runs req through p and writes the track to w as 16-bit stereo WAV,
// one pipeline chunk at a time. Nothing is written when the pipeline fails.
func Render(w io.WriteSeeker, req audio.MixRequest, p *audio.Pipeline) (res audio.MixResult, err error) {
	res, err = p.Run(req)
	if err != nil {
		return audio.MixResult{}, err
	}

	buf := res.Buffer
	ww, err := wav.NewWriter(w, buf.SampleRate, buf.Channels)
	if err != nil {
		return audio.MixResult{}, err
	}
	defer func() {
		err = multierr.Append(err, ww.Close())
		if err != nil {
			res = audio.MixResult{}
		}
	}()

	step := p.Config().ChunkFrames * buf.Channels
	for off := 0; off < len(buf.Samples); off += step {
		if err := ww.Write(buf.Samples[off:min(off+step, len(buf.Samples))]); err != nil {
			return audio.MixResult{}, err
		}
	}

	return res, nil
}
