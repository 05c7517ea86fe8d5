// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/ik5/sleepmix/audio"
	"github.com/ik5/sleepmix/utils"
)

// Writer streams interleaved float samples into a 16-bit PCM WAV file. The
// header sizes are patched on Close, so the destination must be seekable.
type Writer struct {
	enc      *wav.Encoder
	buf      *goaudio.IntBuffer
	channels int
	frames   int
	closed   bool
}

// NewWriter starts a WAV file at sampleRate with channels interleaved channels.
func NewWriter(w io.WriteSeeker, sampleRate, channels int) (*Writer, error) {
	if channels < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidChannels, channels)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate %d", audio.ErrInvalidParameter, sampleRate)
	}

	return &Writer{
		enc: wav.NewEncoder(w, sampleRate, audio.CanonicalBitDepth, channels, formatPCM),
		buf: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
			SourceBitDepth: audio.CanonicalBitDepth,
		},
		channels: channels,
	}, nil
}

// Write appends whole frames of interleaved samples. Samples outside [-1,1]
// are clamped.
func (w *Writer) Write(samples []float64) error {
	if w.closed {
		return ErrWriterClosed
	}
	if len(samples)%w.channels != 0 {
		return fmt.Errorf("%w: %d samples is not a whole number of %d channel frames",
			audio.ErrInvalidParameter, len(samples), w.channels)
	}

	if cap(w.buf.Data) < len(samples) {
		w.buf.Data = make([]int, len(samples))
	}
	w.buf.Data = w.buf.Data[:len(samples)]
	for i, s := range samples {
		w.buf.Data[i] = int(utils.FloatToInt16(s))
	}

	if err := w.enc.Write(w.buf); err != nil {
		return fmt.Errorf("writing wav frames: %w", err)
	}
	w.frames += len(samples) / w.channels

	return nil
}

// Frames returns the number of frames written so far.
func (w *Writer) Frames() int { return w.frames }

// Close finalizes the headers. It does not close the underlying writer.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	if w.frames == 0 {
		// make sure the header and an empty data chunk exist
		w.buf.Data = w.buf.Data[:0]
		if err := w.enc.Write(w.buf); err != nil {
			return fmt.Errorf("writing wav header: %w", err)
		}
	}

	if err := w.enc.Close(); err != nil {
		return fmt.Errorf("closing wav encoder: %w", err)
	}
	return nil
}

// WriteBuffer writes buf as a complete 16-bit PCM WAV file.
func WriteBuffer(w io.WriteSeeker, buf audio.Buffer) error {
	if err := buf.Validate(); err != nil {
		return err
	}

	wr, err := NewWriter(w, buf.SampleRate, buf.Channels)
	if err != nil {
		return err
	}
	if err := wr.Write(buf.Samples); err != nil {
		return err
	}

	return wr.Close()
}
