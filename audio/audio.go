// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
	"math"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gonum.org/v1/gonum/floats"
)

const (
	// CanonicalRate is the sample rate every ambient source is mixed at.
	CanonicalRate = 48000
	// CanonicalChannels is the channel count of every mixed buffer.
	CanonicalChannels = 2
	// CanonicalBitDepth is the PCM bit depth rendered tracks are written with.
	CanonicalBitDepth = 16
)

// Buffer is a fully materialized block of interleaved PCM samples in [-1,1].
//
// Buffers are treated as immutable: every transform in this package returns a
// new Buffer and never writes into the Samples of its input.
type Buffer struct {
	// SampleRate in Hz.
	SampleRate int
	// Channels count (1=mono, 2=stereo).
	Channels int
	// Samples holds Frames()*Channels interleaved values.
	Samples []float64
}

// NewBuffer allocates a silent buffer of the given number of frames.
func NewBuffer(sampleRate, channels, frames int) Buffer {
	return Buffer{
		SampleRate: sampleRate,
		Channels:   channels,
		Samples:    make([]float64, frames*channels),
	}
}

// Frames is the number of samples per channel.
func (b Buffer) Frames() int {
	if b.Channels <= 0 {
		return 0
	}
	return len(b.Samples) / b.Channels
}

// Duration of the buffer in seconds.
func (b Buffer) Duration() float64 {
	if b.SampleRate <= 0 {
		return 0
	}
	return float64(b.Frames()) / float64(b.SampleRate)
}

// Clone returns a deep copy of b.
func (b Buffer) Clone() Buffer {
	out := b
	out.Samples = make([]float64, len(b.Samples))
	copy(out.Samples, b.Samples)
	return out
}

// Peak returns the maximum absolute sample value.
func (b Buffer) Peak() float64 {
	if len(b.Samples) == 0 {
		return 0
	}
	return floats.Norm(b.Samples, math.Inf(1))
}

// Validate reports ErrUnsupportedFormat for buffers the engine cannot process.
func (b Buffer) Validate() error {
	switch {
	case b.Channels != 1 && b.Channels != 2:
		return fmt.Errorf("%w: %d channels (want 1 or 2)", ErrUnsupportedFormat, b.Channels)
	case b.SampleRate <= 0:
		return fmt.Errorf("%w: sample rate %d", ErrUnsupportedFormat, b.SampleRate)
	case len(b.Samples) == 0:
		return fmt.Errorf("%w: zero-length input", ErrUnsupportedFormat)
	case len(b.Samples)%b.Channels != 0:
		return fmt.Errorf("%w: %d samples is not a whole number of %d-channel frames",
			ErrUnsupportedFormat, len(b.Samples), b.Channels)
	}
	return nil
}

// Decoder decodes a complete audio stream into a Buffer at its native rate
// and channel count.
type Decoder interface {
	Decode(r io.Reader) (Buffer, error)
}

// Registry for decoders by format key (e.g., "wav", "mp3", "ogg").
type Registry struct {
	codecs map[string]Decoder

	mtx *sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{
		codecs: make(map[string]Decoder),
		mtx:    &sync.Mutex{},
	}
}

func (r *Registry) Register(format string, d Decoder) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.codecs[strings.ToLower(format)] = d
}

func (r *Registry) Get(format string) (Decoder, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	d, ok := r.codecs[strings.ToLower(format)]
	return d, ok
}

// ForPath looks up a decoder by the extension of path.
func (r *Registry) ForPath(path string) (Decoder, bool) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return nil, false
	}
	return r.Get(ext)
}

// Formats lists the registered format keys in sorted order.
func (r *Registry) Formats() []string {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	out := make([]string, 0, len(r.codecs))
	for k := range r.codecs {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
