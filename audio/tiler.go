// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"

	"github.com/ik5/sleepmix/utils"
)

// Tiler extends a clip to a target length by repetition.
//
// Consecutive copies overlap by the crossfade window: over the overlap the
// tail of the outgoing copy fades out and the head of the incoming copy fades
// in along equal-power curves, so the loop period is frames-window. A clip at
// least as long as the target is truncated instead and passes through
// unchanged.
//
// The tiled signal is a pure function of the output frame index and the source
// clip, so Fill can render any range independently.
type Tiler struct {
	src      Buffer
	target   int
	window   int
	period   int // 0 when the clip is only truncated
	fadeIn   []float64
	fadeOut  []float64
	channels int
}

// NewTiler prepares a Tiler for src. window is the crossfade length in frames.
func NewTiler(src Buffer, target, window int) (*Tiler, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	if target <= 0 {
		return nil, fmt.Errorf("%w: target length %d", ErrInvalidParameter, target)
	}
	if window < 0 {
		return nil, fmt.Errorf("%w: crossfade window %d", ErrInvalidParameter, window)
	}

	t := &Tiler{
		src:      src,
		target:   target,
		window:   window,
		channels: src.Channels,
	}

	frames := src.Frames()
	if frames >= target {
		return t, nil
	}
	if frames <= window {
		return nil, fmt.Errorf("%w: clip has %d frames, crossfade needs more than %d",
			ErrClipTooShort, frames, window)
	}

	t.period = frames - window
	t.fadeIn = make([]float64, window)
	t.fadeOut = make([]float64, window)
	for j := range window {
		t.fadeIn[j], t.fadeOut[j] = utils.EqualPower((float64(j) + 0.5) / float64(window))
	}

	return t, nil
}

// Frames is the tiled length.
func (t *Tiler) Frames() int { return t.target }

// Channels of the tiled output, always the source channel count.
func (t *Tiler) Channels() int { return t.channels }

// Fill renders frames starting at start into the interleaved dst and returns
// the number of frames written.
func (t *Tiler) Fill(dst []float64, start int) int {
	ch := t.channels
	n := min(len(dst)/ch, t.target-start)
	if n <= 0 {
		return 0
	}

	src := t.src.Samples
	if t.period == 0 {
		copy(dst[:n*ch], src[start*ch:(start+n)*ch])
		return n
	}

	written := 0
	for written < n {
		i := start + written
		k, j := i/t.period, i%t.period

		if k > 0 && j < t.window {
			// inside a seam: blend head j with the tail of the previous copy
			run := min(t.window-j, n-written)
			for f := range run {
				in, out := t.fadeIn[j+f], t.fadeOut[j+f]
				head := (j + f) * ch
				tail := (t.period + j + f) * ch
				o := (written + f) * ch
				for c := range ch {
					dst[o+c] = src[head+c]*in + src[tail+c]*out
				}
			}
			written += run
			continue
		}

		run := min(t.period-j, n-written)
		copy(dst[written*ch:(written+run)*ch], src[j*ch:(j+run)*ch])
		written += run
	}

	return n
}

// Tile extends buf to exactly target frames with a crossfade of window frames
// at every seam.
func Tile(buf Buffer, target, window int) (Buffer, error) {
	t, err := NewTiler(buf, target, window)
	if err != nil {
		return Buffer{}, err
	}

	out := NewBuffer(buf.SampleRate, buf.Channels, target)
	t.Fill(out.Samples, 0)

	return out, nil
}
