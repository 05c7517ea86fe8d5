// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	// ErrInvalidParameter reports a malformed BinauralSpec, MixRequest or Config.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrUnsupportedFormat reports an input buffer with an unsupported channel
	// count, sample rate or length.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrClipTooShort reports an ambient clip that cannot hold a loop crossfade.
	ErrClipTooShort = errors.New("clip shorter than crossfade window")
	// ErrLengthMismatch reports buffers that should line up frame for frame but don't.
	ErrLengthMismatch = errors.New("buffer length mismatch")
)
