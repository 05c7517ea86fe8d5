// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"errors"
	"testing"
)

func TestErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want string
	}{
		{ErrNotWavFile, "not a WAV file"},
		{ErrUnsupportedWavLayout, "unsupported WAV layout"},
		{ErrUnsupportedBitDepth, "unsupported WAV bit depth"},
		{ErrInvalidChannels, "invalid channel count"},
		{ErrWriterClosed, "WAV writer closed"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()

			if tt.err == nil {
				t.Fatal("error is nil")
			}
			if tt.err.Error() != tt.want {
				t.Errorf("Error() = %q, want %q", tt.err.Error(), tt.want)
			}
		})
	}

	for i, a := range tests {
		for j, b := range tests {
			if i != j && errors.Is(a.err, b.err) {
				t.Errorf("errors.Is(%v, %v) = true, want false", a.err, b.err)
			}
		}
	}
}
