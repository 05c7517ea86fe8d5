// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MP3 files.
//
// This package uses github.com/hajimehoshi/go-mp3, which always produces
// 16-bit stereo, so mono MP3 files come back with both channels equal:
//
//	f, _ := os.Open("wind.mp3")
//	buf, err := mp3.Decoder{}.Decode(f)
//
// A truncated final frame is dropped rather than reported as an error.
package mp3
