// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis files.
//
// This package uses github.com/jfreymuth/oggvorbis. Mono and stereo streams
// at any sample rate are supported:
//
//	f, _ := os.Open("campfire.ogg")
//	buf, err := vorbis.Decoder{}.Decode(f)
//
// The decoder already clamps samples to [-1.0, 1.0].
package vorbis
