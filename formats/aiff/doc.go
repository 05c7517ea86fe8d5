// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes AIFF (Audio Interchange File Format) files.
//
// Decoding goes through github.com/go-audio/aiff. Uncompressed PCM at 8, 16,
// 24 and 32 bits is supported, at any sample rate:
//
//	f, _ := os.Open("creek.aif")
//	buf, err := aiff.Decoder{}.Decode(f)
//
// The whole file is returned as one audio.Buffer with samples scaled to
// [-1.0, 1.0). Readers that cannot seek are buffered in memory first.
package aiff
