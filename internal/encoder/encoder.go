// Package encoder turns decoded images into bytes for a given output
// format. Formats are looked up by name or by file extension.
package encoder

import (
	"image"
)

// DefaultQuality is used when a lossy encoder gets a quality outside 1-100.
const DefaultQuality = 90

// Encoder encodes an image to a specific format.
type Encoder interface {
	// Format returns the canonical format name (e.g. "png", "jpeg", "tiff").
	Format() string

	// Extensions returns the file extensions, without dot, that select
	// this encoder. The first one is used for generated file names.
	Extensions() []string

	// Encode converts the image to bytes. Lossless encoders ignore quality.
	Encode(img image.Image, quality int) ([]byte, error)

	// Available reports whether the encoder can run on this machine.
	Available() bool
}

func clampQuality(q int) int {
	if q <= 0 || q > 100 {
		return DefaultQuality
	}
	return q
}
