// Package raster holds the in-memory pixel model shared by every
// algorithm: byte planes, multi-plane images with an optional palette,
// per-image numeric metadata and label grids.
package raster

import (
	"errors"
	"fmt"
	"image/color"
	"math/rand"
)

var (
	// ErrInvalidArgument marks bad inputs: empty or mismatched images,
	// non-RGB images passed to RGB-only operations, impossible parameters.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrMissingMetadata marks an image lacking a metadata field an
	// operation depends on, such as the exposure time.
	ErrMissingMetadata = errors.New("missing metadata")
)

// Image is an ordered, non-empty list of equally sized planes. Planes
// 0, 1 and 2 are read as R, G and B; a fourth plane, if present, is alpha.
// Palette is only meaningful for single-plane indexed images.
type Image struct {
	width    int
	height   int
	planes   []*Plane
	Palette  color.Palette
	Metadata Metadata

	kindKnown bool
	grayscale bool
}

// New assembles an image from planes. The planes are adopted, not copied.
func New(planes []*Plane, palette color.Palette) (*Image, error) {
	if len(planes) == 0 {
		return nil, fmt.Errorf("%w: at least one plane is required", ErrInvalidArgument)
	}
	first := planes[0]
	for i, p := range planes {
		if p == nil {
			return nil, fmt.Errorf("%w: plane %d is nil", ErrInvalidArgument, i)
		}
		if p.width != first.width || p.height != first.height {
			return nil, fmt.Errorf("%w: plane %d is %dx%d, plane 0 is %dx%d",
				ErrInvalidArgument, i, p.width, p.height, first.width, first.height)
		}
	}
	return &Image{
		width:    first.width,
		height:   first.height,
		planes:   planes,
		Palette:  palette,
		Metadata: Metadata{},
	}, nil
}

// NewBlank allocates a zeroed image with n planes.
func NewBlank(width, height, n int) *Image {
	planes := make([]*Plane, n)
	for i := range planes {
		planes[i] = NewPlane(width, height)
	}
	img, err := New(planes, nil)
	if err != nil {
		panic(err)
	}
	return img
}

// NewRandom fills an image with uniformly random samples.
func NewRandom(width, height, n int, rng *rand.Rand) *Image {
	img := NewBlank(width, height, n)
	for _, p := range img.planes {
		rng.Read(p.pix)
	}
	return img
}

// Clone deep-copies planes and metadata. The palette slice is shared;
// palettes are never mutated in place.
func (img *Image) Clone() *Image {
	planes := make([]*Plane, len(img.planes))
	for i, p := range img.planes {
		planes[i] = p.Clone()
	}
	return &Image{
		width:     img.width,
		height:    img.height,
		planes:    planes,
		Palette:   img.Palette,
		Metadata:  img.Metadata.Clone(),
		kindKnown: img.kindKnown,
		grayscale: img.grayscale,
	}
}

func (img *Image) Width() int         { return img.width }
func (img *Image) Height() int        { return img.height }
func (img *Image) NumPlanes() int     { return len(img.planes) }
func (img *Image) Plane(i int) *Plane { return img.planes[i] }

// IsGrayscale reports whether planes 0, 1 and 2 are pixel-wise identical,
// or whether there are fewer than three planes. The answer is computed on
// first use and cached for the life of the image.
func (img *Image) IsGrayscale() bool {
	if !img.kindKnown {
		img.grayscale = img.computeGrayscale()
		img.kindKnown = true
	}
	return img.grayscale
}

// IsRGB reports whether the image has at least three planes that differ.
func (img *Image) IsRGB() bool {
	return len(img.planes) >= 3 && !img.IsGrayscale()
}

func (img *Image) computeGrayscale() bool {
	if len(img.planes) < 3 {
		return true
	}
	r, g, b := img.planes[0].pix, img.planes[1].pix, img.planes[2].pix
	for i, v := range r {
		if g[i] != v || b[i] != v {
			return false
		}
	}
	return true
}

// HasColor reports whether the image has R, G and B planes.
func (img *Image) HasColor() bool { return len(img.planes) >= 3 }

// ColorAt composes planes 0..2 into an opaque RGBA color.
// It panics if the image has fewer than three planes.
func (img *Image) ColorAt(x, y int) color.RGBA {
	img.mustColor()
	i := y*img.width + x
	return color.RGBA{R: img.planes[0].pix[i], G: img.planes[1].pix[i], B: img.planes[2].pix[i], A: 0xff}
}

// SetColor decomposes c into planes 0..2. Alpha is ignored.
// It panics if the image has fewer than three planes.
func (img *Image) SetColor(x, y int, c color.RGBA) {
	img.mustColor()
	i := y*img.width + x
	img.planes[0].pix[i] = c.R
	img.planes[1].pix[i] = c.G
	img.planes[2].pix[i] = c.B
}

func (img *Image) mustColor() {
	if len(img.planes) < 3 {
		panic(fmt.Sprintf("raster: color access on a %d-plane image", len(img.planes)))
	}
}

// ApplyPlaneToColorPlanes copies plane index onto the other color planes
// (indices below 3). Alpha is left untouched.
func (img *Image) ApplyPlaneToColorPlanes(index int) error {
	if index < 0 || index >= len(img.planes) {
		return fmt.Errorf("%w: plane index %d of %d", ErrInvalidArgument, index, len(img.planes))
	}
	src := img.planes[index]
	for i := 0; i < min(len(img.planes), 3); i++ {
		if i == index {
			continue
		}
		copy(img.planes[i].pix, src.pix)
	}
	return nil
}

// SameSize reports whether both images have identical dimensions.
func (img *Image) SameSize(o *Image) bool {
	return img.width == o.width && img.height == o.height
}
