package raster

import "fmt"

// Plane is a single 8-bit channel of an image stored row-major.
// A Plane exclusively owns its pixel buffer; Clone is the only way
// two planes end up with the same contents.
type Plane struct {
	width  int
	height int
	pix    []uint8
}

// NewPlane allocates a zeroed width×height plane.
func NewPlane(width, height int) *Plane {
	if width < 0 || height < 0 {
		panic(fmt.Sprintf("raster: negative plane size %dx%d", width, height))
	}
	return &Plane{
		width:  width,
		height: height,
		pix:    make([]uint8, width*height),
	}
}

// PlaneFromPix builds a plane from row-major samples. The samples are copied.
func PlaneFromPix(width, height int, pix []uint8) (*Plane, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: plane size %dx%d", ErrInvalidArgument, width, height)
	}
	if len(pix) != width*height {
		return nil, fmt.Errorf("%w: %d samples for a %dx%d plane", ErrInvalidArgument, len(pix), width, height)
	}
	p := NewPlane(width, height)
	copy(p.pix, pix)
	return p, nil
}

// PlaneFromUnit converts row-major values in [0,1] to a plane by
// truncating v*255. Out of range values are clamped.
func PlaneFromUnit(width, height int, vals []float64) *Plane {
	p := NewPlane(width, height)
	for i, v := range vals[:width*height] {
		s := v * 255
		switch {
		case s <= 0:
			p.pix[i] = 0
		case s >= 255:
			p.pix[i] = 255
		default:
			// v came from a byte divided by 255; nudge before truncating so
			// 254.99999 does not lose a level.
			p.pix[i] = uint8(s + 1e-9)
		}
	}
	return p
}

func (p *Plane) Width() int  { return p.width }
func (p *Plane) Height() int { return p.height }

// Pix exposes the row-major backing slice.
func (p *Plane) Pix() []uint8 { return p.pix }

// At returns the sample at (x, y). Coordinates must be in bounds.
func (p *Plane) At(x, y int) uint8 {
	return p.pix[y*p.width+x]
}

// Set writes the sample at (x, y). Coordinates must be in bounds.
func (p *Plane) Set(x, y int, v uint8) {
	p.pix[y*p.width+x] = v
}

// AtMirrored reads (x, y) reflecting out-of-bounds coordinates about the
// plane edges: i<0 reads -1-i, i>=n reads 2n-i-1. The edge pixel itself
// is repeated once, so windows straddling a border see a mirror image
// rather than a smeared edge. Coordinates further than one plane
// dimension outside are clamped after reflection.
func (p *Plane) AtMirrored(x, y int) uint8 {
	return p.pix[mirror(y, p.height)*p.width+mirror(x, p.width)]
}

func mirror(i, n int) int {
	if i < 0 {
		i = -1 - i
	} else if i >= n {
		i = 2*n - i - 1
	}
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// Clone returns a deep copy.
func (p *Plane) Clone() *Plane {
	c := NewPlane(p.width, p.height)
	copy(c.pix, p.pix)
	return c
}

// ToUnit returns the samples scaled to [0,1], row-major.
func (p *Plane) ToUnit() []float64 {
	out := make([]float64, len(p.pix))
	for i, v := range p.pix {
		out[i] = float64(v) / 255
	}
	return out
}

// Equal reports whether both planes have the same size and samples.
func (p *Plane) Equal(o *Plane) bool {
	if p.width != o.width || p.height != o.height {
		return false
	}
	for i := range p.pix {
		if p.pix[i] != o.pix[i] {
			return false
		}
	}
	return true
}
