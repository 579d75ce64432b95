// Package colorspace wraps go-colorful for the conversions the
// algorithms need: RGB<->HSV for value-channel equalization and
// RGB<->CIELAB for superpixel distances.
package colorspace

import (
	"fmt"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/AnyUserName/imgcore-cli/internal/raster"
)

// Lab is a CIELAB color on the conventional scale: L in [0,100],
// a and b roughly in [-128,127].
type Lab struct {
	L, A, B float64
}

// go-colorful reports L in [0,1] and a/b divided by 100.
const labScale = 100

func rgb(r, g, b uint8) colorful.Color {
	return colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
}

// RGBToHSV returns hue in degrees [0,360), saturation and value in [0,1].
func RGBToHSV(r, g, b uint8) (h, s, v float64) {
	return rgb(r, g, b).Hsv()
}

// HSVToRGB is the inverse of RGBToHSV.
func HSVToRGB(h, s, v float64) (r, g, b uint8) {
	return colorful.Hsv(h, s, v).Clamped().RGB255()
}

// RGBToLab converts an sRGB color (D65) to CIELAB.
func RGBToLab(r, g, b uint8) Lab {
	l, a, bb := rgb(r, g, b).Lab()
	return Lab{L: l * labScale, A: a * labScale, B: bb * labScale}
}

// LabToRGB converts back to sRGB, clamping out-of-gamut colors.
func LabToRGB(c Lab) (r, g, b uint8) {
	return colorful.Lab(c.L/labScale, c.A/labScale, c.B/labScale).Clamped().RGB255()
}

// HSVPlanes holds an image's HSV decomposition, row-major.
type HSVPlanes struct {
	Width, Height int
	H, S, V       []float64
}

// ToHSV decomposes planes 0..2 of img.
func ToHSV(img *raster.Image) (*HSVPlanes, error) {
	if !img.HasColor() {
		return nil, fmt.Errorf("%w: HSV conversion needs 3 planes, got %d",
			raster.ErrInvalidArgument, img.NumPlanes())
	}
	n := img.Width() * img.Height()
	out := &HSVPlanes{
		Width: img.Width(), Height: img.Height(),
		H: make([]float64, n), S: make([]float64, n), V: make([]float64, n),
	}
	r, g, b := img.Plane(0).Pix(), img.Plane(1).Pix(), img.Plane(2).Pix()
	for i := 0; i < n; i++ {
		out.H[i], out.S[i], out.V[i] = RGBToHSV(r[i], g[i], b[i])
	}
	return out, nil
}

// ValuePlane returns V quantized to a byte plane.
func (p *HSVPlanes) ValuePlane() *raster.Plane {
	return raster.PlaneFromUnit(p.Width, p.Height, p.V)
}

// SetValuePlane replaces V with the samples of plane.
func (p *HSVPlanes) SetValuePlane(plane *raster.Plane) {
	copy(p.V, plane.ToUnit())
}

// Apply writes the HSV planes back into planes 0..2 of img.
func (p *HSVPlanes) Apply(img *raster.Image) error {
	if !img.HasColor() || img.Width() != p.Width || img.Height() != p.Height {
		return fmt.Errorf("%w: HSV planes do not fit the image", raster.ErrInvalidArgument)
	}
	r, g, b := img.Plane(0).Pix(), img.Plane(1).Pix(), img.Plane(2).Pix()
	for i := range p.V {
		r[i], g[i], b[i] = HSVToRGB(p.H[i], p.S[i], p.V[i])
	}
	return nil
}

// ToLab converts every pixel of img to CIELAB, row-major.
func ToLab(img *raster.Image) ([]Lab, error) {
	if !img.HasColor() {
		return nil, fmt.Errorf("%w: CIELAB conversion needs 3 planes, got %d",
			raster.ErrInvalidArgument, img.NumPlanes())
	}
	r, g, b := img.Plane(0).Pix(), img.Plane(1).Pix(), img.Plane(2).Pix()
	out := make([]Lab, len(r))
	for i := range out {
		out[i] = RGBToLab(r[i], g[i], b[i])
	}
	return out, nil
}
