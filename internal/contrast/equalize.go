package contrast

import (
	"context"

	"github.com/AnyUserName/imgcore-cli/internal/histogram"
	"github.com/AnyUserName/imgcore-cli/internal/raster"
)

// Equalize applies global histogram equalization to img. A positive
// clipLimit (typically 3 to 4) limits amplification by clipping the
// histogram first; zero or less disables clipping.
func Equalize(ctx context.Context, img *raster.Image, clipLimit float64) (done bool, err error) {
	return apply(ctx, img, func(ctx context.Context, p *raster.Plane) bool {
		return EqualizePlane(ctx, p, clipLimit)
	})
}

// EqualizePlane equalizes a single plane in place.
func EqualizePlane(ctx context.Context, p *raster.Plane, clipLimit float64) bool {
	n := p.Width() * p.Height()
	hist := histogram.Full(p)
	histogram.Clip(&hist, clipLimit, n)

	if cancelled(ctx) {
		return false
	}
	lut := Mapping(&hist, n)

	w := p.Width()
	pix := p.Pix()
	for y := 0; y < p.Height(); y++ {
		if cancelled(ctx) {
			return false
		}
		row := pix[y*w : (y+1)*w]
		for x, v := range row {
			row[x] = lut[v]
		}
	}
	return true
}

// Mapping builds the equalization table for hist over n pixels. Empty
// bins are skipped; the lowest occupied value maps to 0.
func Mapping(hist *histogram.Histogram, n int) [histogram.Bins]uint8 {
	var lut [histogram.Bins]uint8
	cdf, cdfMin := 0, -1
	for v, c := range hist {
		if c == 0 {
			continue
		}
		if cdfMin < 0 {
			cdfMin = c
		}
		cdf += c
		lut[v] = level(cdf, cdfMin, n)
	}
	return lut
}
