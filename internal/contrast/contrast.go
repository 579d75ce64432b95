// Package contrast implements global and locally adaptive histogram
// equalization, optionally contrast limited.
//
// Both operations work on a single byte plane. Grayscale images are
// equalized on plane 0 and the result is copied onto the other color
// planes; color images are converted to HSV and only the value channel
// is equalized.
//
// Both mutate the image in place and poll ctx cooperatively. When ctx
// is cancelled they return done=false with a nil error and the image may
// be partially modified.
package contrast

import (
	"context"
	"fmt"
	"math"

	"github.com/AnyUserName/imgcore-cli/internal/colorspace"
	"github.com/AnyUserName/imgcore-cli/internal/raster"
)

// DefaultTileSize is the adaptive window side used when none is given.
const DefaultTileSize = 128

// planeFunc equalizes one plane in place and reports whether it finished.
type planeFunc func(ctx context.Context, p *raster.Plane) bool

// apply routes img through fn according to its kind.
func apply(ctx context.Context, img *raster.Image, fn planeFunc) (bool, error) {
	if img == nil {
		return false, fmt.Errorf("%w: nil image", raster.ErrInvalidArgument)
	}

	if img.IsGrayscale() {
		if !fn(ctx, img.Plane(0)) {
			return false, nil
		}
		return true, img.ApplyPlaneToColorPlanes(0)
	}

	hsv, err := colorspace.ToHSV(img)
	if err != nil {
		return false, err
	}
	value := hsv.ValuePlane()
	if !fn(ctx, value) {
		return false, nil
	}
	hsv.SetValuePlane(value)
	return true, hsv.Apply(img)
}

// level maps a cumulative count to an output level. cdfMin is the count
// of the lowest occupied bin, so that bin always maps to 0 and the full
// count n maps to 255. The denominator is n - cdfMin rather than the
// classic M*N - 1 on purpose: a two-level image stretches to 0 and 255.
func level(cdf, cdfMin, n int) uint8 {
	den := n - cdfMin
	if den <= 0 {
		return 0
	}
	v := math.Round(float64(cdf-cdfMin) / float64(den) * 255)
	if v > 255 {
		return 255
	}
	if v < 0 {
		return 0
	}
	return uint8(v)
}

// cancelled polls ctx without blocking.
func cancelled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}
