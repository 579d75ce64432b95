package pipeline

import (
	"context"
	"fmt"
	"image/color"
	"sort"

	"github.com/AnyUserName/imgcore-cli/internal/codec"
	"github.com/AnyUserName/imgcore-cli/internal/contour"
	"github.com/AnyUserName/imgcore-cli/internal/contrast"
	"github.com/AnyUserName/imgcore-cli/internal/raster"
	"github.com/AnyUserName/imgcore-cli/internal/slic"
)

// Params are the resolved parameters of a single-image operation.
type Params struct {
	ClipLimit    float64
	TileSize     int
	Superpixels  int
	Compactness  float64
	Contours     bool
	ContourColor color.RGBA
	Centers      bool
	SquareSide   int
}

// Operation transforms one image. It returns the result image, which may
// be img itself, and done=false when ctx was cancelled before it finished.
type Operation func(ctx context.Context, img *raster.Image, p Params) (out *raster.Image, done bool, err error)

var operations = map[string]Operation{
	"equalize": Equalize,
	"clahe":    AdaptiveEqualize,
	"slic":     Superpixels,
}

// Lookup returns the operation registered under name.
func Lookup(name string) (Operation, error) {
	op, ok := operations[name]
	if !ok {
		return nil, fmt.Errorf("unknown operation %q (available: %v)", name, OperationNames())
	}
	return op, nil
}

// OperationNames lists the registered operations in sorted order.
func OperationNames() []string {
	names := make([]string, 0, len(operations))
	for k := range operations {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Equalize runs global histogram equalization in place.
func Equalize(ctx context.Context, img *raster.Image, p Params) (*raster.Image, bool, error) {
	img = expandPalette(img)
	done, err := contrast.Equalize(ctx, img, p.ClipLimit)
	return img, done, err
}

// AdaptiveEqualize runs windowed (CLAHE when clipped) equalization in place.
func AdaptiveEqualize(ctx context.Context, img *raster.Image, p Params) (*raster.Image, bool, error) {
	img = expandPalette(img)
	done, err := contrast.AdaptiveEqualize(ctx, img, p.TileSize, p.ClipLimit)
	return img, done, err
}

// expandPalette expands indexed images with a color palette, so contrast
// operations see colors rather than palette indices. Gray palettes stay
// on one plane.
func expandPalette(img *raster.Image) *raster.Image {
	if img == nil || img.HasColor() || codec.IsGrayPalette(img.Palette) {
		return img
	}
	return codec.ExpandRGB(img)
}

// Superpixels segments img and renders every superpixel in its mean
// color, optionally with contours and center markers. One-plane images
// are expanded to RGB first.
func Superpixels(ctx context.Context, img *raster.Image, p Params) (*raster.Image, bool, error) {
	rgb := codec.ExpandRGB(img)
	res, err := slic.Segment(ctx, rgb, p.Superpixels, p.Compactness)
	if err != nil {
		return nil, false, err
	}
	if res == nil {
		return nil, false, nil
	}

	out, err := raster.New(colorPlanes(rgb), nil)
	if err != nil {
		return nil, false, err
	}
	out.Metadata = rgb.Metadata.Clone()
	if err := slic.ApplySegments(out, res.Labels, res.Colors); err != nil {
		return nil, false, err
	}
	if p.Contours {
		if _, err := contour.Draw(out, res.Labels, p.ContourColor); err != nil {
			return nil, false, err
		}
	}
	if p.Centers {
		side := p.SquareSide
		if side <= 0 {
			side = 3
		}
		fill := color.RGBA{R: 255, G: 255, B: 255, A: 0xff}
		if err := slic.DrawSquares(out, res.Centers, side, fill, p.ContourColor); err != nil {
			return nil, false, err
		}
	}
	return out, true, nil
}

// colorPlanes clones the first three planes, dropping alpha.
func colorPlanes(img *raster.Image) []*raster.Plane {
	planes := make([]*raster.Plane, 3)
	for i := range planes {
		planes[i] = img.Plane(i).Clone()
	}
	return planes
}
