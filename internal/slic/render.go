package slic

import (
	"fmt"
	"image"
	"image/color"

	"github.com/AnyUserName/imgcore-cli/internal/raster"
)

var black = color.RGBA{A: 0xff}

// ApplySegments paints every pixel with the color of its cluster.
// Unassigned pixels are painted black.
func ApplySegments(img *raster.Image, labels *raster.Labels, colors []color.RGBA) error {
	if err := checkCanvas(img, labels); err != nil {
		return err
	}
	for y := 0; y < img.Height(); y++ {
		for x := 0; x < img.Width(); x++ {
			id := labels.At(x, y)
			switch {
			case id == raster.Unassigned:
				img.SetColor(x, y, black)
			case id < 0 || id >= len(colors):
				return fmt.Errorf("%w: label %d at (%d,%d) has no color", raster.ErrInvalidArgument, id, x, y)
			default:
				img.SetColor(x, y, colors[id])
			}
		}
	}
	return nil
}

// DrawSquares marks each location with a side×side square clamped to the
// image: a one pixel border in border and the interior in fill.
func DrawSquares(img *raster.Image, locations []image.Point, side int, fill, border color.RGBA) error {
	if img == nil || !img.HasColor() {
		return fmt.Errorf("%w: squares need an image with 3 color planes", raster.ErrInvalidArgument)
	}
	if side <= 0 {
		return fmt.Errorf("%w: square side %d", raster.ErrInvalidArgument, side)
	}
	before := side / 2
	after := before
	if side%2 == 0 {
		after--
	}
	w, h := img.Width(), img.Height()
	for _, p := range locations {
		x0, x1 := clamp(p.X-before, w), clamp(p.X+after, w)
		y0, y1 := clamp(p.Y-before, h), clamp(p.Y+after, h)
		for y := y0; y <= y1; y++ {
			for x := x0; x <= x1; x++ {
				if x == x0 || x == x1 || y == y0 || y == y1 {
					img.SetColor(x, y, border)
				} else {
					img.SetColor(x, y, fill)
				}
			}
		}
	}
	return nil
}

func checkCanvas(img *raster.Image, labels *raster.Labels) error {
	if img == nil || labels == nil {
		return fmt.Errorf("%w: nil image or labels", raster.ErrInvalidArgument)
	}
	if !img.HasColor() {
		return fmt.Errorf("%w: painting needs 3 color planes, got %d", raster.ErrInvalidArgument, img.NumPlanes())
	}
	if labels.Width != img.Width() || labels.Height != img.Height() {
		return fmt.Errorf("%w: labels %dx%d do not match image %dx%d",
			raster.ErrInvalidArgument, labels.Width, labels.Height, img.Width(), img.Height())
	}
	return nil
}
