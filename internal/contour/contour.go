// Package contour marks the boundaries between regions of a label grid.
//
// The result depends on scan order: a pixel only counts neighbors that
// have not already been marked in the same pass. Pixels are visited from
// the bottom row up and right to left, and neighbors in a fixed sequence,
// so output is reproducible.
package contour

import (
	"fmt"
	"image/color"

	"github.com/AnyUserName/imgcore-cli/internal/raster"
)

// MinDiffering is the number of differing, unmarked neighbors that make a
// pixel part of a contour.
const MinDiffering = 2

// Neighbor offsets, visited from the last entry to the first.
var (
	dx = [8]int{-1, -1, 0, 1, 1, 1, 0, -1}
	dy = [8]int{0, -1, -1, -1, 0, 1, 1, 1}
)

// Mask is a row-major width×height grid of contour flags.
type Mask struct {
	Width  int
	Height int
	bits   []bool
}

// At reports whether (x, y) lies on a contour.
func (m *Mask) At(x, y int) bool { return m.bits[y*m.Width+x] }

// Count returns the number of contour pixels.
func (m *Mask) Count() int {
	n := 0
	for _, b := range m.bits {
		if b {
			n++
		}
	}
	return n
}

// Trace computes the contour mask of labels. visit, when non-nil, is
// called for every pixel as soon as it is marked.
func Trace(labels *raster.Labels, visit func(x, y int)) *Mask {
	w, h := labels.Width, labels.Height
	m := &Mask{Width: w, Height: h, bits: make([]bool, w*h)}
	for y := h - 1; y >= 0; y-- {
		for x := w - 1; x >= 0; x-- {
			id := labels.At(x, y)
			differing := 0
			for i := len(dx) - 1; i >= 0; i-- {
				nx, ny := x+dx[i], y+dy[i]
				if nx < 0 || nx >= w || ny < 0 || ny >= h {
					continue
				}
				if m.bits[ny*w+nx] || labels.At(nx, ny) == id {
					continue
				}
				differing++
			}
			if differing >= MinDiffering {
				m.bits[y*w+x] = true
				if visit != nil {
					visit(x, y)
				}
			}
		}
	}
	return m
}

// Draw paints every contour pixel of labels onto img in c and returns the
// mask. img must have three color planes and the size of labels.
func Draw(img *raster.Image, labels *raster.Labels, c color.RGBA) (*Mask, error) {
	if img == nil || labels == nil {
		return nil, fmt.Errorf("%w: nil image or labels", raster.ErrInvalidArgument)
	}
	if !img.HasColor() {
		return nil, fmt.Errorf("%w: contours need 3 color planes, got %d", raster.ErrInvalidArgument, img.NumPlanes())
	}
	if labels.Width != img.Width() || labels.Height != img.Height() {
		return nil, fmt.Errorf("%w: labels %dx%d do not match image %dx%d",
			raster.ErrInvalidArgument, labels.Width, labels.Height, img.Width(), img.Height())
	}
	return Trace(labels, func(x, y int) { img.SetColor(x, y, c) }), nil
}
