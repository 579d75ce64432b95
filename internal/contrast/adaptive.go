package contrast

import (
	"context"
	"fmt"

	"github.com/AnyUserName/imgcore-cli/internal/histogram"
	"github.com/AnyUserName/imgcore-cli/internal/raster"
)

// AdaptiveEqualize applies adaptive histogram equalization: every pixel
// is equalized against the histogram of the tileSize×tileSize window
// centered on it, with mirrored borders. A positive clipLimit turns this
// into CLAHE.
func AdaptiveEqualize(ctx context.Context, img *raster.Image, tileSize int, clipLimit float64) (done bool, err error) {
	if tileSize <= 0 {
		return false, fmt.Errorf("%w: tile size %d", raster.ErrInvalidArgument, tileSize)
	}
	return apply(ctx, img, func(ctx context.Context, p *raster.Plane) bool {
		return AdaptivePlane(ctx, p, tileSize, clipLimit)
	})
}

// window tracks the running histogram of a tile together with its
// inclusive edges in plane coordinates (which may lie outside the plane).
type window struct {
	src                      *raster.Plane
	hist                     histogram.Histogram
	left, right, top, bottom int
}

func newWindow(src *raster.Plane, cx, cy, size int) *window {
	left, top := cx-size/2, cy-size/2
	return &window{
		src:    src,
		hist:   histogram.Compute(src, left, top, size, size),
		left:   left,
		right:  left + size - 1,
		top:    top,
		bottom: top + size - 1,
	}
}

// swapColumn replaces column out with column in over the window's rows.
func (w *window) swapColumn(out, in int) {
	for y := w.top; y <= w.bottom; y++ {
		o, n := w.src.AtMirrored(out, y), w.src.AtMirrored(in, y)
		if o != n {
			w.hist[o]--
			w.hist[n]++
		}
	}
}

// swapRow replaces row out with row in over the window's columns.
func (w *window) swapRow(out, in int) {
	for x := w.left; x <= w.right; x++ {
		o, n := w.src.AtMirrored(x, out), w.src.AtMirrored(x, in)
		if o != n {
			w.hist[o]--
			w.hist[n]++
		}
	}
}

func (w *window) right1() { w.swapColumn(w.left, w.right+1); w.left++; w.right++ }
func (w *window) left1()  { w.swapColumn(w.right, w.left-1); w.left--; w.right-- }
func (w *window) down1()  { w.swapRow(w.top, w.bottom+1); w.top++; w.bottom++ }

// AdaptivePlane equalizes p in place. The window is slid in serpentine
// order, left to right on even rows and right to left on odd rows, and
// its histogram is updated one column or row at a time. Reads come from
// a snapshot of p so already written pixels do not leak into later
// windows; on cancellation p holds the rows finished so far.
func AdaptivePlane(ctx context.Context, p *raster.Plane, tileSize int, clipLimit float64) bool {
	src := p.Clone()
	width, height := p.Width(), p.Height()
	area := tileSize * tileSize

	win := newWindow(src, 0, 0, tileSize)
	var clipped histogram.Histogram

	x, y, step := 0, 0, 1
	for {
		if cancelled(ctx) {
			return false
		}

		hist := &win.hist
		if clipLimit > 0 {
			clipped = win.hist
			histogram.Clip(&clipped, clipLimit, area)
			hist = &clipped
		}
		p.Set(x, y, localLevel(hist, src.At(x, y), area))

		if nx := x + step; nx >= 0 && nx < width {
			if step > 0 {
				win.right1()
			} else {
				win.left1()
			}
			x = nx
			continue
		}
		if y == height-1 {
			return true
		}
		win.down1()
		y++
		step = -step
	}
}

// localLevel accumulates the CDF up to and including v. If clipping
// emptied v's own bin the sample is returned unchanged.
func localLevel(hist *histogram.Histogram, v uint8, n int) uint8 {
	cdf, cdfMin := 0, -1
	for i := 0; i <= int(v); i++ {
		c := hist[i]
		if c == 0 {
			continue
		}
		if cdfMin < 0 {
			cdfMin = c
		}
		cdf += c
	}
	if hist[v] == 0 {
		return v
	}
	return level(cdf, cdfMin, n)
}
