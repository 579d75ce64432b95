// Package histogram extracts 256-bin sample histograms from plane
// windows and applies the contrast-limiting clip.
package histogram

import (
	"math"

	"github.com/AnyUserName/imgcore-cli/internal/raster"
)

// Bins is the number of levels in an 8-bit histogram.
const Bins = 256

// Histogram counts occurrences of each sample value. It is a value type;
// assignment copies it.
type Histogram [Bins]int

// Compute counts samples over the w×h window whose top-left corner is
// (x, y). Positions outside the plane are read mirrored, so the result
// always sums to w*h.
func Compute(p *raster.Plane, x, y, w, h int) Histogram {
	var hist Histogram
	if x >= 0 && y >= 0 && x+w <= p.Width() && y+h <= p.Height() {
		pix := p.Pix()
		stride := p.Width()
		for yy := y; yy < y+h; yy++ {
			for _, v := range pix[yy*stride+x : yy*stride+x+w] {
				hist[v]++
			}
		}
		return hist
	}
	for yy := y; yy < y+h; yy++ {
		for xx := x; xx < x+w; xx++ {
			hist[p.AtMirrored(xx, yy)]++
		}
	}
	return hist
}

// Full is the histogram of the whole plane.
func Full(p *raster.Plane) Histogram {
	return Compute(p, 0, 0, p.Width(), p.Height())
}

// FromCenter computes the histogram of the w×h window centered on (cx, cy).
// For even sizes the center sits right of (below) the middle.
func FromCenter(p *raster.Plane, cx, cy, w, h int) Histogram {
	return Compute(p, cx-w/2, cy-h/2, w, h)
}

// Sum returns the total count.
func (h *Histogram) Sum() int {
	n := 0
	for _, c := range h {
		n += c
	}
	return n
}

// Clip caps every bin at round(clipLimit*pixelCount/256) and spreads the
// removed excess evenly over all bins, round(excess/256) each. The
// redistribution runs once, so bins may end up above the cap again.
// A clipLimit <= 0 leaves h unchanged.
func Clip(h *Histogram, clipLimit float64, pixelCount int) {
	if clipLimit <= 0 {
		return
	}
	level := int(math.Round(clipLimit * float64(pixelCount) / Bins))

	excess := 0
	for v, c := range h {
		if c > level {
			h[v] = level
			excess += c - level
		}
	}

	add := int(math.Round(float64(excess) / Bins))
	if add == 0 {
		return
	}
	for v := range h {
		h[v] += add
	}
}
