// Package slic implements Simple Linear Iterative Clustering superpixel
// segmentation: a k-means variant over CIELAB color and pixel position
// whose assignment step only searches a 2S×2S window around each center.
package slic

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/AnyUserName/imgcore-cli/internal/colorspace"
	"github.com/AnyUserName/imgcore-cli/internal/raster"
)

// Iterations is the fixed number of assign/update rounds.
const Iterations = 10

// Result is the output of a segmentation.
type Result struct {
	// Labels holds the cluster index of every pixel, in [0, K). A pixel no
	// search window reached in the final round stays raster.Unassigned;
	// ApplySegments paints those black.
	Labels *raster.Labels
	// Colors is the mean color of each cluster converted back to RGB.
	Colors []color.RGBA
	// Centers is the mean position of each cluster.
	Centers []image.Point
	// Interval is the grid spacing S the seeds were placed on.
	Interval int
}

type cluster struct {
	lab colorspace.Lab
	x   int
	y   int
}

// Segment partitions img into k superpixels. Compactness m trades color
// similarity against spatial proximity; useful values lie in [1, 40],
// larger meaning more regular superpixels.
//
// On cancellation Segment returns a nil Result and a nil error.
func Segment(ctx context.Context, img *raster.Image, k int, m float64) (*Result, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", raster.ErrInvalidArgument)
	}
	if k <= 0 {
		return nil, fmt.Errorf("%w: superpixel count %d", raster.ErrInvalidArgument, k)
	}
	if m <= 0 {
		return nil, fmt.Errorf("%w: compactness %v", raster.ErrInvalidArgument, m)
	}
	lab, err := colorspace.ToLab(img)
	if err != nil {
		return nil, err
	}

	s := &segmenter{
		width:  img.Width(),
		height: img.Height(),
		lab:    lab,
		k:      k,
		m:      m,
	}
	if err := s.seed(); err != nil {
		return nil, err
	}

	labels := raster.NewLabels(s.width, s.height)
	dist := make([]float64, s.width*s.height)
	for it := 0; it < Iterations; it++ {
		if cancelled(ctx) {
			return nil, nil
		}
		s.assign(labels, dist)
		if cancelled(ctx) {
			return nil, nil
		}
		s.update(labels)
	}

	res := &Result{
		Labels:   labels,
		Colors:   make([]color.RGBA, k),
		Centers:  make([]image.Point, k),
		Interval: s.interval,
	}
	for i, c := range s.clusters {
		r, g, b := colorspace.LabToRGB(c.lab)
		res.Colors[i] = color.RGBA{R: r, G: g, B: b, A: 0xff}
		res.Centers[i] = image.Point{X: c.x, Y: c.y}
	}
	return res, nil
}

type segmenter struct {
	width, height int
	lab           []colorspace.Lab
	k             int
	m             float64
	interval      int
	clusters      []cluster
}

func (s *segmenter) at(x, y int) colorspace.Lab { return s.lab[y*s.width+x] }

// seed places k centers on a regular grid S pixels apart, shrinking the
// margins when the default half-interval margins leave room for fewer
// than k cells, then nudges each to the lowest gradient in its 3×3
// neighborhood.
func (s *segmenter) seed() error {
	w, h := s.width, s.height
	interval := int(math.Round(math.Sqrt(float64(w*h) / float64(s.k))))
	if interval < 1 {
		return fmt.Errorf("%w: %d superpixels do not fit a %dx%d image",
			raster.ErrInvalidArgument, s.k, w, h)
	}
	s.interval = interval

	rows, cols := h/interval, w/interval
	vMargin, hMargin := interval/2, interval/2
	if rows*cols < s.k {
		afterH := rows * (cols + 1)
		afterV := (rows + 1) * cols
		afterBoth := (rows + 1) * (cols + 1)
		newH := (w % interval) / 2
		newV := (h % interval) / 2

		switch {
		case afterH >= s.k && (afterV < s.k || newH > newV):
			hMargin = newH
		case afterV >= s.k:
			vMargin = newV
		case afterBoth >= s.k:
			hMargin, vMargin = newH, newV
		default:
			return fmt.Errorf("%w: %d superpixels do not fit a %dx%d image with interval %d",
				raster.ErrInvalidArgument, s.k, w, h, interval)
		}
	}

	xStart, yStart := hMargin, vMargin
	if hMargin == 0 {
		xStart = -1
	}
	if vMargin == 0 {
		yStart = -1
	}
	xEnd := w - max(hMargin, 1)
	yEnd := h - max(vMargin, 1)

	s.clusters = make([]cluster, 0, s.k)
	for y := yEnd; y >= yStart && len(s.clusters) < s.k; y -= interval {
		for x := xEnd; x >= xStart && len(s.clusters) < s.k; x -= interval {
			cx, cy := s.lowestGradient(max(x, 0), max(y, 0))
			s.clusters = append(s.clusters, cluster{lab: s.at(cx, cy), x: cx, y: cy})
		}
	}
	if len(s.clusters) != s.k {
		return fmt.Errorf("%w: placed %d of %d superpixel seeds",
			raster.ErrInvalidArgument, len(s.clusters), s.k)
	}
	return nil
}

// intensity collapses a Lab color to the scalar used for seed gradients.
func intensity(c colorspace.Lab) float64 {
	return c.L*0.11 + c.A*0.59 + c.B*0.3
}

// lowestGradient returns the position in the 3×3 neighborhood of (x, y)
// with the smallest sum of vertical and horizontal intensity differences.
// Neighbors are clamped to the image.
func (s *segmenter) lowestGradient(x, y int) (int, int) {
	best := math.MaxFloat64
	bx, by := x, y
	for ny := y + 1; ny >= y-1; ny-- {
		for nx := x + 1; nx >= x-1; nx-- {
			cx, cy := clamp(nx, s.width), clamp(ny, s.height)
			i := intensity(s.at(cx, cy))
			below := intensity(s.at(cx, clamp(ny+1, s.height)))
			right := intensity(s.at(clamp(nx+1, s.width), cy))
			g := math.Abs(below-i) + math.Abs(right-i)
			if g < best {
				best, bx, by = g, cx, cy
			}
		}
	}
	return bx, by
}

// assign labels every pixel with the nearest center whose 2S×2S search
// window covers it, using D = sqrt(dc² + (ds/S)²·m²).
func (s *segmenter) assign(labels *raster.Labels, dist []float64) {
	labels.Reset()
	for i := range dist {
		dist[i] = math.Inf(1)
	}

	sInv2m2 := s.m * s.m / float64(s.interval*s.interval)
	for j := len(s.clusters) - 1; j >= 0; j-- {
		c := s.clusters[j]
		y0, y1 := max(c.y-s.interval, 0), min(c.y+s.interval-1, s.height-1)
		x0, x1 := max(c.x-s.interval, 0), min(c.x+s.interval-1, s.width-1)
		for y := y1; y >= y0; y-- {
			dy := float64(c.y - y)
			row := y * s.width
			for x := x1; x >= x0; x-- {
				p := s.lab[row+x]
				dL, da, db := c.lab.L-p.L, c.lab.A-p.A, c.lab.B-p.B
				dx := float64(c.x - x)
				dc2 := dL*dL + da*da + db*db
				ds2 := dx*dx + dy*dy
				d := math.Sqrt(dc2 + ds2*sInv2m2)
				if d < dist[row+x] {
					dist[row+x] = d
					labels.IDs[row+x] = j
				}
			}
		}
	}
}

// update moves every center to the mean color and position of its
// pixels. A cluster that attracted no pixels keeps its previous center.
func (s *segmenter) update(labels *raster.Labels) {
	type acc struct {
		l, a, b float64
		x, y    int
		n       int
	}
	sums := make([]acc, len(s.clusters))
	for y := 0; y < s.height; y++ {
		row := y * s.width
		for x := 0; x < s.width; x++ {
			id := labels.IDs[row+x]
			if id == raster.Unassigned {
				continue
			}
			p := s.lab[row+x]
			a := &sums[id]
			a.l += p.L
			a.a += p.A
			a.b += p.B
			a.x += x
			a.y += y
			a.n++
		}
	}
	for i, a := range sums {
		if a.n == 0 {
			continue
		}
		n := float64(a.n)
		s.clusters[i] = cluster{
			lab: colorspace.Lab{L: a.l / n, A: a.a / n, B: a.b / n},
			x:   a.x / a.n,
			y:   a.y / a.n,
		}
	}
}

func clamp(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func cancelled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}
