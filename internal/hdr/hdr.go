// Package hdr fuses a bracketed exposure stack into one image by
// recovering the camera response curve of each color plane (Debevec and
// Malik) and averaging the per-exposure radiance estimates.
package hdr

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/AnyUserName/imgcore-cli/internal/raster"
)

const (
	zMin   = 0
	zMax   = 255
	zMid   = 127
	levels = zMax - zMin + 1

	// DefaultSamples is the number of pixel locations fed to the solver.
	DefaultSamples = 256
	// DefaultSmoothness weights the second-derivative penalty on g.
	DefaultSmoothness = 10.0

	// Progress checkpoints.
	ProgressBuilt  = 0.1
	ProgressSolved = 0.8

	planes = 3
	rcond  = 1e-12
)

// Options tunes Reconstruct. Zero values select defaults.
type Options struct {
	// Samples is the number of pixel locations fed to the solver;
	// 0 selects DefaultSamples.
	Samples int
	// Smoothness weights the curvature penalty on the response curve.
	// 0 selects DefaultSmoothness, so an unsmoothed fit cannot be asked
	// for; without the penalty unsampled levels are left unconstrained.
	Smoothness float64
	// Rand picks the sample locations. A time-seeded source is used when nil.
	Rand *rand.Rand
	// Progress, when set, receives ProgressBuilt and ProgressSolved.
	Progress func(float64)
}

func (o Options) withDefaults() Options {
	if o.Samples == 0 {
		o.Samples = DefaultSamples
	}
	if o.Smoothness == 0 {
		o.Smoothness = DefaultSmoothness
	}
	if o.Rand == nil {
		o.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return o
}

// Weight is the triangular confidence assigned to pixel value z: zero at
// both ends of the range and highest around the middle.
func Weight(z uint8) float64 {
	if z <= zMid {
		return float64(z - zMin)
	}
	return float64(zMax - int(z))
}

// Reconstruct fuses images into a single 3-plane image. Every image needs
// an exposure time in its metadata and the same size as the others.
//
// When ctx is cancelled at one of the progress checkpoints Reconstruct
// returns a nil image and a nil error.
func Reconstruct(ctx context.Context, images []*raster.Image, opts Options) (*raster.Image, error) {
	opts = opts.withDefaults()
	logT, err := validate(images, opts)
	if err != nil {
		return nil, err
	}

	w, h := images[0].Width(), images[0].Height()
	xs := make([]int, opts.Samples)
	ys := make([]int, opts.Samples)
	for i := range xs {
		ys[i] = opts.Rand.Intn(h)
		xs[i] = opts.Rand.Intn(w)
	}

	var systems [planes]*system
	for c := range systems {
		systems[c] = buildSystem(images, c, xs, ys, logT, opts.Smoothness)
	}
	if !checkpoint(ctx, opts.Progress, ProgressBuilt) {
		return nil, nil
	}

	var curves [planes][]float64
	var g errgroup.Group
	for c := range systems {
		c := c // per-iteration copy for go < 1.22 loop semantics
		g.Go(func() error {
			curve, err := systems[c].solve()
			if err != nil {
				return fmt.Errorf("hdr: plane %d: %w", c, err)
			}
			curves[c] = curve
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if !checkpoint(ctx, opts.Progress, ProgressSolved) {
		return nil, nil
	}

	return fuse(images, curves, logT), nil
}

func validate(images []*raster.Image, opts Options) ([]float64, error) {
	if len(images) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 exposures, got %d", raster.ErrInvalidArgument, len(images))
	}
	if opts.Samples < 1 {
		return nil, fmt.Errorf("%w: sample count %d", raster.ErrInvalidArgument, opts.Samples)
	}
	if opts.Smoothness < 0 {
		return nil, fmt.Errorf("%w: smoothness %v", raster.ErrInvalidArgument, opts.Smoothness)
	}
	logT := make([]float64, len(images))
	for j, img := range images {
		if img == nil {
			return nil, fmt.Errorf("%w: image %d is nil", raster.ErrInvalidArgument, j)
		}
		if !img.HasColor() {
			return nil, fmt.Errorf("%w: image %d has %d planes, need 3", raster.ErrInvalidArgument, j, img.NumPlanes())
		}
		if !img.SameSize(images[0]) {
			return nil, fmt.Errorf("%w: image %d is %dx%d, image 0 is %dx%d", raster.ErrInvalidArgument,
				j, img.Width(), img.Height(), images[0].Width(), images[0].Height())
		}
		t, ok := img.Metadata.ExposureTime()
		if !ok {
			return nil, fmt.Errorf("%w: image %d has no exposure time", raster.ErrMissingMetadata, j)
		}
		if t <= 0 {
			return nil, fmt.Errorf("%w: image %d exposure time %v", raster.ErrInvalidArgument, j, t)
		}
		logT[j] = math.Log(t)
	}
	return logT, nil
}

// system is the weighted least-squares problem A·x = b for one plane.
// x holds g(0..255) followed by the log irradiance of every sample.
type system struct {
	a *mat.Dense
	b *mat.VecDense
}

func buildSystem(images []*raster.Image, c int, xs, ys []int, logT []float64, lambda float64) *system {
	n := len(xs)
	rows := n*len(images) + 1 + (zMax - zMin - 1)
	a := mat.NewDense(rows, levels+n, nil)
	b := mat.NewVecDense(rows, nil)

	k := 0
	for i := range xs {
		for j, img := range images {
			z := img.Plane(c).At(xs[i], ys[i])
			wz := Weight(z)
			a.Set(k, int(z), wz)
			a.Set(k, levels+i, -wz)
			b.SetVec(k, wz*logT[j])
			k++
		}
	}

	// g(zMid) = 0 fixes the scale.
	a.Set(k, zMid, 1)
	k++

	for z := zMin + 1; z < zMax; z++ {
		wz := lambda * Weight(uint8(z))
		a.Set(k, z-1, wz)
		a.Set(k, z, -2*wz)
		a.Set(k, z+1, wz)
		k++
	}
	return &system{a: a, b: b}
}

// solve returns the response curve g in log exposure units.
func (s *system) solve() ([]float64, error) {
	var svd mat.SVD
	if !svd.Factorize(s.a, mat.SVDThin) {
		return nil, fmt.Errorf("singular value decomposition did not converge")
	}
	var x mat.VecDense
	svd.SolveVecTo(&x, s.b, svd.Rank(rcond))
	g := make([]float64, levels)
	for z := range g {
		g[z] = x.AtVec(z)
	}
	return g, nil
}

// fuse maps every pixel to its weighted mean log radiance and rescales
// the result to 8 bits using the range shared by all planes.
func fuse(images []*raster.Image, curves [planes][]float64, logT []float64) *raster.Image {
	w, h := images[0].Width(), images[0].Height()
	mid := len(images) / 2
	radiance := make([][]float64, planes)
	lo, hi := math.Inf(1), math.Inf(-1)
	for c := range radiance {
		g := curves[c]
		r := make([]float64, w*h)
		for i := range r {
			var num, den float64
			for j, img := range images {
				z := img.Plane(c).Pix()[i]
				wz := Weight(z)
				num += wz * (g[z] - logT[j])
				den += wz
			}
			if den > 0 {
				r[i] = num / den
			} else {
				r[i] = g[images[mid].Plane(c).Pix()[i]] - logT[mid]
			}
			lo = math.Min(lo, r[i])
			hi = math.Max(hi, r[i])
		}
		radiance[c] = r
	}

	out := raster.NewBlank(w, h, planes)
	span := hi - lo
	if span <= 0 {
		return out
	}
	for c, r := range radiance {
		pix := out.Plane(c).Pix()
		for i, v := range r {
			pix[i] = uint8((v - lo) / span * 255)
		}
	}
	return out
}

func checkpoint(ctx context.Context, progress func(float64), v float64) bool {
	if progress != nil {
		progress(v)
	}
	select {
	case <-ctx.Done():
		return false
	default:
		return true
	}
}
