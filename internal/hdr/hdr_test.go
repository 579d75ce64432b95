package hdr

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/AnyUserName/imgcore-cli/internal/raster"
)

const bandWidth = 4

var exposures = []float64{1.0 / 100, 1.0 / 50, 1.0 / 25}

// bracket renders four vertical bands whose radiance doubles from one to
// the next, under a response that is linear in log exposure.
func bracket(t *testing.T) []*raster.Image {
	t.Helper()
	const size = 16
	images := make([]*raster.Image, len(exposures))
	for j, exp := range exposures {
		img := raster.NewBlank(size, size, 3)
		for c := 0; c < 3; c++ {
			p := img.Plane(c)
			for y := 0; y < size; y++ {
				for x := 0; x < size; x++ {
					band := x / bandWidth
					p.Set(x, y, uint8(40+35*(band+j)))
				}
			}
		}
		img.Metadata.SetExposureTime(exp)
		images[j] = img
	}
	return images
}

func TestWeight(t *testing.T) {
	for _, tc := range []struct {
		z    uint8
		want float64
	}{
		{0, 0}, {1, 1}, {127, 127}, {128, 127}, {200, 55}, {255, 0},
	} {
		if got := Weight(tc.z); got != tc.want {
			t.Errorf("Weight(%d) = %v, want %v", tc.z, got, tc.want)
		}
	}
}

func TestReconstructOrdersBands(t *testing.T) {
	var progress []float64
	out, err := Reconstruct(context.Background(), bracket(t), Options{
		Samples:  64,
		Rand:     rand.New(rand.NewSource(1)),
		Progress: func(v float64) { progress = append(progress, v) },
	})
	if err != nil {
		t.Fatal(err)
	}
	if out == nil {
		t.Fatal("nil image without cancellation")
	}
	if out.NumPlanes() != 3 || out.Width() != 16 || out.Height() != 16 {
		t.Fatalf("got %dx%d with %d planes", out.Width(), out.Height(), out.NumPlanes())
	}
	if len(progress) != 2 || progress[0] != ProgressBuilt || progress[1] != ProgressSolved {
		t.Errorf("progress = %v", progress)
	}

	for c := 0; c < 3; c++ {
		p := out.Plane(c)
		prev := -1
		for band := 0; band < 4; band++ {
			v := p.At(band*bandWidth, 0)
			for y := 0; y < 16; y++ {
				for x := band * bandWidth; x < (band+1)*bandWidth; x++ {
					if p.At(x, y) != v {
						t.Fatalf("plane %d band %d not uniform: %d vs %d", c, band, p.At(x, y), v)
					}
				}
			}
			if int(v) <= prev {
				t.Errorf("plane %d band %d = %d, not brighter than %d", c, band, v, prev)
			}
			prev = int(v)
		}
		if p.At(0, 0) != 0 {
			t.Errorf("plane %d darkest band = %d, want 0", c, p.At(0, 0))
		}
	}
}

func TestReconstructUniformSceneIsBlack(t *testing.T) {
	images := make([]*raster.Image, len(exposures))
	for j, exp := range exposures {
		img := raster.NewBlank(8, 8, 3)
		for c := 0; c < 3; c++ {
			pix := img.Plane(c).Pix()
			for i := range pix {
				pix[i] = 128
			}
		}
		img.Metadata.SetExposureTime(exp)
		images[j] = img
	}

	out, err := Reconstruct(context.Background(), images, Options{
		Samples: 32,
		Rand:    rand.New(rand.NewSource(3)),
	})
	if err != nil {
		t.Fatal(err)
	}
	if out == nil {
		t.Fatal("nil image without cancellation")
	}
	for c := 0; c < 3; c++ {
		for i, v := range out.Plane(c).Pix() {
			if v != 0 {
				t.Fatalf("plane %d pixel %d = %d, want 0 for a scene without radiance range", c, i, v)
			}
		}
	}
}

func TestReconstructCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var calls int
	out, err := Reconstruct(ctx, bracket(t), Options{
		Samples:  16,
		Rand:     rand.New(rand.NewSource(1)),
		Progress: func(float64) { calls++ },
	})
	if err != nil {
		t.Fatalf("cancellation reported as error: %v", err)
	}
	if out != nil {
		t.Fatal("expected nil image after cancellation")
	}
	if calls != 1 {
		t.Errorf("progress called %d times, want 1", calls)
	}
}

func TestReconstructMissingExposure(t *testing.T) {
	images := bracket(t)
	delete(images[1].Metadata, raster.TagExposureTime)
	_, err := Reconstruct(context.Background(), images, Options{Samples: 8})
	if !errors.Is(err, raster.ErrMissingMetadata) {
		t.Fatalf("err = %v, want ErrMissingMetadata", err)
	}
}

func TestReconstructRejectsInput(t *testing.T) {
	ctx := context.Background()
	images := bracket(t)

	small := raster.NewBlank(8, 8, 3)
	small.Metadata.SetExposureTime(0.5)
	gray := raster.NewBlank(16, 16, 1)
	gray.Metadata.SetExposureTime(0.5)

	for _, tc := range []struct {
		name   string
		images []*raster.Image
	}{
		{"single image", images[:1]},
		{"size mismatch", []*raster.Image{images[0], small}},
		{"grayscale", []*raster.Image{images[0], gray}},
		{"nil image", []*raster.Image{images[0], nil}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Reconstruct(ctx, tc.images, Options{Samples: 8})
			if !errors.Is(err, raster.ErrInvalidArgument) {
				t.Fatalf("err = %v, want ErrInvalidArgument", err)
			}
		})
	}
}
