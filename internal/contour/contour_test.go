package contour

import (
	"errors"
	"image/color"
	"testing"

	"github.com/AnyUserName/imgcore-cli/internal/raster"
)

var red = color.RGBA{R: 255, A: 0xff}

func labelGrid(rows [][]int) *raster.Labels {
	l := raster.NewLabels(len(rows[0]), len(rows))
	for y, row := range rows {
		for x, id := range row {
			l.Set(x, y, id)
		}
	}
	return l
}

func TestDrawSingleDifferingCenter(t *testing.T) {
	labels := labelGrid([][]int{
		{0, 0, 0},
		{0, 1, 0},
		{0, 0, 0},
	})
	img := raster.NewBlank(3, 3, 3)
	m, err := Draw(img, labels, red)
	if err != nil {
		t.Fatal(err)
	}
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			center := x == 1 && y == 1
			if m.At(x, y) != center {
				t.Errorf("mask(%d,%d) = %v, want %v", x, y, m.At(x, y), center)
			}
			painted := img.ColorAt(x, y) == red
			if painted != center {
				t.Errorf("painted(%d,%d) = %v, want %v", x, y, painted, center)
			}
		}
	}
}

func TestTraceUniformHasNoContour(t *testing.T) {
	labels := raster.NewLabels(5, 4)
	for i := range labels.IDs {
		labels.IDs[i] = 3
	}
	if n := Trace(labels, nil).Count(); n != 0 {
		t.Errorf("uniform grid marked %d pixels", n)
	}
}

func TestTraceVerticalBoundaryIsOnePixelWide(t *testing.T) {
	// Scanning right to left marks the right side of the boundary first,
	// which hides it from the left side.
	labels := labelGrid([][]int{
		{0, 0, 1, 1},
		{0, 0, 1, 1},
		{0, 0, 1, 1},
		{0, 0, 1, 1},
	})
	m := Trace(labels, nil)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			want := x == 2
			if m.At(x, y) != want {
				t.Errorf("mask(%d,%d) = %v, want %v", x, y, m.At(x, y), want)
			}
		}
	}
}

func TestDrawRejectsMismatch(t *testing.T) {
	labels := raster.NewLabels(3, 3)
	if _, err := Draw(raster.NewBlank(4, 3, 3), labels, red); !errors.Is(err, raster.ErrInvalidArgument) {
		t.Errorf("size mismatch: err = %v", err)
	}
	if _, err := Draw(raster.NewBlank(3, 3, 1), labels, red); !errors.Is(err, raster.ErrInvalidArgument) {
		t.Errorf("grayscale: err = %v", err)
	}
}
