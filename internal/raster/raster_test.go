package raster

import (
	"errors"
	"image/color"
	"math/rand"
	"testing"
)

func rampPlane(w, h int) *Plane {
	p := NewPlane(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p.Set(x, y, uint8(y*w+x))
		}
	}
	return p
}

func TestAtMirrored(t *testing.T) {
	p := rampPlane(4, 3)
	cases := []struct {
		x, y int
		want uint8
	}{
		{0, 0, p.At(0, 0)},
		{-1, 0, p.At(0, 0)},
		{-2, 0, p.At(1, 0)},
		{4, 0, p.At(3, 0)},
		{5, 0, p.At(2, 0)},
		{0, -1, p.At(0, 0)},
		{0, 3, p.At(0, 2)},
		{0, 4, p.At(0, 1)},
		{-1, 3, p.At(0, 2)},
	}
	for _, c := range cases {
		if got := p.AtMirrored(c.x, c.y); got != c.want {
			t.Errorf("AtMirrored(%d,%d) = %d, want %d", c.x, c.y, got, c.want)
		}
	}
}

func TestPlaneCloneIsIndependent(t *testing.T) {
	p := rampPlane(3, 3)
	c := p.Clone()
	c.Set(1, 1, 200)
	if p.At(1, 1) == 200 {
		t.Fatal("clone shares storage with source")
	}
}

func TestNewRejectsMismatchedPlanes(t *testing.T) {
	_, err := New([]*Plane{NewPlane(4, 4), NewPlane(4, 5)}, nil)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("got %v, want ErrInvalidArgument", err)
	}
	if _, err := New(nil, nil); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("empty planes: got %v", err)
	}
}

func TestGrayscaleDetection(t *testing.T) {
	gray := NewBlank(2, 2, 3)
	if !gray.IsGrayscale() || gray.IsRGB() {
		t.Error("identical planes should be grayscale")
	}

	single := NewBlank(2, 2, 1)
	if !single.IsGrayscale() {
		t.Error("single plane should be grayscale")
	}

	rgb := NewBlank(2, 2, 3)
	rgb.SetColor(1, 1, color.RGBA{R: 10, G: 20, B: 30})
	if rgb.IsGrayscale() || !rgb.IsRGB() {
		t.Error("differing planes should be RGB")
	}
}

func TestColorAccess(t *testing.T) {
	img := NewBlank(3, 2, 4)
	c := color.RGBA{R: 1, G: 2, B: 3, A: 0xff}
	img.SetColor(2, 1, c)
	if got := img.ColorAt(2, 1); got != c {
		t.Errorf("ColorAt = %v, want %v", got, c)
	}
	if img.Plane(3).At(2, 1) != 0 {
		t.Error("alpha plane was modified")
	}
}

func TestApplyPlaneToColorPlanes(t *testing.T) {
	img := NewRandom(5, 4, 4, rand.New(rand.NewSource(1)))
	alpha := img.Plane(3).Clone()
	if err := img.ApplyPlaneToColorPlanes(0); err != nil {
		t.Fatal(err)
	}
	if !img.Plane(1).Equal(img.Plane(0)) || !img.Plane(2).Equal(img.Plane(0)) {
		t.Error("color planes differ after apply")
	}
	if !img.Plane(3).Equal(alpha) {
		t.Error("alpha plane changed")
	}
	if err := img.ApplyPlaneToColorPlanes(7); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("out of range index: got %v", err)
	}
}

func TestUnitRoundtrip(t *testing.T) {
	p := rampPlane(16, 16)
	back := PlaneFromUnit(16, 16, p.ToUnit())
	if !back.Equal(p) {
		t.Error("unit conversion lost levels")
	}
}

func TestExposureTime(t *testing.T) {
	m := Metadata{}
	if _, ok := m.ExposureTime(); ok {
		t.Fatal("empty metadata reported an exposure")
	}
	m.SetExposureTime(1.0 / 50)
	if r := m[TagExposureTime]; r.Num != 1 || r.Den != 50 {
		t.Errorf("stored %v, want 1/50", r)
	}
	m.SetExposureTime(2.5)
	got, ok := m.ExposureTime()
	if !ok || got != 2.5 {
		t.Errorf("ExposureTime = %v, %v", got, ok)
	}
}

func TestCloneCopiesMetadata(t *testing.T) {
	img := NewBlank(2, 2, 3)
	img.Metadata.SetExposureTime(0.01)
	c := img.Clone()
	c.Metadata.SetExposureTime(1)
	if v, _ := img.Metadata.ExposureTime(); v != 0.01 {
		t.Errorf("source exposure changed to %v", v)
	}
}
