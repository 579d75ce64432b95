package colorspace

import (
	"math"
	"math/rand"
	"testing"

	"github.com/AnyUserName/imgcore-cli/internal/raster"
)

func TestHSVRoundtrip(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 2000; i++ {
		r, g, b := uint8(rng.Intn(256)), uint8(rng.Intn(256)), uint8(rng.Intn(256))
		h, s, v := RGBToHSV(r, g, b)
		r2, g2, b2 := HSVToRGB(h, s, v)
		if r != r2 || g != g2 || b != b2 {
			t.Fatalf("(%d,%d,%d) -> hsv(%v,%v,%v) -> (%d,%d,%d)", r, g, b, h, s, v, r2, g2, b2)
		}
	}
}

func TestLabScale(t *testing.T) {
	white := RGBToLab(255, 255, 255)
	if math.Abs(white.L-100) > 0.01 || math.Abs(white.A) > 0.01 || math.Abs(white.B) > 0.01 {
		t.Errorf("white = %+v, want L=100 a=b=0", white)
	}
	black := RGBToLab(0, 0, 0)
	if math.Abs(black.L) > 0.01 {
		t.Errorf("black L = %v", black.L)
	}
}

func TestLabRoundtrip(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	for i := 0; i < 500; i++ {
		r, g, b := uint8(rng.Intn(256)), uint8(rng.Intn(256)), uint8(rng.Intn(256))
		r2, g2, b2 := LabToRGB(RGBToLab(r, g, b))
		if absDiff(r, r2) > 1 || absDiff(g, g2) > 1 || absDiff(b, b2) > 1 {
			t.Fatalf("(%d,%d,%d) came back as (%d,%d,%d)", r, g, b, r2, g2, b2)
		}
	}
}

func TestHSVPlanesApply(t *testing.T) {
	img := raster.NewRandom(8, 6, 3, rand.New(rand.NewSource(2)))
	want := img.Clone()
	hsv, err := ToHSV(img)
	if err != nil {
		t.Fatal(err)
	}
	hsv.SetValuePlane(hsv.ValuePlane())
	if err := hsv.Apply(img); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if !img.Plane(i).Equal(want.Plane(i)) {
			t.Errorf("plane %d changed after HSV roundtrip", i)
		}
	}
}

func TestToLabNeedsColor(t *testing.T) {
	if _, err := ToLab(raster.NewBlank(2, 2, 1)); err == nil {
		t.Error("expected error for single-plane image")
	}
}

func absDiff(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}
