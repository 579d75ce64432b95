package histogram

import (
	"math/rand"
	"testing"

	"github.com/AnyUserName/imgcore-cli/internal/raster"
)

func TestComputeSumsToArea(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	img := raster.NewRandom(13, 9, 1, rng)
	p := img.Plane(0)

	full := Full(p)
	if got := full.Sum(); got != 13*9 {
		t.Fatalf("full sum = %d, want %d", got, 13*9)
	}

	// Windows hanging over every edge still count w*h samples.
	for _, win := range [][4]int{{-5, -5, 8, 8}, {10, 6, 7, 7}, {-3, 2, 20, 3}} {
		h := Compute(p, win[0], win[1], win[2], win[3])
		if got := h.Sum(); got != win[2]*win[3] {
			t.Errorf("window %v sum = %d, want %d", win, got, win[2]*win[3])
		}
	}
}

func TestComputeMirrorsEdges(t *testing.T) {
	p, err := raster.PlaneFromPix(3, 1, []uint8{10, 20, 30})
	if err != nil {
		t.Fatal(err)
	}
	// x in [-2, 4]: 20 10 | 10 20 30 | 30 20
	h := Compute(p, -2, 0, 7, 1)
	if h[10] != 2 || h[20] != 3 || h[30] != 2 {
		t.Errorf("mirrored counts 10:%d 20:%d 30:%d", h[10], h[20], h[30])
	}
}

func TestFromCenter(t *testing.T) {
	p, _ := raster.PlaneFromPix(3, 3, []uint8{
		1, 2, 3,
		4, 5, 6,
		7, 8, 9,
	})
	h := FromCenter(p, 1, 1, 3, 3)
	for v := 1; v <= 9; v++ {
		if h[v] != 1 {
			t.Errorf("bin %d = %d, want 1", v, h[v])
		}
	}
}

func TestClipNoopForNonPositiveLimit(t *testing.T) {
	var h Histogram
	h[3] = 1000
	h[200] = 7
	before := h
	Clip(&h, 0, 1007)
	Clip(&h, -2, 1007)
	if h != before {
		t.Error("clip with non-positive limit modified the histogram")
	}
}

func TestClipPreservesMass(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for trial := 0; trial < 50; trial++ {
		var h Histogram
		n := 0
		for i := 0; i < 4000; i++ {
			// Skewed distribution so some bins exceed the cap.
			v := int(rng.ExpFloat64()*20) % Bins
			h[v]++
			n++
		}
		limit := 0.5 + rng.Float64()*4
		Clip(&h, limit, n)
		if d := h.Sum() - n; d < -Bins || d > Bins {
			t.Fatalf("trial %d: mass drifted by %d", trial, d)
		}
	}
}

func TestClipCapsAndRedistributes(t *testing.T) {
	var h Histogram
	h[0] = 512 + 256
	h[1] = 256
	// level = round(1*1024/256) = 4; excess = 764+252 = 1016; add = 4.
	Clip(&h, 1, 1024)
	if h[0] != 8 || h[1] != 8 || h[2] != 4 {
		t.Errorf("got bins %d %d %d, want 8 8 4", h[0], h[1], h[2])
	}
}
