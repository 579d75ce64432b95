//go:build ignore

// gen_fixtures creates small test images for the E2E smoke test.
// Usage: go run gen_fixtures.go <output_dir>
//
// The bracket/ directory holds three exposures of one synthetic scene;
// PNG carries no EXIF, so pass the times printed at the end to
// imgcore hdr --exposure.
package main

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"
)

var exposures = []float64{1.0 / 200, 1.0 / 50, 1.0 / 12.5}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: gen_fixtures <output_dir>")
		os.Exit(1)
	}
	dir := os.Args[1]
	for _, sub := range []string{"gray", "bracket"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			panic(err)
		}
	}

	// Washed out photo stand-in (JPEG, 320x200) for equalize/clahe.
	writeJPEG(filepath.Join(dir, "lowcontrast.jpg"), lowContrast(320, 200))

	// Gray image whose values sit in a narrow band.
	writePNG(filepath.Join(dir, "gray", "fog.png"), fog(160, 120))

	// Colored discs on a background for slic.
	writePNG(filepath.Join(dir, "discs.png"), discs(240, 160))

	// Exposure bracket of one scene.
	for i, t := range exposures {
		name := fmt.Sprintf("exp-%d.png", i+1)
		writePNG(filepath.Join(dir, "bracket", name), exposure(200, 120, t))
	}

	fmt.Fprintf(os.Stderr, "[gen_fixtures] created %d fixtures in %s\n", 3+len(exposures), dir)
	fmt.Fprint(os.Stderr, "[gen_fixtures] bracket exposures:")
	for _, t := range exposures {
		fmt.Fprintf(os.Stderr, " 1/%g", 1/t)
	}
	fmt.Fprintln(os.Stderr)
}

func lowContrast(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(110 + x*40/w),
				G: uint8(100 + y*30/h),
				B: uint8(120 + (x+y)%20),
				A: 255,
			})
		}
	}
	return img
}

func fog(w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := 128 + 12*math.Sin(float64(x)/9) + 8*math.Cos(float64(y)/7)
			img.SetGray(x, y, color.Gray{Y: uint8(v)})
		}
	}
	return img
}

func discs(w, h int) *image.NRGBA {
	type disc struct {
		cx, cy, r int
		c         color.NRGBA
	}
	ds := []disc{
		{60, 50, 35, color.NRGBA{220, 40, 40, 255}},
		{170, 60, 40, color.NRGBA{40, 180, 60, 255}},
		{110, 120, 30, color.NRGBA{50, 70, 210, 255}},
	}
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBA{R: 235, G: 230, B: 200, A: 255}
			for _, d := range ds {
				dx, dy := x-d.cx, y-d.cy
				if dx*dx+dy*dy <= d.r*d.r {
					c = d.c
				}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// exposure renders a scene with radiance spanning several stops through a
// gamma response, clipped to 8 bits.
func exposure(w, h int, t float64) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			radiance := math.Pow(2, float64(x)*8/float64(w)) * (1 + 0.5*float64(y)/float64(h))
			v := func(scale float64) uint8 {
				z := 255 * math.Pow(math.Min(radiance*scale*t, 1), 1/2.2)
				return uint8(z)
			}
			img.SetNRGBA(x, y, color.NRGBA{R: v(1), G: v(0.8), B: v(0.6), A: 255})
		}
	}
	return img
}

func writePNG(path string, img image.Image) {
	f, err := os.Create(path)
	if err != nil {
		panic(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		panic(err)
	}
}

func writeJPEG(path string, img image.Image) {
	f, err := os.Create(path)
	if err != nil {
		panic(err)
	}
	defer f.Close()
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: 90}); err != nil {
		panic(err)
	}
}
