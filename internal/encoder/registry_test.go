package encoder

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

func checker(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(0)
			if (x+y)%2 == 0 {
				v = 255
			}
			img.SetNRGBA(x, y, color.NRGBA{R: v, G: 255 - v, B: uint8(x * 16), A: 255})
		}
	}
	return img
}

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry()
	for _, tc := range []struct {
		in, want string
	}{
		{"png", "png"},
		{".PNG", "png"},
		{"jpg", "jpeg"},
		{"jpeg", "jpeg"},
		{"tif", "tiff"},
		{"bmp", "bmp"},
		{"gif", "gif"},
	} {
		enc := r.Get(tc.in)
		if enc == nil {
			t.Fatalf("Get(%q) = nil", tc.in)
		}
		if enc.Format() != tc.want {
			t.Errorf("Get(%q).Format() = %q, want %q", tc.in, enc.Format(), tc.want)
		}
	}
	if r.Get("xyz") != nil {
		t.Error("unknown format resolved to an encoder")
	}
}

func TestForPath(t *testing.T) {
	r := NewRegistry()
	enc, err := r.ForPath("out/result.TIFF")
	if err != nil {
		t.Fatal(err)
	}
	if enc.Format() != "tiff" {
		t.Errorf("format = %q, want tiff", enc.Format())
	}
	if _, err := r.ForPath("out/result"); err == nil {
		t.Error("expected error for path without extension")
	}
	if _, err := r.ForPath("out/result.xyz"); err == nil {
		t.Error("expected error for unknown extension")
	}
}

func TestLosslessRoundTrip(t *testing.T) {
	src := checker(8, 6)
	r := NewRegistry()
	decoders := map[string]func([]byte) (image.Image, error){
		"png":  func(b []byte) (image.Image, error) { return png.Decode(bytes.NewReader(b)) },
		"bmp":  func(b []byte) (image.Image, error) { return bmp.Decode(bytes.NewReader(b)) },
		"tiff": func(b []byte) (image.Image, error) { return tiff.Decode(bytes.NewReader(b)) },
	}
	for format, decode := range decoders {
		data, err := r.Get(format).Encode(src, 0)
		if err != nil {
			t.Fatalf("%s: %v", format, err)
		}
		got, err := decode(data)
		if err != nil {
			t.Fatalf("%s decode: %v", format, err)
		}
		for y := 0; y < 6; y++ {
			for x := 0; x < 8; x++ {
				r1, g1, b1, _ := src.At(x, y).RGBA()
				r2, g2, b2, _ := got.At(x, y).RGBA()
				if r1>>8 != r2>>8 || g1>>8 != g2>>8 || b1>>8 != b2>>8 {
					t.Fatalf("%s: pixel (%d,%d) changed", format, x, y)
				}
			}
		}
	}
}

func TestJPEGQualityFallback(t *testing.T) {
	data, err := (&JPEGEncoder{}).Encode(checker(16, 16), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) < 2 || data[0] != 0xFF || data[1] != 0xD8 {
		t.Error("missing JPEG SOI marker")
	}
}
