package codec

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"math"
	"path/filepath"
	"testing"

	"github.com/AnyUserName/imgcore-cli/internal/encoder"
	"github.com/AnyUserName/imgcore-cli/internal/raster"
)

func gradientNRGBA(w, h int, alpha uint8) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 10), G: uint8(y * 10), B: 100, A: alpha})
		}
	}
	return img
}

func TestFromImageOpaqueHasThreePlanes(t *testing.T) {
	img := FromImage(gradientNRGBA(5, 4, 255))
	if img.NumPlanes() != 3 {
		t.Fatalf("planes = %d, want 3", img.NumPlanes())
	}
	if got := img.ColorAt(3, 2); got.R != 30 || got.G != 20 || got.B != 100 {
		t.Errorf("ColorAt(3,2) = %v", got)
	}
}

func TestFromImageKeepsAlpha(t *testing.T) {
	img := FromImage(gradientNRGBA(5, 4, 128))
	if img.NumPlanes() != 4 {
		t.Fatalf("planes = %d, want 4", img.NumPlanes())
	}
	if v := img.Plane(3).At(1, 1); v != 128 {
		t.Errorf("alpha = %d, want 128", v)
	}
	out := ToImage(img).(*image.NRGBA)
	if c := out.NRGBAAt(1, 1); c.A != 128 || c.R != 10 {
		t.Errorf("round trip = %v", c)
	}
}

func TestFromImageSubImage(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 6, 6))
	for i := range gray.Pix {
		gray.Pix[i] = uint8(i)
	}
	sub := gray.SubImage(image.Rect(2, 3, 5, 5)).(*image.Gray)
	img := FromImage(sub)
	if img.Width() != 3 || img.Height() != 2 {
		t.Fatalf("size = %dx%d, want 3x2", img.Width(), img.Height())
	}
	if v := img.Plane(0).At(0, 0); v != gray.GrayAt(2, 3).Y {
		t.Errorf("first pixel = %d, want %d", v, gray.GrayAt(2, 3).Y)
	}
	if v := img.Plane(0).At(2, 1); v != gray.GrayAt(4, 4).Y {
		t.Errorf("last pixel = %d, want %d", v, gray.GrayAt(4, 4).Y)
	}
}

func TestPalettedRoundTrip(t *testing.T) {
	pal := color.Palette{
		color.RGBA{0, 0, 0, 255},
		color.RGBA{255, 0, 0, 255},
		color.RGBA{0, 0, 255, 255},
	}
	src := image.NewPaletted(image.Rect(0, 0, 3, 2), pal)
	copy(src.Pix, []uint8{0, 1, 2, 2, 1, 0})

	img := FromImage(src)
	if img.NumPlanes() != 1 || len(img.Palette) != 3 {
		t.Fatalf("planes = %d, palette = %d", img.NumPlanes(), len(img.Palette))
	}

	path := filepath.Join(t.TempDir(), "pal.png")
	if err := Save(img, path, 0, encoder.NewRegistry()); err != nil {
		t.Fatal(err)
	}
	back, err := Decode(path)
	if err != nil {
		t.Fatal(err)
	}
	if back.NumPlanes() != 1 {
		t.Fatalf("decoded planes = %d, want 1", back.NumPlanes())
	}
	if !back.Plane(0).Equal(img.Plane(0)) {
		t.Errorf("indices changed: %v vs %v", back.Plane(0).Pix(), img.Plane(0).Pix())
	}
	for i, c := range pal {
		r1, g1, b1, _ := c.RGBA()
		r2, g2, b2, _ := back.Palette[i].RGBA()
		if r1 != r2 || g1 != g2 || b1 != b2 {
			t.Errorf("palette[%d] = %v, want %v", i, back.Palette[i], c)
		}
	}
	if len(back.Metadata) != 0 {
		t.Errorf("png without exif produced metadata %v", back.Metadata)
	}
}

func TestExpandRGB(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 2, 1))
	gray.Pix[0], gray.Pix[1] = 40, 200
	img := FromImage(gray)
	img.Metadata.SetExposureTime(0.5)

	rgb := ExpandRGB(img)
	if rgb.NumPlanes() != 3 {
		t.Fatalf("planes = %d, want 3", rgb.NumPlanes())
	}
	if c := rgb.ColorAt(1, 0); c.R != 200 || c.G != 200 || c.B != 200 {
		t.Errorf("ColorAt(1,0) = %v", c)
	}
	if exp, ok := rgb.Metadata.ExposureTime(); !ok || exp != 0.5 {
		t.Errorf("exposure = %v, %v", exp, ok)
	}
	if ExpandRGB(rgb) != rgb {
		t.Error("color image was copied")
	}
}

func TestIsGrayPalette(t *testing.T) {
	if !IsGrayPalette(GrayPalette()) {
		t.Error("gray palette not recognized")
	}
	if !IsGrayPalette(nil) {
		t.Error("empty palette should count as gray")
	}
	if IsGrayPalette(color.Palette{color.Gray{Y: 10}, color.RGBA{R: 200, A: 255}}) {
		t.Error("palette with red reported as gray")
	}
}

func TestSaveRejectsUnknownExtension(t *testing.T) {
	img := FromImage(gradientNRGBA(2, 2, 255))
	if err := Save(img, filepath.Join(t.TempDir(), "out.xyz"), 0, encoder.NewRegistry()); err == nil {
		t.Fatal("expected error")
	}
}

func TestReadExifWithoutExif(t *testing.T) {
	md, err := readExif(bytes.NewReader([]byte("not an image")))
	if err != nil {
		t.Fatal(err)
	}
	if len(md) != 0 {
		t.Errorf("metadata = %v, want empty", md)
	}
}

func TestParseExposure(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want float64
	}{
		{"1/250", 0.004},
		{"0.5", 0.5},
		{" 2 ", 2},
		{"1/3", 1.0 / 3},
	} {
		got, err := ParseExposure(tc.in)
		if err != nil {
			t.Errorf("ParseExposure(%q): %v", tc.in, err)
			continue
		}
		if math.Abs(got-tc.want) > 1e-12 {
			t.Errorf("ParseExposure(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
	for _, in := range []string{"", "0", "-1", "1/0", "abc", "1/x"} {
		if _, err := ParseExposure(in); !errors.Is(err, raster.ErrInvalidArgument) {
			t.Errorf("ParseExposure(%q) err = %v", in, err)
		}
	}
}
