// Package codec converts between files, image.Image values and the
// planar raster model.
package codec

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/disintegration/imaging"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/AnyUserName/imgcore-cli/internal/encoder"
	"github.com/AnyUserName/imgcore-cli/internal/raster"
)

// Decode reads an image file into planes. EXIF orientation is applied and
// EXIF exposure settings are copied into the metadata when present.
func Decode(path string) (*raster.Image, error) {
	src, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	img := FromImage(src)

	md, err := ReadExif(path)
	if err != nil {
		return nil, fmt.Errorf("read exif %s: %w", path, err)
	}
	for tag, v := range md {
		img.Metadata[tag] = v
	}
	return img, nil
}

// FromImage splits src into planes. Paletted images become one plane of
// palette indices, gray images one plane of intensities with a gray
// palette. Everything else becomes R, G, B planes, plus an alpha plane
// when any pixel is not fully opaque.
func FromImage(src image.Image) *raster.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	switch m := src.(type) {
	case *image.Paletted:
		p := raster.NewPlane(w, h)
		copyRows(p.Pix(), m.Pix, m.Stride, m.PixOffset(b.Min.X, b.Min.Y), w, h)
		return mustImage([]*raster.Plane{p}, m.Palette)
	case *image.Gray:
		p := raster.NewPlane(w, h)
		copyRows(p.Pix(), m.Pix, m.Stride, m.PixOffset(b.Min.X, b.Min.Y), w, h)
		return mustImage([]*raster.Plane{p}, GrayPalette())
	}

	n := imaging.Clone(src)
	planes := []*raster.Plane{raster.NewPlane(w, h), raster.NewPlane(w, h), raster.NewPlane(w, h)}
	opaque := n.Opaque()
	if !opaque {
		planes = append(planes, raster.NewPlane(w, h))
	}
	for y := 0; y < h; y++ {
		row := n.Pix[y*n.Stride : y*n.Stride+w*4]
		for x := 0; x < w; x++ {
			i := y*w + x
			for c := range planes {
				planes[c].Pix()[i] = row[x*4+c]
			}
		}
	}
	return mustImage(planes, nil)
}

// ToImage assembles planes back into an image.Image. One-plane images
// become *image.Paletted when they carry a palette and *image.Gray
// otherwise; images with three or more planes become *image.NRGBA.
func ToImage(img *raster.Image) image.Image {
	w, h := img.Width(), img.Height()
	rect := image.Rect(0, 0, w, h)

	if img.NumPlanes() < 3 {
		pix := img.Plane(0).Pix()
		if len(img.Palette) > 0 {
			out := image.NewPaletted(rect, img.Palette)
			copy(out.Pix, pix)
			return out
		}
		out := image.NewGray(rect)
		copy(out.Pix, pix)
		return out
	}

	out := image.NewNRGBA(rect)
	r, g, b := img.Plane(0).Pix(), img.Plane(1).Pix(), img.Plane(2).Pix()
	var a []uint8
	if img.NumPlanes() > 3 {
		a = img.Plane(3).Pix()
	}
	for i := 0; i < w*h; i++ {
		o := out.Pix[i*4 : i*4+4 : i*4+4]
		o[0], o[1], o[2], o[3] = r[i], g[i], b[i], 0xff
		if a != nil {
			o[3] = a[i]
		}
	}
	return out
}

// ExpandRGB returns img unchanged when it has color planes. A one-plane
// image is looked up through its palette (or read as gray) into three
// planes; metadata is carried over.
func ExpandRGB(img *raster.Image) *raster.Image {
	if img.HasColor() {
		return img
	}
	src := ToImage(img)
	rgba := image.NewNRGBA(src.Bounds())
	draw.Draw(rgba, rgba.Bounds(), src, image.Point{}, draw.Src)

	out := FromImage(rgba)
	out.Metadata = img.Metadata.Clone()
	return out
}

// GrayPalette is the identity palette attached to decoded gray images.
func GrayPalette() color.Palette {
	p := make(color.Palette, 256)
	for i := range p {
		p[i] = color.Gray{Y: uint8(i)}
	}
	return p
}

// IsGrayPalette reports whether every entry of p is a shade of gray. An
// empty palette counts as gray.
func IsGrayPalette(p color.Palette) bool {
	for _, c := range p {
		r, g, b, _ := c.RGBA()
		if r != g || g != b {
			return false
		}
	}
	return true
}

// Encode renders img with enc.
func Encode(img *raster.Image, enc encoder.Encoder, quality int) ([]byte, error) {
	data, err := enc.Encode(ToImage(img), quality)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", enc.Format(), err)
	}
	return data, nil
}

// Save encodes img in the format implied by the extension of path and
// writes it.
func Save(img *raster.Image, path string, quality int, reg *encoder.Registry) error {
	enc, err := reg.ForPath(path)
	if err != nil {
		return err
	}
	data, err := Encode(img, enc, quality)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func copyRows(dst, src []uint8, stride, offset, w, h int) {
	for y := 0; y < h; y++ {
		copy(dst[y*w:(y+1)*w], src[offset+y*stride:offset+y*stride+w])
	}
}

func mustImage(planes []*raster.Plane, palette color.Palette) *raster.Image {
	img, err := raster.New(planes, palette)
	if err != nil {
		panic(err)
	}
	return img
}
