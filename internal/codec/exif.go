package codec

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"

	"github.com/AnyUserName/imgcore-cli/internal/raster"
)

var exifTags = map[exif.FieldName]uint16{
	exif.ExposureTime: raster.TagExposureTime,
	exif.FNumber:      raster.TagFNumber,
}

// ReadExif extracts the exposure related EXIF fields of the file at path.
// Files without EXIF yield empty metadata and no error.
func ReadExif(path string) (raster.Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readExif(f)
}

func readExif(r io.Reader) (raster.Metadata, error) {
	md := raster.Metadata{}
	x, err := exif.Decode(r)
	if err != nil && (x == nil || exif.IsCriticalError(err)) {
		// No EXIF block, or a container goexif cannot read.
		return md, nil
	}

	for name, tag := range exifTags {
		t, err := x.Get(name)
		if err != nil {
			continue
		}
		if v, ok := rational(t); ok {
			md[tag] = v
		}
	}
	if t, err := x.Get(exif.ISOSpeedRatings); err == nil {
		if iso, err := t.Int(0); err == nil && iso > 0 {
			md[raster.TagISOSpeed] = raster.Rational{Num: uint32(iso), Den: 1}
		}
	}
	return md, nil
}

func rational(t *tiff.Tag) (raster.Rational, bool) {
	num, den, err := t.Rat2(0)
	if err != nil || num < 0 || den <= 0 {
		return raster.Rational{}, false
	}
	if num > 1<<32-1 || den > 1<<32-1 {
		return raster.Rational{}, false
	}
	return raster.Rational{Num: uint32(num), Den: uint32(den)}, true
}

// ParseExposure parses an exposure time given as seconds ("0.004") or as
// a fraction ("1/250").
func ParseExposure(s string) (float64, error) {
	bad := fmt.Errorf("%w: exposure %q", raster.ErrInvalidArgument, s)
	numStr, denStr, frac := strings.Cut(strings.TrimSpace(s), "/")
	v, err := strconv.ParseFloat(numStr, 64)
	if err != nil {
		return 0, bad
	}
	if frac {
		den, err := strconv.ParseFloat(denStr, 64)
		if err != nil || den <= 0 {
			return 0, bad
		}
		v /= den
	}
	if v <= 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, bad
	}
	return v, nil
}
