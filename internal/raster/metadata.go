package raster

import (
	"fmt"
	"math"
)

// EXIF tag identifiers used by the core.
const (
	TagExposureTime uint16 = 0x829A
	TagFNumber      uint16 = 0x829D
	TagISOSpeed     uint16 = 0x8827
)

// Rational is an unsigned EXIF rational value.
type Rational struct {
	Num uint32
	Den uint32
}

// Float converts r to a float64. A zero denominator yields ok=false.
func (r Rational) Float() (float64, bool) {
	if r.Den == 0 {
		return 0, false
	}
	return float64(r.Num) / float64(r.Den), true
}

func (r Rational) String() string { return fmt.Sprintf("%d/%d", r.Num, r.Den) }

// Metadata maps EXIF tags to rational values.
type Metadata map[uint16]Rational

// Float looks up tag as a float64.
func (m Metadata) Float(tag uint16) (float64, bool) {
	r, ok := m[tag]
	if !ok {
		return 0, false
	}
	return r.Float()
}

// ExposureTime returns the exposure time in seconds.
func (m Metadata) ExposureTime() (float64, bool) {
	return m.Float(TagExposureTime)
}

// SetExposureTime stores seconds as a rational with microsecond precision,
// or as 1/n when seconds is the reciprocal of an integer.
func (m Metadata) SetExposureTime(seconds float64) {
	if seconds > 0 && seconds < 1 {
		inv := 1 / seconds
		if n := uint32(inv + 0.5); n > 0 && math.Abs(inv-float64(n)) < 1e-9*inv {
			m[TagExposureTime] = Rational{Num: 1, Den: n}
			return
		}
	}
	m[TagExposureTime] = Rational{Num: uint32(seconds*1e6 + 0.5), Den: 1e6}
}

// Clone returns an independent copy.
func (m Metadata) Clone() Metadata {
	c := make(Metadata, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
