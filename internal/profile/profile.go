// Package profile holds named parameter presets for the imgcore
// operations. Presets can be extended or overridden from a JSON file.
package profile

import (
	"encoding/json"
	"fmt"
	"image/color"
	"os"
	"sort"

	"github.com/lucasb-eyer/go-colorful"
)

// DefaultName is the profile used when none is requested.
const DefaultName = "default"

// Profile defines default operation parameters. Explicit CLI flags
// override any field.
type Profile struct {
	Name string `json:"-"`

	// Equalization.
	ClipLimit float64 `json:"clip_limit"` // <= 0 disables contrast limiting
	TileSize  int     `json:"tile_size"`  // adaptive window side in pixels

	// Superpixels.
	Superpixels  int     `json:"superpixels"`
	Compactness  float64 `json:"compactness"`
	ContourColor string  `json:"contour_color"` // #rrggbb
	SquareSide   int     `json:"square_side"`   // center marker size

	// HDR fusion.
	Samples    int     `json:"samples"`
	Smoothness float64 `json:"smoothness"` // 0 = hdr default

	// Output encoding for batch runs.
	Format  string `json:"format"`
	Quality int    `json:"quality"`
}

// Set maps profile names to profiles.
type Set map[string]Profile

// Built-in profiles.
var builtins = Set{
	"default": {
		Name:         "default",
		ClipLimit:    2,
		TileSize:     128,
		Superpixels:  400,
		Compactness:  20,
		ContourColor: "#ff0000",
		SquareSide:   3,
		Samples:      256,
		Smoothness:   10,
		Format:       "png",
		Quality:      90,
	},
	"strong": {
		Name:         "strong",
		ClipLimit:    0,
		TileSize:     64,
		Superpixels:  150,
		Compactness:  10,
		ContourColor: "#ffff00",
		SquareSide:   5,
		Samples:      256,
		Smoothness:   5,
		Format:       "png",
		Quality:      90,
	},
	"fine": {
		Name:         "fine",
		ClipLimit:    1.5,
		TileSize:     192,
		Superpixels:  1200,
		Compactness:  30,
		ContourColor: "#00ff00",
		SquareSide:   3,
		Samples:      512,
		Smoothness:   20,
		Format:       "png",
		Quality:      95,
	},
}

// Builtins returns a copy of the built-in profiles.
func Builtins() Set {
	s := make(Set, len(builtins))
	for k, v := range builtins {
		s[k] = v
	}
	return s
}

// Get returns a built-in profile by name. Falls back to default if unknown.
func Get(name string) Profile {
	return builtins.Get(name)
}

// Get returns a profile by name. Unknown names fall back to the default
// profile, keeping the requested name.
func (s Set) Get(name string) Profile {
	if p, ok := s[name]; ok {
		return p
	}
	p := s[DefaultName]
	p.Name = name
	return p
}

// Names returns the profile names in sorted order.
func (s Set) Names() []string {
	names := make([]string, 0, len(s))
	for k := range s {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// LoadFile reads a JSON object keyed by profile name and merges it over
// base. Each entry starts from the profile of the same name in base, or
// the default profile for new names, so only changed fields need to be
// listed.
func LoadFile(path string, base Set) (Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse presets %s: %w", path, err)
	}

	out := make(Set, len(base)+len(raw))
	for k, v := range base {
		out[k] = v
	}
	for name, msg := range raw {
		p := out.Get(name)
		if err := json.Unmarshal(msg, &p); err != nil {
			return nil, fmt.Errorf("parse preset %q: %w", name, err)
		}
		p.Name = name
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("preset %q: %w", name, err)
		}
		out[name] = p
	}
	return out, nil
}

// Validate checks that the parameters are usable.
func (p Profile) Validate() error {
	if p.TileSize <= 0 {
		return fmt.Errorf("tile_size must be positive, got %d", p.TileSize)
	}
	if p.Superpixels <= 0 {
		return fmt.Errorf("superpixels must be positive, got %d", p.Superpixels)
	}
	if p.Compactness <= 0 {
		return fmt.Errorf("compactness must be positive, got %v", p.Compactness)
	}
	if p.Samples <= 0 {
		return fmt.Errorf("samples must be positive, got %d", p.Samples)
	}
	if p.Smoothness < 0 {
		return fmt.Errorf("smoothness must not be negative, got %v", p.Smoothness)
	}
	if _, err := ParseColor(p.ContourColor); err != nil {
		return err
	}
	return nil
}

// ParseColor parses a #rrggbb hex color.
func ParseColor(s string) (color.RGBA, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}, nil
}
