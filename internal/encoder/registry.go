package encoder

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Registry maps format names and file extensions to available encoders.
type Registry struct {
	byFormat map[string]Encoder
	byExt    map[string]Encoder
	order    []string
}

// NewRegistry creates a registry, probing all encoders for availability.
func NewRegistry() *Registry {
	r := &Registry{
		byFormat: make(map[string]Encoder),
		byExt:    make(map[string]Encoder),
	}

	all := []Encoder{
		&PNGEncoder{},
		&JPEGEncoder{},
		&TIFFEncoder{},
		&BMPEncoder{},
		&GIFEncoder{},
		NewWebPEncoder(),
		NewAVIFEncoder(),
	}
	for _, enc := range all {
		if !enc.Available() {
			continue
		}
		r.byFormat[enc.Format()] = enc
		r.order = append(r.order, enc.Format())
		for _, ext := range enc.Extensions() {
			r.byExt[ext] = enc
		}
	}
	return r
}

// Get returns an encoder for the given format name or extension, or nil
// if unavailable.
func (r *Registry) Get(format string) Encoder {
	f := strings.TrimPrefix(strings.ToLower(format), ".")
	if enc, ok := r.byFormat[f]; ok {
		return enc
	}
	return r.byExt[f]
}

// ForPath selects an encoder from the extension of path.
func (r *Registry) ForPath(path string) (Encoder, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return nil, fmt.Errorf("%s has no file extension to pick an output format", path)
	}
	enc := r.Get(ext)
	if enc == nil {
		return nil, fmt.Errorf("no encoder for %q (%s)", ext, r)
	}
	return enc, nil
}

// Available returns all available format names in registration order.
func (r *Registry) Available() []string {
	return append([]string(nil), r.order...)
}

// String returns a summary of available encoders.
func (r *Registry) String() string {
	if len(r.order) == 0 {
		return "no encoders available"
	}
	return fmt.Sprintf("encoders: %s", strings.Join(r.order, ", "))
}
