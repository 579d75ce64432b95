package cmd

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/AnyUserName/imgcore-cli/internal/hasher"
	"github.com/AnyUserName/imgcore-cli/internal/manifest"
	"github.com/AnyUserName/imgcore-cli/internal/raster"
)

func TestPlaneStats(t *testing.T) {
	pix := make([]uint8, 16)
	for i := 8; i < 16; i++ {
		pix[i] = 200
	}
	p, err := raster.PlaneFromPix(4, 4, pix)
	if err != nil {
		t.Fatal(err)
	}
	s := planeStats(p)
	if s.Mean != 100 {
		t.Errorf("mean = %v, want 100", s.Mean)
	}
	if s.Min != 0 || s.Max != 200 {
		t.Errorf("min/max = %d/%d", s.Min, s.Max)
	}
	if math.Abs(s.Entropy-1) > 1e-12 {
		t.Errorf("entropy = %v bits, want 1", s.Entropy)
	}
}

func validManifest(t *testing.T, dir string) *manifest.Manifest {
	t.Helper()
	data := []byte("output bytes")
	if err := os.WriteFile(filepath.Join(dir, "a.png"), data, 0o644); err != nil {
		t.Fatal(err)
	}
	m := manifest.New("equalize", "default")
	m.Entries["a"] = manifest.Entry{
		Input: manifest.InputInfo{Path: "a.jpg", Width: 4, Height: 4, Planes: 3, Size: 99},
		Output: manifest.OutputInfo{
			Format: "jpeg",
			Size:   int64(len(data)),
			Hash:   hasher.ContentHash(data, 16),
			Path:   "a.png",
		},
	}
	m.ComputeStats()
	return m
}

func TestValidateManifest(t *testing.T) {
	dir := t.TempDir()
	m := validManifest(t, dir)
	if errs := validateManifest(m, dir, false); len(errs) != 0 {
		t.Fatalf("valid manifest reported %v", errs)
	}

	if err := os.WriteFile(filepath.Join(dir, "a.png"), []byte("tampered bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	errs := validateManifest(m, dir, false)
	if len(errs) != 2 {
		t.Fatalf("got %d errors, want size and hash mismatch: %v", len(errs), errs)
	}
	if !strings.Contains(errs[1], "hash mismatch") {
		t.Errorf("second error = %q", errs[1])
	}
}

func TestValidateManifestMissingFileAndStats(t *testing.T) {
	dir := t.TempDir()
	m := validManifest(t, dir)
	m.Operation = "blur"
	m.Stats.TotalEntries = 5
	if err := os.Remove(filepath.Join(dir, "a.png")); err != nil {
		t.Fatal(err)
	}

	joined := strings.Join(validateManifest(m, dir, false), "\n")
	for _, want := range []string{"unknown operation", "file not found", "total_entries mismatch"} {
		if !strings.Contains(joined, want) {
			t.Errorf("missing %q in:\n%s", want, joined)
		}
	}
}
