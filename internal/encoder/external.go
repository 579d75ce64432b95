package encoder

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
)

// ToolEncoder encodes by writing a temporary PNG and running an external
// command line tool on it. It is only Available when the tool is on PATH.
type ToolEncoder struct {
	format string
	exts   []string
	tool   string
	hint   string
	// args builds the tool arguments for a quality in 1-100.
	args func(quality int, src, dst string) []string

	once sync.Once
	path string
}

// NewWebPEncoder encodes through cwebp (libwebp).
func NewWebPEncoder() *ToolEncoder {
	return &ToolEncoder{
		format: "webp",
		exts:   []string{"webp"},
		tool:   "cwebp",
		hint:   "install libwebp (apt install webp)",
		args: func(q int, src, dst string) []string {
			return []string{"-q", strconv.Itoa(q), "-m", "6", "-mt", "-quiet", src, "-o", dst}
		},
	}
}

// NewAVIFEncoder encodes through avifenc (libavif), mapping quality 1-100
// onto its 63-0 quantizer scale.
func NewAVIFEncoder() *ToolEncoder {
	return &ToolEncoder{
		format: "avif",
		exts:   []string{"avif"},
		tool:   "avifenc",
		hint:   "install libavif (apt install libavif-bin)",
		args: func(q int, src, dst string) []string {
			qz := strconv.Itoa(63 - q*63/100)
			return []string{"--min", qz, "--max", qz, "--speed", "6", "-j", "all", src, dst}
		},
	}
}

func (e *ToolEncoder) Format() string       { return e.format }
func (e *ToolEncoder) Extensions() []string { return e.exts }

func (e *ToolEncoder) Available() bool {
	e.once.Do(func() {
		if p, err := exec.LookPath(e.tool); err == nil {
			e.path = p
		}
	})
	return e.path != ""
}

func (e *ToolEncoder) Encode(img image.Image, quality int) ([]byte, error) {
	if !e.Available() {
		return nil, fmt.Errorf("%s not found in PATH; %s", e.tool, e.hint)
	}

	dir, err := os.MkdirTemp("", "imgcore-"+e.format+"-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	src := filepath.Join(dir, "src.png")
	dst := filepath.Join(dir, "dst."+e.exts[0])
	f, err := os.Create(src)
	if err != nil {
		return nil, fmt.Errorf("create temp png: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return nil, fmt.Errorf("encode temp png: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close temp png: %w", err)
	}

	cmd := exec.Command(e.path, e.args(clampQuality(quality), src, dst)...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("%s: %w: %s", e.tool, err, out)
	}
	return os.ReadFile(dst)
}
