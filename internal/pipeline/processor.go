package pipeline

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/AnyUserName/imgcore-cli/internal/codec"
	"github.com/AnyUserName/imgcore-cli/internal/encoder"
	"github.com/AnyUserName/imgcore-cli/internal/hasher"
	"github.com/AnyUserName/imgcore-cli/internal/manifest"
)

// processResult holds the result of processing a single source image.
type processResult struct {
	key       string
	entry     manifest.Entry
	err       error
	cancelled bool
}

// processImage handles a single source image: decode, transform, encode
// and write the content-addressed output.
func processImage(ctx context.Context, src Source, cfg Config, op Operation, enc encoder.Encoder) processResult {
	result := processResult{key: src.Key}
	start := time.Now()

	img, err := codec.Decode(src.AbsPath)
	if err != nil {
		result.err = err
		return result
	}
	result.entry.Input = manifest.InputInfo{
		Path:     src.RelPath,
		Format:   src.Format,
		Width:    img.Width(),
		Height:   img.Height(),
		Planes:   img.NumPlanes(),
		Size:     src.Size,
		HasAlpha: img.NumPlanes() > 3,
		Digest:   hasher.PlaneDigest(img, 16),
	}

	out, done, err := op(ctx, img, cfg.Params)
	if err != nil {
		result.err = fmt.Errorf("%s %s: %w", cfg.Operation, src.RelPath, err)
		return result
	}
	if !done {
		result.cancelled = true
		return result
	}

	data, err := codec.Encode(out, enc, cfg.Quality)
	if err != nil {
		result.err = fmt.Errorf("%s: %w", src.RelPath, err)
		return result
	}
	contentHash := hasher.ContentHash(data, 16)

	// key.hash.ext next to the mirrored source path.
	relPath := fmt.Sprintf("%s.%s.%s", src.Key, contentHash[:8], enc.Extensions()[0])
	outPath := filepath.Join(cfg.OutputDir, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		result.err = fmt.Errorf("mkdir %s: %w", path.Dir(relPath), err)
		return result
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		result.err = fmt.Errorf("write %s: %w", relPath, err)
		return result
	}

	result.entry.Output = manifest.OutputInfo{
		Format: enc.Format(),
		Size:   int64(len(data)),
		Hash:   contentHash,
		Digest: hasher.PlaneDigest(out, 16),
		Path:   relPath,
	}
	result.entry.DurationMS = time.Since(start).Milliseconds()
	return result
}
