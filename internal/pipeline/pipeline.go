// Package pipeline applies one imgcore operation to every image in a
// directory tree and records the run in a manifest.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/AnyUserName/imgcore-cli/internal/encoder"
	"github.com/AnyUserName/imgcore-cli/internal/manifest"
)

// Config holds all parameters for a batch run.
type Config struct {
	InputDir  string
	OutputDir string
	Operation string
	Profile   string
	Params    Params
	Format    string // output format name or extension
	Quality   int
	Workers   int
	Verbose   bool
}

// Pipeline orchestrates batch processing.
type Pipeline struct {
	cfg      Config
	registry *encoder.Registry
}

// New creates a configured pipeline.
func New(cfg Config) *Pipeline {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.Format == "" {
		cfg.Format = "png"
	}
	return &Pipeline{
		cfg:      cfg,
		registry: encoder.NewRegistry(),
	}
}

func (p *Pipeline) logf(format string, args ...any) {
	if p.cfg.Verbose {
		fmt.Fprintf(os.Stderr, "[imgcore] "+format+"\n", args...)
	}
}

// Run processes every image under the input directory and returns the
// manifest. Individual failures are reported and counted; Run only fails
// when nothing could be processed. Files not yet started when ctx is
// cancelled are counted as cancelled.
func (p *Pipeline) Run(ctx context.Context) (*manifest.Manifest, error) {
	start := time.Now()
	op, err := Lookup(p.cfg.Operation)
	if err != nil {
		return nil, err
	}
	enc := p.registry.Get(p.cfg.Format)
	if enc == nil {
		return nil, fmt.Errorf("output format %q unavailable (%s)", p.cfg.Format, p.registry)
	}
	p.logf("%s", p.registry)

	// Step 1: Scan for images.
	sources, err := ScanImages(p.cfg.InputDir, p.cfg.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("no images found in %s", p.cfg.InputDir)
	}
	if err := os.MkdirAll(p.cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	p.logf("found %d images", len(sources))

	// Step 2: Process images in parallel.
	results := make([]processResult, len(sources))
	var g errgroup.Group
	g.SetLimit(p.cfg.Workers)
	for i, src := range sources {
		i, src := i, src // per-iteration copy for go < 1.22 loop semantics
		g.Go(func() error {
			if ctx.Err() != nil {
				results[i] = processResult{key: src.Key, cancelled: true}
				return nil
			}
			p.logf("processing: %s", src.Key)
			results[i] = processImage(ctx, src, p.cfg, op, enc)
			if r := results[i]; r.err == nil && !r.cancelled {
				p.logf("done: %s -> %s (%d ms)", src.Key, r.entry.Output.Path, r.entry.DurationMS)
			}
			return nil
		})
	}
	_ = g.Wait()

	// Step 3: Collect results into manifest.
	m := manifest.New(p.cfg.Operation, p.cfg.Profile)
	m.Params = manifest.Params{
		ClipLimit: p.cfg.Params.ClipLimit,
		Format:    enc.Format(),
		Quality:   p.cfg.Quality,
	}
	switch p.cfg.Operation {
	case "clahe":
		m.Params.TileSize = p.cfg.Params.TileSize
	case "slic":
		m.Params.ClipLimit = 0
		m.Params.Superpixels = p.cfg.Params.Superpixels
		m.Params.Compactness = p.cfg.Params.Compactness
		m.Params.Contours = p.cfg.Params.Contours
	}

	var errs []error
	for _, r := range results {
		switch {
		case r.err != nil:
			errs = append(errs, r.err)
		case r.cancelled:
			m.Stats.Cancelled++
		default:
			m.Entries[r.key] = r.entry
		}
	}
	m.Stats.Failed = len(errs)

	// Report errors but don't fail the entire run for partial failures.
	if len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "[imgcore] error: %v\n", e)
		}
		if len(errs) == len(sources) {
			return nil, fmt.Errorf("all %d images failed to process", len(errs))
		}
		fmt.Fprintf(os.Stderr, "[imgcore] warning: %d of %d images had errors\n",
			len(errs), len(sources))
	}

	m.RunInfo = &manifest.RunInfo{
		Workers:    p.cfg.Workers,
		DurationMS: time.Since(start).Milliseconds(),
	}
	m.ComputeStats()
	return m, nil
}
