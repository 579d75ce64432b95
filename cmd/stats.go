package cmd

import (
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"

	"github.com/AnyUserName/imgcore-cli/internal/codec"
	"github.com/AnyUserName/imgcore-cli/internal/hasher"
	"github.com/AnyUserName/imgcore-cli/internal/histogram"
	"github.com/AnyUserName/imgcore-cli/internal/manifest"
	"github.com/AnyUserName/imgcore-cli/internal/raster"
)

var statsCmd = &cobra.Command{
	Use:   "stats <image | out_dir | manifest>",
	Short: "Display plane statistics of an image or a batch run summary",
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(_ *cobra.Command, args []string) error {
	path := args[0]
	if isImagePath(path) {
		img, err := codec.Decode(path)
		if err != nil {
			return err
		}
		printImageStats(path, img)
		return nil
	}

	manifestPath, err := resolveManifestPath(path)
	if err != nil {
		return err
	}
	m, err := manifest.Read(manifestPath)
	if err != nil {
		return fmt.Errorf("read manifest: %w", err)
	}
	printManifestStats(m)
	return nil
}

func isImagePath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp":
		return true
	}
	return false
}

// planeSummary describes one plane's histogram.
type planeSummary struct {
	Mean, StdDev float64
	Min, Max     int
	Entropy      float64 // bits
}

func planeStats(p *raster.Plane) planeSummary {
	h := histogram.Full(p)
	values := make([]float64, histogram.Bins)
	weights := make([]float64, histogram.Bins)
	probs := make([]float64, histogram.Bins)
	n := float64(h.Sum())
	s := planeSummary{Min: -1}
	for v, c := range h {
		values[v] = float64(v)
		weights[v] = float64(c)
		probs[v] = float64(c) / n
		if c > 0 {
			if s.Min < 0 {
				s.Min = v
			}
			s.Max = v
		}
	}
	s.Mean, s.StdDev = stat.MeanStdDev(values, weights)
	// stat.Entropy is in nats.
	s.Entropy = stat.Entropy(probs) / math.Ln2
	return s
}

func printImageStats(path string, img *raster.Image) {
	fmt.Println()
	fmt.Printf("  Image:      %s\n", path)
	fmt.Printf("  Size:       %dx%d, %d planes\n", img.Width(), img.Height(), img.NumPlanes())
	kind := "color"
	switch {
	case img.NumPlanes() < 3 && len(img.Palette) > 0:
		kind = fmt.Sprintf("paletted (%d colors)", len(img.Palette))
	case img.IsGrayscale():
		kind = "grayscale"
	}
	fmt.Printf("  Kind:       %s\n", kind)
	fmt.Printf("  Digest:     %s\n", hasher.PlaneDigest(img, 16))
	if t, ok := img.Metadata.ExposureTime(); ok {
		fmt.Printf("  Exposure:   %s s (%g)\n", img.Metadata[raster.TagExposureTime], t)
	}
	if f, ok := img.Metadata.Float(raster.TagFNumber); ok {
		fmt.Printf("  F-number:   f/%.1f\n", f)
	}
	fmt.Println()

	names := []string{"R", "G", "B", "A"}
	if img.NumPlanes() < 3 {
		names = []string{"I"}
	}
	fmt.Println("  Plane   mean   stddev  min  max  entropy")
	for i := 0; i < img.NumPlanes(); i++ {
		name := fmt.Sprintf("%d", i)
		if i < len(names) {
			name = names[i]
		}
		s := planeStats(img.Plane(i))
		fmt.Printf("  %-5s %6.1f  %7.2f  %3d  %3d  %5.2f bits\n",
			name, s.Mean, s.StdDev, s.Min, s.Max, s.Entropy)
	}
	fmt.Println()
}

func printManifestStats(m *manifest.Manifest) {
	fmt.Println()
	fmt.Printf("  Manifest version: %d\n", m.Version)
	fmt.Printf("  Run:              %s\n", m.RunID)
	fmt.Printf("  Generated:        %s\n", m.GeneratedAt)
	fmt.Printf("  Operation:        %s (profile %s)\n", m.Operation, m.Profile)
	if m.RunInfo != nil {
		fmt.Printf("  Workers:          %d\n", m.RunInfo.Workers)
		fmt.Printf("  Duration:         %d ms\n", m.RunInfo.DurationMS)
	}
	fmt.Println()

	s := m.Stats
	fmt.Printf("  Total entries:    %d\n", s.TotalEntries)
	if s.Failed > 0 || s.Cancelled > 0 {
		fmt.Printf("  Failed/cancelled: %d / %d\n", s.Failed, s.Cancelled)
	}
	fmt.Printf("  Input size:       %s\n", formatBytes(s.TotalInputBytes))
	fmt.Printf("  Output size:      %s\n", formatBytes(s.TotalOutputBytes))
	fmt.Println()

	// Per-format breakdown.
	type formatStat struct {
		count int
		bytes int64
	}
	formats := map[string]formatStat{}
	for _, e := range m.Entries {
		fs := formats[e.Output.Format]
		fs.count++
		fs.bytes += e.Output.Size
		formats[e.Output.Format] = fs
	}
	fmt.Println("  Format breakdown:")
	for _, f := range outputFormats(m) {
		fs := formats[f]
		fmt.Printf("    %-6s  %4d files  %s\n", f, fs.count, formatBytes(fs.bytes))
	}
	fmt.Println()

	// Input kind breakdown by plane count.
	planes := map[int]int{}
	for _, e := range m.Entries {
		planes[e.Input.Planes]++
	}
	var counts []int
	for n := range planes {
		counts = append(counts, n)
	}
	sort.Ints(counts)
	fmt.Println("  Input planes:")
	for _, n := range counts {
		fmt.Printf("    %d planes  %4d images\n", n, planes[n])
	}

	// Warnings.
	var warnings []string
	for key, e := range m.Entries {
		if e.Input.Digest == e.Output.Digest {
			warnings = append(warnings, fmt.Sprintf("entry %q: output pixels identical to input", key))
		}
	}
	sort.Strings(warnings)
	if len(warnings) > 0 {
		fmt.Println()
		fmt.Printf("  Warnings (%d):\n", len(warnings))
		for _, w := range warnings {
			fmt.Printf("    ⚠ %s\n", w)
		}
	}
	fmt.Println()
}
