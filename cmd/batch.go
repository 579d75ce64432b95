package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/imgcore-cli/internal/manifest"
	"github.com/AnyUserName/imgcore-cli/internal/pipeline"
	"github.com/AnyUserName/imgcore-cli/internal/profile"
)

var (
	batchOutDir   string
	batchWorkers  int
	batchFormat   string
	batchQuality  int
	batchTile     int
	batchClip     float64
	batchK        int
	batchContours bool
)

var batchCmd = &cobra.Command{
	Use:   "batch <operation> <input_dir>",
	Short: "Apply an operation to every image in a directory",
	Long: `Scans input_dir for images (png, jpg, jpeg, webp, gif, bmp, tiff),
applies one of equalize, clahe or slic to each of them in parallel and
writes the results plus a manifest (` + manifest.FileName + `).

Output filenames are content-addressed: <key>.<hash>.<ext>`,
	Args:      cobra.ExactArgs(2),
	ValidArgs: pipeline.OperationNames(),
	RunE:      runBatch,
}

func init() {
	f := batchCmd.Flags()
	f.StringVarP(&batchOutDir, "out", "o", "./imgcore_out", "output directory")
	f.IntVarP(&batchWorkers, "workers", "w", 0, "parallel workers (0 = NumCPU)")
	f.StringVarP(&batchFormat, "format", "f", "", "output format (empty = profile)")
	f.IntVarP(&batchQuality, "quality", "q", 0, "quality 1-100 for lossy formats (0 = profile)")
	f.IntVar(&batchTile, "tile", 0, "clahe window side (0 = profile)")
	f.Float64Var(&batchClip, "clip", 0, "clip limit for equalize and clahe (profile default for clahe when unset)")
	f.IntVarP(&batchK, "superpixels", "k", 0, "slic superpixel count (0 = profile)")
	f.BoolVar(&batchContours, "contours", false, "slic: draw superpixel contours")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	opName, inputDir := args[0], args[1]
	start := time.Now()
	if _, err := pipeline.Lookup(opName); err != nil {
		return err
	}

	// Resolve absolute paths.
	absInput, err := filepath.Abs(inputDir)
	if err != nil {
		return fmt.Errorf("resolve input path: %w", err)
	}
	absOutput, err := filepath.Abs(batchOutDir)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}

	prof, err := loadProfile()
	if err != nil {
		return err
	}
	params, err := batchParams(cmd, opName, prof)
	if err != nil {
		return err
	}
	format := prof.Format
	if batchFormat != "" {
		format = batchFormat
	}
	quality := prof.Quality
	if batchQuality > 0 {
		quality = batchQuality
	}

	logVerbose("input:   %s", absInput)
	logVerbose("output:  %s", absOutput)
	logVerbose("profile: %s (%s, format=%s, quality=%d)", prof.Name, opName, format, quality)

	p := pipeline.New(pipeline.Config{
		InputDir:  absInput,
		OutputDir: absOutput,
		Operation: opName,
		Profile:   prof.Name,
		Params:    params,
		Format:    format,
		Quality:   quality,
		Workers:   batchWorkers,
		Verbose:   verbose,
	})

	ctx, cancel := operationContext(cmd.Context())
	defer cancel()
	m, err := p.Run(ctx)
	if err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}

	// Write manifest.
	manifestPath := filepath.Join(absOutput, manifest.FileName)
	if err := manifest.WriteJSON(m, manifestPath); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	printBatchReport(m, time.Since(start))
	if m.Stats.Cancelled > 0 {
		return cancelledError(ctx, fmt.Sprintf("batch (%d images not processed)", m.Stats.Cancelled))
	}
	return nil
}

func batchParams(cmd *cobra.Command, opName string, prof profile.Profile) (pipeline.Params, error) {
	params := pipeline.Params{}
	switch opName {
	case "equalize":
		params.ClipLimit = batchClip
	case "clahe":
		params.TileSize = prof.TileSize
		params.ClipLimit = prof.ClipLimit
		if batchTile > 0 {
			params.TileSize = batchTile
		}
		if cmd.Flags().Changed("clip") {
			params.ClipLimit = batchClip
		}
	case "slic":
		c, err := profile.ParseColor(prof.ContourColor)
		if err != nil {
			return params, err
		}
		params.Superpixels = prof.Superpixels
		params.Compactness = prof.Compactness
		params.Contours = batchContours
		params.ContourColor = c
		params.SquareSide = prof.SquareSide
		if batchK > 0 {
			params.Superpixels = batchK
		}
	}
	return params, nil
}

func printBatchReport(m *manifest.Manifest, elapsed time.Duration) {
	fmt.Println()
	fmt.Printf("  imgcore %s complete\n", m.Operation)
	fmt.Println()

	stats := m.Stats
	fmt.Printf("  Run:         %s\n", m.RunID)
	fmt.Printf("  Images:      %d\n", stats.TotalEntries)
	if stats.Failed > 0 {
		fmt.Printf("  Failed:      %d\n", stats.Failed)
	}
	if stats.Cancelled > 0 {
		fmt.Printf("  Cancelled:   %d\n", stats.Cancelled)
	}
	fmt.Printf("  Input size:  %s\n", formatBytes(stats.TotalInputBytes))
	fmt.Printf("  Output size: %s\n", formatBytes(stats.TotalOutputBytes))
	fmt.Printf("  Time:        %s\n", elapsed.Round(time.Millisecond))
	if m.RunInfo != nil {
		fmt.Printf("  Workers:     %d\n", m.RunInfo.Workers)
	}
	fmt.Println()

	// Top 10 slowest images.
	if len(m.Entries) > 0 {
		type timing struct {
			key string
			ms  int64
		}
		items := make([]timing, 0, len(m.Entries))
		for key, e := range m.Entries {
			items = append(items, timing{key, e.DurationMS})
		}
		sort.Slice(items, func(i, j int) bool {
			if items[i].ms != items[j].ms {
				return items[i].ms > items[j].ms
			}
			return items[i].key < items[j].key
		})
		n := min(len(items), 10)
		fmt.Printf("  Top %d slowest:\n", n)
		for _, it := range items[:n] {
			e := m.Entries[it.key]
			fmt.Printf("    %-40s %5dx%-5d %8d ms\n",
				truncKey(it.key, 40), e.Input.Width, e.Input.Height, it.ms)
		}
		fmt.Println()
	}

	fmt.Printf("  Formats:     %s\n", strings.Join(outputFormats(m), ", "))
	fmt.Printf("  Manifest:    %s\n", manifest.FileName)
	fmt.Println()
}

func outputFormats(m *manifest.Manifest) []string {
	set := map[string]bool{}
	for _, e := range m.Entries {
		set[e.Output.Format] = true
	}
	out := make([]string, 0, len(set))
	for f := range set {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

func truncKey(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return "..." + s[len(s)-max+3:]
}

// resolveManifestPath accepts a manifest file or a directory holding one.
func resolveManifestPath(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return filepath.Join(path, manifest.FileName), nil
	}
	return path, nil
}
