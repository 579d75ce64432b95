package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/AnyUserName/imgcore-cli/internal/codec"
	"github.com/AnyUserName/imgcore-cli/internal/hasher"
	"github.com/AnyUserName/imgcore-cli/internal/manifest"
	"github.com/AnyUserName/imgcore-cli/internal/pipeline"
)

var validateDeep bool

// losslessFormats decode back to exactly the planes that were encoded.
var losslessFormats = map[string]bool{"png": true, "bmp": true, "tiff": true}

var validateCmd = &cobra.Command{
	Use:   "validate <manifest_path>",
	Short: "Validate an imgcore manifest and check referenced outputs",
	Long: `Checks the manifest schema, that every output file exists with the
recorded size and content hash, and that the stats add up. With --deep
lossless outputs are decoded and their pixel digests compared as well.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&validateDeep, "deep", false, "decode outputs and verify pixel digests")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(_ *cobra.Command, args []string) error {
	manifestPath, err := resolveManifestPath(args[0])
	if err != nil {
		return err
	}
	m, err := manifest.Read(manifestPath)
	if err != nil {
		return fmt.Errorf("read manifest: %w", err)
	}

	baseDir := filepath.Join(filepath.Dir(manifestPath), m.BasePath)
	errs := validateManifest(m, baseDir, validateDeep)

	if len(errs) == 0 {
		fmt.Println("  ✓ Manifest is valid")
		fmt.Printf("  ✓ %d entries, all outputs present\n", m.Stats.TotalEntries)
		return nil
	}

	fmt.Printf("  ✗ Manifest has %d error(s):\n", len(errs))
	for _, e := range errs {
		fmt.Printf("    • %s\n", e)
	}
	return fmt.Errorf("validation failed with %d errors", len(errs))
}

func validateManifest(m *manifest.Manifest, baseDir string, deep bool) []string {
	var errs []string

	if _, err := uuid.Parse(m.RunID); err != nil {
		errs = append(errs, fmt.Sprintf("invalid run_id %q", m.RunID))
	}
	if _, err := pipeline.Lookup(m.Operation); err != nil {
		errs = append(errs, err.Error())
	}

	seenPaths := map[string]string{}
	for key, e := range m.Entries {
		if e.Input.Width <= 0 || e.Input.Height <= 0 {
			errs = append(errs, fmt.Sprintf("entry %q: invalid input dimensions %dx%d",
				key, e.Input.Width, e.Input.Height))
		}
		if e.Input.Planes <= 0 {
			errs = append(errs, fmt.Sprintf("entry %q: invalid plane count %d", key, e.Input.Planes))
		}

		out := e.Output
		if out.Format == "" {
			errs = append(errs, fmt.Sprintf("entry %q: empty output format", key))
		}
		if out.Hash == "" {
			errs = append(errs, fmt.Sprintf("entry %q: missing hash", key))
		}
		if out.Path == "" {
			errs = append(errs, fmt.Sprintf("entry %q: missing output path", key))
			continue
		}
		if other, dup := seenPaths[out.Path]; dup {
			errs = append(errs, fmt.Sprintf("entry %q: output path %q also used by %q", key, out.Path, other))
		}
		seenPaths[out.Path] = key

		fullPath := filepath.Join(baseDir, filepath.FromSlash(out.Path))
		errs = append(errs, checkOutputFile(key, fullPath, out, deep)...)
	}

	// Verify stats consistency.
	var in, outBytes int64
	for _, e := range m.Entries {
		in += e.Input.Size
		outBytes += e.Output.Size
	}
	if m.Stats.TotalEntries != len(m.Entries) {
		errs = append(errs, fmt.Sprintf("stats.total_entries mismatch: %d != %d", m.Stats.TotalEntries, len(m.Entries)))
	}
	if m.Stats.TotalInputBytes != in {
		errs = append(errs, fmt.Sprintf("stats.total_input_bytes mismatch: %d != %d", m.Stats.TotalInputBytes, in))
	}
	if m.Stats.TotalOutputBytes != outBytes {
		errs = append(errs, fmt.Sprintf("stats.total_output_bytes mismatch: %d != %d", m.Stats.TotalOutputBytes, outBytes))
	}
	return errs
}

func checkOutputFile(key, path string, out manifest.OutputInfo, deep bool) []string {
	f, err := os.Open(path)
	if err != nil {
		return []string{fmt.Sprintf("entry %q: file not found: %s", key, out.Path)}
	}
	defer f.Close()

	var errs []string
	if info, err := f.Stat(); err == nil && info.Size() != out.Size {
		errs = append(errs, fmt.Sprintf("entry %q: size mismatch: manifest=%d, disk=%d", key, out.Size, info.Size()))
	}
	sum, err := hasher.ContentHashReader(f, len(out.Hash))
	if err != nil {
		return append(errs, fmt.Sprintf("entry %q: hash %s: %v", key, out.Path, err))
	}
	if sum != out.Hash {
		errs = append(errs, fmt.Sprintf("entry %q: hash mismatch: manifest=%s, disk=%s", key, out.Hash, sum))
	}

	if deep && losslessFormats[out.Format] {
		img, err := codec.Decode(path)
		if err != nil {
			return append(errs, fmt.Sprintf("entry %q: %v", key, err))
		}
		if d := hasher.PlaneDigest(img, len(out.Digest)); d != out.Digest {
			errs = append(errs, fmt.Sprintf("entry %q: pixel digest mismatch: manifest=%s, decoded=%s", key, out.Digest, d))
		}
	}
	return errs
}
