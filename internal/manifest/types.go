package manifest

// Manifest is the top-level output of an imgcore batch run.
type Manifest struct {
	Version     int              `json:"version"`
	RunID       string           `json:"run_id"`
	GeneratedAt string           `json:"generated_at"`
	Operation   string           `json:"operation"`
	Profile     string           `json:"profile"`
	BasePath    string           `json:"base_path"`
	Params      Params           `json:"params"`
	RunInfo     *RunInfo         `json:"run_info,omitempty"`
	Entries     map[string]Entry `json:"entries"`
	Stats       Stats            `json:"stats"`
}

// Params records the operation parameters the run used.
type Params struct {
	ClipLimit   float64 `json:"clip_limit,omitempty"`
	TileSize    int     `json:"tile_size,omitempty"`
	Superpixels int     `json:"superpixels,omitempty"`
	Compactness float64 `json:"compactness,omitempty"`
	Contours    bool    `json:"contours,omitempty"`
	Format      string  `json:"format,omitempty"`
	Quality     int     `json:"quality,omitempty"`
}

// RunInfo captures run-time parameters for diagnostics.
type RunInfo struct {
	Workers    int   `json:"workers"`
	DurationMS int64 `json:"duration_ms"`
}

// Entry describes one processed source image and its output.
type Entry struct {
	Input      InputInfo  `json:"input"`
	Output     OutputInfo `json:"output"`
	DurationMS int64      `json:"duration_ms"`
}

// InputInfo holds facts about the decoded source image.
type InputInfo struct {
	Path     string `json:"path"`
	Format   string `json:"format"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Planes   int    `json:"planes"`
	Size     int64  `json:"size"`
	HasAlpha bool   `json:"has_alpha"`
	Digest   string `json:"digest"` // xxhash64 of the decoded planes
}

// OutputInfo describes the written result file.
type OutputInfo struct {
	Format string `json:"format"`
	Size   int64  `json:"size"`   // bytes on disk
	Hash   string `json:"hash"`   // first 16 hex chars of xxhash64 of the file
	Digest string `json:"digest"` // xxhash64 of the result planes
	Path   string `json:"path"`   // relative to base_path
}

// Stats aggregates run metrics.
type Stats struct {
	TotalInputBytes  int64 `json:"total_input_bytes"`
	TotalOutputBytes int64 `json:"total_output_bytes"`
	TotalEntries     int   `json:"total_entries"`
	Failed           int   `json:"failed,omitempty"`
	Cancelled        int   `json:"cancelled,omitempty"`
}

// SupportedManifestVersion is the current schema version.
const SupportedManifestVersion = 1

// FileName is the manifest file written next to batch outputs.
const FileName = "imgcore.manifest.json"
