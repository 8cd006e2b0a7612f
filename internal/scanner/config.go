package scanner

import (
	"fmt"
	"os"

	"media-indexer/internal/hashing"
	"media-indexer/internal/mediatypes"
)

// Config is the normalized configuration bundle a scan runs with. All toggle
// sources (CLI flags, env vars, the legacy images-only alias) are resolved
// into this struct before the scanner ever sees them.
type Config struct {
	// ScanPath is the filesystem directory to walk.
	ScanPath string

	// StoredBase is the path recorded in the database for the scan root.
	// Empty means record paths under ScanPath itself.
	StoredBase string

	// IndexerVersion is persisted into run metadata for later audit.
	IndexerVersion string

	// Media kind inclusion. Images are always included.
	IncludeVideos bool
	IncludeDocs   bool
	IncludeAudio  bool

	// VideoTags enables metadata extraction for video files. When false,
	// video files are still indexed (size, hash, kind, mtime) but the
	// extractor is never invoked for them.
	VideoTags bool

	// DenylistPath names an optional file of metadata keys, one per line,
	// dropped from video-derived tags.
	DenylistPath string

	HashMode hashing.Mode
	MimeMode mediatypes.MimeMode

	// DryRun walks and classifies but writes nothing.
	DryRun bool

	// ChangedOnly skips re-extraction for files whose size and mtime match
	// the stored record. Disabled forces full re-extraction of every file.
	ChangedOnly bool

	// IncludeRootFiles indexes files directly under ScanPath. By default
	// only files inside subdirectories are indexed.
	IncludeRootFiles bool

	// ErrorLogPath names an optional JSONL sink receiving one record per
	// per-file failure.
	ErrorLogPath string

	// Workers bounds concurrent extractor invocations. Zero selects a
	// GOMAXPROCS-based default.
	Workers int

	// Progress, when set, is invoked after each directory commits.
	Progress func(dir string, filesDone int)

	// FileProgress, when set, is invoked per processed file with its
	// outcome (new, changed, unchanged, skipped, error).
	FileProgress func(path, outcome string)
}

// Validate checks the parts of the configuration the scanner cannot degrade
// gracefully on.
func (c *Config) Validate() error {
	if c.ScanPath == "" {
		return fmt.Errorf("scan path is required")
	}
	info, err := os.Stat(c.ScanPath)
	if err != nil {
		return fmt.Errorf("scan path: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("scan path %s is not a directory", c.ScanPath)
	}
	if c.DenylistPath != "" && !c.VideoTags {
		// Denylist only applies to video-derived tags; a denylist without
		// video tags is almost certainly a misconfiguration.
		return fmt.Errorf("video tag denylist configured but video tags disabled")
	}
	return nil
}
