// Package startup handles application initialization, configuration loading,
// and startup/shutdown logging.
//
// This package centralizes all application configuration and provides consistent
// logging throughout the application lifecycle.
//
// # Configuration
//
// All configuration is loaded from environment variables via [LoadConfig].
// The following environment variables are supported:
//
//   - SCAN_DIR: Path to the media tree to scan (default: /media)
//   - STORED_BASE: Path recorded in the database for the scan root (default: same as SCAN_DIR)
//   - DATABASE_DIR: Path to database directory (default: /database)
//   - INCLUDE_VIDEOS: Index video files (default: true)
//   - INCLUDE_DOCS: Index document files (default: false)
//   - INCLUDE_AUDIO: Index audio files (default: false)
//   - IMAGES_ONLY: Legacy alias; true overrides the three toggles above to false
//   - VIDEO_TAGS: Extract metadata tags for video files (default: false)
//   - VIDEO_TAG_DENYLIST: Path to a file of tag keys dropped from video metadata
//   - HASH_MODE: Content hash mode - none, quick, sha256 (default: quick)
//   - MIME_MODE: MIME resolution - ext, magic, filecmd (default: ext)
//   - DRY_RUN: Walk and classify without writing (default: false)
//   - CHANGED_ONLY: Skip re-extraction for unchanged files (default: true)
//   - INCLUDE_ROOT_FILES: Index files directly under SCAN_DIR (default: false)
//   - ERRORS_LOG: Path to a JSONL per-file error sink (default: disabled)
//   - EXIFTOOL_PATH: Explicit path to the exiftool binary (default: search $PATH)
//   - SCAN_WORKERS: Bound on concurrent extractor subprocesses (default: automatic)
//   - METRICS_PORT: Prometheus metrics server port (default: 9090)
//   - METRICS_ENABLED: Enable or disable metrics server (default: true)
//   - LOG_LEVEL: Logging level - debug, info, warn, error (default: info)
//
// # Directory Setup
//
// The package validates required directories:
//   - Database directory: Required, created if missing, must be writable
//   - Scan directory: Checked but not created (should be mounted)
//
// # Build Information
//
// Build-time variables are injected via ldflags and logged in the startup
// banner:
//   - Version: Application version
//   - Commit: Git commit hash
//   - BuildTime: Build timestamp
//
// # Example Usage
//
//	config, err := startup.LoadConfig()
//	if err != nil {
//	    startup.LogFatal("Configuration error: %v", err)
//	}
//
//	// Initialize components...
//	startup.LogDatabaseInit(dbInitDuration)
//	startup.LogExtractorInit(exiftoolPath)
//
//	// On shutdown...
//	startup.LogShutdownInitiated("SIGTERM")
//	// ... cleanup ...
//	startup.LogShutdownComplete()
package startup
