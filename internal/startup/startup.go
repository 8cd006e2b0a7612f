package startup

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"media-indexer/internal/hashing"
	"media-indexer/internal/logging"
	"media-indexer/internal/mediatypes"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Config holds all application configuration
type Config struct {
	ScanDir     string
	StoredBase  string
	DatabaseDir string

	IncludeVideos    bool
	IncludeDocs      bool
	IncludeAudio     bool
	VideoTags        bool
	DenylistPath     string
	HashMode         hashing.Mode
	MimeMode         mediatypes.MimeMode
	DryRun           bool
	ChangedOnly      bool
	IncludeRootFiles bool
	ErrorLogPath     string
	ExiftoolPath     string
	Workers          int

	MetricsPort    string
	MetricsEnabled bool

	// Derived paths
	DatabasePath string
}

// LoadConfig loads and validates configuration from environment variables
func LoadConfig() (*Config, error) {
	printBanner()
	logSystemInfo()

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")

	scanDir := getEnv("SCAN_DIR", "/media")
	storedBase := getEnv("STORED_BASE", "")
	databaseDir := getEnv("DATABASE_DIR", "/database")
	metricsPort := getEnv("METRICS_PORT", "9090")
	metricsEnabled := getEnvBool("METRICS_ENABLED", true)

	includeVideos := getEnvBool("INCLUDE_VIDEOS", true)
	includeDocs := getEnvBool("INCLUDE_DOCS", false)
	includeAudio := getEnvBool("INCLUDE_AUDIO", false)

	// Legacy alias: IMAGES_ONLY=true overrides the individual toggles. The
	// translation happens here so the engine only ever sees one shape.
	if getEnvBool("IMAGES_ONLY", false) {
		includeVideos = false
		includeDocs = false
		includeAudio = false
		logging.Info("  IMAGES_ONLY=true, video/doc/audio toggles overridden")
	}

	videoTags := getEnvBool("VIDEO_TAGS", false)
	denylistPath := getEnv("VIDEO_TAG_DENYLIST", "")
	dryRun := getEnvBool("DRY_RUN", false)
	changedOnly := getEnvBool("CHANGED_ONLY", true)
	includeRootFiles := getEnvBool("INCLUDE_ROOT_FILES", false)
	errorLogPath := getEnv("ERRORS_LOG", "")
	exiftoolPath := getEnv("EXIFTOOL_PATH", "")
	workers := getEnvInt("SCAN_WORKERS", 0)

	hashMode, ok := hashing.ParseMode(getEnv("HASH_MODE", "quick"))
	if !ok {
		return nil, fmt.Errorf("invalid HASH_MODE %q (want none, quick, or sha256)", os.Getenv("HASH_MODE"))
	}
	mimeMode, ok := mediatypes.ParseMimeMode(getEnv("MIME_MODE", "ext"))
	if !ok {
		return nil, fmt.Errorf("invalid MIME_MODE %q (want ext, magic, or filecmd)", os.Getenv("MIME_MODE"))
	}

	logging.Info("  SCAN_DIR:            %s", scanDir)
	logging.Info("  STORED_BASE:         %s", defaultString(storedBase, "(same as SCAN_DIR)"))
	logging.Info("  DATABASE_DIR:        %s", databaseDir)
	logging.Info("  INCLUDE_VIDEOS:      %v", includeVideos)
	logging.Info("  INCLUDE_DOCS:        %v", includeDocs)
	logging.Info("  INCLUDE_AUDIO:       %v", includeAudio)
	logging.Info("  VIDEO_TAGS:          %v", videoTags)
	logging.Info("  VIDEO_TAG_DENYLIST:  %s", defaultString(denylistPath, "(none)"))
	logging.Info("  HASH_MODE:           %s", hashMode)
	logging.Info("  MIME_MODE:           %s", mimeMode)
	logging.Info("  DRY_RUN:             %v", dryRun)
	logging.Info("  CHANGED_ONLY:        %v", changedOnly)
	logging.Info("  INCLUDE_ROOT_FILES:  %v", includeRootFiles)
	logging.Info("  ERRORS_LOG:          %s", defaultString(errorLogPath, "(disabled)"))
	logging.Info("  METRICS_PORT:        %s", metricsPort)
	logging.Info("  METRICS_ENABLED:     %v", metricsEnabled)
	logging.Info("  LOG_LEVEL:           %s", logging.GetLevel())

	// Resolve paths
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DIRECTORY SETUP")
	logging.Info("------------------------------------------------------------")

	scanDir, err := filepath.Abs(scanDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve scan directory path: %w", err)
	}
	logging.Info("  Scan directory (absolute): %s", scanDir)

	databaseDir, err = filepath.Abs(databaseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database directory path: %w", err)
	}
	logging.Info("  Database directory (absolute): %s", databaseDir)

	info, err := os.Stat(scanDir)
	if err != nil {
		return nil, fmt.Errorf("scan directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan directory %s is not a directory", scanDir)
	}

	// The database directory must exist and be writable.
	if err := ensureDirectory(databaseDir, "database"); err != nil {
		return nil, fmt.Errorf("database directory error: %w", err)
	}
	logging.Debug("  Testing database directory write access...")
	if err := testWriteAccess(databaseDir); err != nil {
		return nil, fmt.Errorf("database directory is not writable: %w", err)
	}
	logging.Info("  [OK] Database directory is writable")

	config := &Config{
		ScanDir:          scanDir,
		StoredBase:       storedBase,
		DatabaseDir:      databaseDir,
		IncludeVideos:    includeVideos,
		IncludeDocs:      includeDocs,
		IncludeAudio:     includeAudio,
		VideoTags:        videoTags,
		DenylistPath:     denylistPath,
		HashMode:         hashMode,
		MimeMode:         mimeMode,
		DryRun:           dryRun,
		ChangedOnly:      changedOnly,
		IncludeRootFiles: includeRootFiles,
		ErrorLogPath:     errorLogPath,
		ExiftoolPath:     exiftoolPath,
		Workers:          workers,
		MetricsPort:      metricsPort,
		MetricsEnabled:   metricsEnabled,
		DatabasePath:     filepath.Join(databaseDir, "index.db"),
	}

	return config, nil
}

// LogDatabaseInit logs database initialization
func LogDatabaseInit(duration time.Duration) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DATABASE INITIALIZATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  [OK] Database initialized in %v", duration)
}

// LogExtractorInit logs extractor discovery and verifies the binary runs.
func LogExtractorInit(path string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("EXTRACTOR INITIALIZATION")
	logging.Info("------------------------------------------------------------")

	if err := checkExiftool(path); err != nil {
		logging.Warn("  Exiftool check failed: %v", err)
		logging.Warn("  Metadata extraction may not work correctly")
	} else {
		logging.Info("  [OK] Exiftool is available at %s", path)
	}
}

// LogScanStart logs the beginning of a scan run.
func LogScanStart() {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SCAN")
	logging.Info("------------------------------------------------------------")
}

// LogShutdownInitiated logs shutdown start
func LogShutdownInitiated(signal string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SHUTDOWN INITIATED (received %s)", signal)
	logging.Info("------------------------------------------------------------")
}

// LogShutdownStep logs a shutdown step
func LogShutdownStep(step string) {
	logging.Debug("  %s...", step)
}

// LogShutdownStepComplete logs a completed shutdown step
func LogShutdownStepComplete(step string) {
	logging.Info("  [OK] %s", step)
}

// LogShutdownComplete logs shutdown completion
func LogShutdownComplete() {
	logging.Info("  [OK] Shutdown complete")
}

// LogFatal logs a fatal error and exits
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}

// Helper functions

func printBanner() {
	banner := `
------------------------------------------------------------
    __  ___         ___         ____          __
   /  |/  /__  ____/ (_)___ _  /  _/___  ____/ /__ _  _____ ____
  / /|_/ / _ \/ __  / / __ '/  / // __ \/ __  / _ \ \/ / _ \ __|
 / /  / /  __/ /_/ / / /_/ / _/ // / / / /_/ /  __/>  </  __/ |
/_/  /_/\___/\__,_/_/\__,_/ /___/_/ /_/\__,_/\___/_/\_\\___/|_|

------------------------------------------------------------`
	fmt.Println(banner)
	logging.Info("  Version:    %s", Version)
	logging.Info("  Commit:     %s", Commit)
	logging.Info("  Build Time: %s", BuildTime)
	logging.Info("  Started:    %s", time.Now().Format(time.RFC1123))
	logging.Info("")
}

func logSystemInfo() {
	logging.Info("------------------------------------------------------------")
	logging.Info("SYSTEM INFORMATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Go version:      %s", runtime.Version())
	logging.Info("  OS/Arch:         %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs available:  %d", runtime.NumCPU())
	logging.Info("  GOMAXPROCS:      %d", runtime.GOMAXPROCS(0))

	if runtime.GOMAXPROCS(0) < runtime.NumCPU() {
		logging.Info("  (Container CPU limit detected)")
	}

	if logging.IsDebugEnabled() {
		logging.Debug("  Goroutines:      %d", runtime.NumGoroutine())

		if wd, err := os.Getwd(); err == nil {
			logging.Debug("  Working dir:     %s", wd)
		}

		if hostname, err := os.Hostname(); err == nil {
			logging.Debug("  Hostname:        %s", hostname)
		}
	}

	logging.Info("")
}

func ensureDirectory(path, name string) error {
	logging.Debug("  Checking %s directory: %s", name, path)

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		logging.Debug("    Directory does not exist, creating...")
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
		logging.Debug("    [OK] Created directory: %s", path)
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to stat directory: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("path exists but is not a directory")
	}

	logging.Debug("    [OK] Directory exists")
	return nil
}

func testWriteAccess(dir string) error {
	testFile := filepath.Join(dir, ".write-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
		return err
	}
	if err := os.Remove(testFile); err != nil {
		logging.Warn("failed to remove write test file %s: %v", testFile, err)
		// Don't return error since write access was confirmed
	}
	return nil
}

func checkExiftool(path string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, path, "-ver")
	output, err := cmd.Output()
	if err != nil {
		return fmt.Errorf("failed to get exiftool version: %w", err)
	}
	logging.Debug("  Exiftool version: %s", strings.TrimSpace(string(output)))
	return nil
}

func defaultString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logging.Warn("Invalid boolean value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		logging.Warn("Invalid integer value for %s: %q, using default: %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}
