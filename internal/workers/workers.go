package workers

import (
	"os"
	"runtime"
	"strconv"
)

// ioMultiplier sizes I/O-bound pools at twice the available CPUs: extractor
// subprocesses and file reads spend most of their time waiting, so extra
// workers keep the pipeline full without oversubscribing compute.
const ioMultiplier = 2

// ForIO returns the worker count for the scan engine's I/O-bound stages
// (metadata extraction, hashing). The count scales with GOMAXPROCS, which
// tracks container CPU limits, and is never less than 1. A positive limit
// caps the result. SCAN_WORKERS overrides the computed count, still subject
// to the cap.
func ForIO(limit int) int {
	if n, ok := override(); ok {
		return clamp(n, limit)
	}
	return clamp(runtime.GOMAXPROCS(0)*ioMultiplier, limit)
}

// override reads the SCAN_WORKERS environment variable. Non-numeric and
// non-positive values are ignored rather than erroring: a bad override must
// not stop a scan.
func override() (int, bool) {
	raw := os.Getenv("SCAN_WORKERS")
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func clamp(n, limit int) int {
	if n < 1 {
		n = 1
	}
	if limit > 0 && n > limit {
		n = limit
	}
	return n
}
