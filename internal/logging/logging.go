package logging

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
)

// LogLevel orders message severities. A message is emitted when its level is
// at or above the process level.
type LogLevel int

const (
	// LevelDebug carries per-file detail: change-detector verdicts,
	// extractor warnings, worker pool activity.
	LevelDebug LogLevel = iota
	// LevelInfo is the default: run lifecycle, per-directory progress,
	// the scan report.
	LevelInfo
	// LevelWarn covers recoverable scan conditions: unreadable entries,
	// per-file failures that the run absorbs.
	LevelWarn
	// LevelError covers conditions that fail a directory or the run.
	LevelError
)

var (
	processLevel LogLevel
	levelOnce    sync.Once
)

// parseLevel resolves the level from the DEBUG and LOG_LEVEL environment
// values. A truthy DEBUG wins over LOG_LEVEL; anything unrecognized falls
// back to info so a misconfigured scan is never silent.
func parseLevel(debug, level string) LogLevel {
	switch strings.ToLower(debug) {
	case "1", "true", "yes", "on":
		return LevelDebug
	}
	switch strings.ToLower(level) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// GetLevel returns the level the process runs at, resolved once from the
// environment on first use.
func GetLevel() LogLevel {
	levelOnce.Do(func() {
		processLevel = parseLevel(os.Getenv("DEBUG"), os.Getenv("LOG_LEVEL"))
	})
	return processLevel
}

// IsDebugEnabled reports whether per-file debug output is on, so callers
// can skip formatting work for messages that would be dropped.
func IsDebugEnabled() bool {
	return GetLevel() <= LevelDebug
}

// Debug logs a debug message.
func Debug(format string, args ...interface{}) {
	if GetLevel() <= LevelDebug {
		log.Printf("[DEBUG] "+format, args...)
	}
}

// Info logs an info message.
func Info(format string, args ...interface{}) {
	if GetLevel() <= LevelInfo {
		log.Printf("[INFO] "+format, args...)
	}
}

// Warn logs a warning message.
func Warn(format string, args ...interface{}) {
	if GetLevel() <= LevelWarn {
		log.Printf("[WARN] "+format, args...)
	}
}

// Error logs an error message.
func Error(format string, args ...interface{}) {
	if GetLevel() <= LevelError {
		log.Printf("[ERROR] "+format, args...)
	}
}

// Fatal logs an error message and exits. Reserved for unusable
// configuration at startup; a running scan reports failures through its
// error taxonomy instead.
func Fatal(format string, args ...interface{}) {
	log.Fatalf("[FATAL] "+format, args...)
}

// String returns the level name as accepted by LOG_LEVEL.
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return fmt.Sprintf("unknown(%d)", l)
	}
}
