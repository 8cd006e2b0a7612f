package logging

import (
	"bytes"
	"log"
	"os"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name     string
		debug    string
		level    string
		expected LogLevel
	}{
		{"default", "", "", LevelInfo},
		{"debug level", "", "debug", LevelDebug},
		{"info level", "", "info", LevelInfo},
		{"warn level", "", "warn", LevelWarn},
		{"warning alias", "", "warning", LevelWarn},
		{"error level", "", "error", LevelError},
		{"case insensitive", "", "DEBUG", LevelDebug},
		{"unrecognized falls back to info", "", "verbose", LevelInfo},
		{"DEBUG=true", "true", "", LevelDebug},
		{"DEBUG=1", "1", "", LevelDebug},
		{"DEBUG=on", "on", "", LevelDebug},
		{"DEBUG wins over LOG_LEVEL", "yes", "error", LevelDebug},
		{"falsy DEBUG defers to LOG_LEVEL", "0", "warn", LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseLevel(tt.debug, tt.level); got != tt.expected {
				t.Errorf("parseLevel(%q, %q) = %v, want %v", tt.debug, tt.level, got, tt.expected)
			}
		})
	}
}

// setLevel forces the process level for one test, bypassing the
// resolve-once environment lookup.
func setLevel(t *testing.T, l LogLevel) {
	t.Helper()
	GetLevel()
	old := processLevel
	processLevel = l
	t.Cleanup(func() { processLevel = old })
}

func capture(t *testing.T, fn func()) string {
	t.Helper()
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })
	fn()
	return buf.String()
}

func TestThresholds(t *testing.T) {
	tests := []struct {
		name     string
		level    LogLevel
		emitted  []string
		suppress []string
	}{
		{
			name:    "debug emits everything",
			level:   LevelDebug,
			emitted: []string{"[DEBUG]", "[INFO]", "[WARN]", "[ERROR]"},
		},
		{
			name:     "info drops debug",
			level:    LevelInfo,
			emitted:  []string{"[INFO]", "[WARN]", "[ERROR]"},
			suppress: []string{"[DEBUG]"},
		},
		{
			name:     "warn drops info",
			level:    LevelWarn,
			emitted:  []string{"[WARN]", "[ERROR]"},
			suppress: []string{"[DEBUG]", "[INFO]"},
		},
		{
			name:     "error drops warnings",
			level:    LevelError,
			emitted:  []string{"[ERROR]"},
			suppress: []string{"[DEBUG]", "[INFO]", "[WARN]"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setLevel(t, tt.level)
			out := capture(t, func() {
				Debug("scanned %s", "a.jpg")
				Info("scanned %s", "a.jpg")
				Warn("scanned %s", "a.jpg")
				Error("scanned %s", "a.jpg")
			})
			for _, prefix := range tt.emitted {
				if !strings.Contains(out, prefix) {
					t.Errorf("output missing %s at level %v:\n%s", prefix, tt.level, out)
				}
			}
			for _, prefix := range tt.suppress {
				if strings.Contains(out, prefix) {
					t.Errorf("output contains suppressed %s at level %v:\n%s", prefix, tt.level, out)
				}
			}
		})
	}
}

func TestMessageFormatting(t *testing.T) {
	setLevel(t, LevelInfo)
	out := capture(t, func() {
		Info("indexed %d files in %s", 42, "2020/trip")
	})
	if !strings.Contains(out, "[INFO] indexed 42 files in 2020/trip") {
		t.Errorf("formatted output = %q", out)
	}
}

func TestIsDebugEnabled(t *testing.T) {
	setLevel(t, LevelDebug)
	if !IsDebugEnabled() {
		t.Error("IsDebugEnabled() = false at debug level")
	}
	setLevel(t, LevelInfo)
	if IsDebugEnabled() {
		t.Error("IsDebugEnabled() = true at info level")
	}
}

func TestLogLevelString(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LevelDebug, "debug"},
		{LevelInfo, "info"},
		{LevelWarn, "warn"},
		{LevelError, "error"},
		{LogLevel(99), "unknown(99)"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.expected {
			t.Errorf("LogLevel(%d).String() = %q, want %q", tt.level, got, tt.expected)
		}
	}
}

// Every level's name parses back to itself, so LOG_LEVEL can be set from a
// logged level verbatim.
func TestLevelNamesParse(t *testing.T) {
	for _, l := range []LogLevel{LevelDebug, LevelInfo, LevelWarn, LevelError} {
		if got := parseLevel("", l.String()); got != l {
			t.Errorf("parseLevel(%q) = %v, want %v", l.String(), got, l)
		}
	}
}
