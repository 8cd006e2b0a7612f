package exiftool

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"media-indexer/internal/metrics"
)

// Result is a successful (or warning) extraction for one file.
type Result struct {
	// Record holds the raw key/value metadata emitted by the tool.
	Record map[string]any
	// Warning carries the tool's stderr when it exited with code 1.
	// Warnings are non-fatal: the file is still indexed.
	Warning string
}

// Error is a fatal extraction failure for one file. The run continues; the
// file retains whatever stored state it had before.
type Error struct {
	ExitCode int
	Stderr   string
	Stdout   string
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("exiftool: %v", e.Err)
	}
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		msg = "exiftool failed"
	}
	return fmt.Sprintf("exiftool exit %d: %s", e.ExitCode, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Extractor is the capability interface for metadata extraction. The scanner
// depends on this rather than on the exiftool binary directly, so tests can
// substitute a fake.
type Extractor interface {
	Extract(ctx context.Context, path string) (*Result, error)
}

// ErrNotFound is returned by Find when no exiftool binary can be located.
var ErrNotFound = errors.New("exiftool not found")

// Find locates the exiftool binary. An explicit path wins; otherwise $PATH
// is searched.
func Find(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	path, err := exec.LookPath("exiftool")
	if err != nil {
		return "", ErrNotFound
	}
	return path, nil
}

// Tool invokes the exiftool binary once per file.
type Tool struct {
	path string
}

// New creates a Tool for the given binary path.
func New(path string) *Tool {
	return &Tool{path: path}
}

// outputLimit caps captured stdout/stderr carried in errors.
const outputLimit = 8192

// Extract runs exiftool on one file and classifies the outcome.
//
// Exit 0 with parseable JSON is a success. Exit 1 with parseable JSON is a
// warning: the Result carries the tool's stderr but the file is still
// indexable. Any other exit code, unparseable output, or launch failure is
// returned as *Error.
func (t *Tool) Extract(ctx context.Context, path string) (*Result, error) {
	start := time.Now()
	res, err := t.run(ctx, path)
	metrics.ExtractorDuration.Observe(time.Since(start).Seconds())

	switch {
	case err != nil:
		metrics.ExtractorInvocations.WithLabelValues("error").Inc()
	case res.Warning != "":
		metrics.ExtractorInvocations.WithLabelValues("warning").Inc()
	default:
		metrics.ExtractorInvocations.WithLabelValues("ok").Inc()
	}
	return res, err
}

func (t *Tool) run(ctx context.Context, path string) (*Result, error) {
	cmd := exec.CommandContext(ctx, t.path, "-json", "-n", path)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			// Launch failure: binary missing, permission denied, context cancelled.
			return nil, &Error{ExitCode: -1, Err: err}
		}
		exitCode = exitErr.ExitCode()
	}

	if exitCode != 0 && exitCode != 1 {
		return nil, &Error{
			ExitCode: exitCode,
			Stderr:   truncate(stderr.String()),
			Stdout:   truncate(stdout.String()),
		}
	}

	var records []map[string]any
	if err := json.Unmarshal(stdout.Bytes(), &records); err != nil {
		return nil, &Error{
			ExitCode: exitCode,
			Stderr:   truncate(stderr.String()),
			Stdout:   truncate(stdout.String()),
			Err:      fmt.Errorf("invalid exiftool JSON: %w", err),
		}
	}
	if len(records) == 0 {
		return nil, &Error{
			ExitCode: exitCode,
			Stderr:   truncate(stderr.String()),
			Stdout:   truncate(stdout.String()),
			Err:      errors.New("empty exiftool JSON"),
		}
	}

	result := &Result{Record: records[0]}
	if exitCode == 1 {
		result.Warning = strings.TrimSpace(stderr.String())
		if result.Warning == "" {
			result.Warning = "exiftool exited with warnings"
		}
	}
	return result, nil
}

func truncate(s string) string {
	if len(s) <= outputLimit {
		return s
	}
	return s[:outputLimit]
}
