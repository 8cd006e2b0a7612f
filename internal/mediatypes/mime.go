package mediatypes

import (
	"context"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

// FallbackMimeType is stored when no resolution strategy produces a value.
// MIME resolution never blocks indexing; it degrades to this instead.
const FallbackMimeType = "application/octet-stream"

// MimeMode selects how MIME values are resolved for indexed files.
type MimeMode string

const (
	// MimeModeExt resolves MIME values from the static extension table. No I/O.
	MimeModeExt MimeMode = "ext"
	// MimeModeMagic sniffs content signatures from a bounded file prefix.
	MimeModeMagic MimeMode = "magic"
	// MimeModeFilecmd delegates to the file(1) utility.
	MimeModeFilecmd MimeMode = "filecmd"
)

// filecmdTimeout bounds a single file(1) invocation.
const filecmdTimeout = 10 * time.Second

// ParseMimeMode validates a MIME mode string, defaulting empty to MimeModeExt.
func ParseMimeMode(s string) (MimeMode, bool) {
	switch MimeMode(strings.ToLower(s)) {
	case MimeModeExt, "":
		return MimeModeExt, true
	case MimeModeMagic:
		return MimeModeMagic, true
	case MimeModeFilecmd:
		return MimeModeFilecmd, true
	}
	return "", false
}

// ResolveMime resolves the MIME value for a file using the given mode.
// It never returns an error: any failure degrades to FallbackMimeType.
func ResolveMime(path string, mode MimeMode) string {
	switch mode {
	case MimeModeMagic:
		// mimetype reads a bounded prefix of the file.
		mt, err := mimetype.DetectFile(path)
		if err != nil {
			return FallbackMimeType
		}
		return mt.String()
	case MimeModeFilecmd:
		return fileCommandMime(path)
	default:
		return GetMimeType(strings.ToLower(filepath.Ext(path)))
	}
}

// fileCommandMime shells out to file(1) for a content-based MIME value.
func fileCommandMime(path string) string {
	ctx, cancel := context.WithTimeout(context.Background(), filecmdTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, "file", "--mime-type", "-b", path).Output()
	if err != nil {
		return FallbackMimeType
	}
	mime := strings.TrimSpace(string(out))
	if mime == "" {
		return FallbackMimeType
	}
	return mime
}
