package tags

import (
	"strings"
	"time"
)

// Capture-timestamp provenance labels stored in files.taken_src.
const (
	SrcNone          = "none"
	SrcMtimeFallback = "mtime_fallback"
)

// takenPriority is the fixed source order for capture-timestamp derivation.
// The first source yielding a parseable timestamp wins.
var takenPriority = []struct {
	key   string
	label string
}{
	{"SubSecDateTimeOriginal", "SubSecDateTimeOriginal"},
	{"DateTimeOriginal", "DateTimeOriginal"},
	{"CreateDate", "CreateDate"},
	{"XMP:CreateDate", "XMP_CreateDate"},
	{"XMP:DateCreated", "XMP_DateCreated"},
}

// TakenTime derives the capture timestamp and its provenance for a file.
// Metadata sources are tried in priority order, then the filesystem mtime.
// A zero mtime with no metadata source yields (0, SrcNone): value and
// provenance are always set together.
func TakenTime(record map[string]any, mtime int64) (int64, string) {
	for _, src := range takenPriority {
		value := getAny(record, src.key)
		if value == nil {
			continue
		}
		if ts, ok := parseExifDatetime(value); ok {
			return ts, src.label
		}
	}
	if mtime != 0 {
		return mtime, SrcMtimeFallback
	}
	return 0, SrcNone
}

// getAny looks a key up case-insensitively, preferring an exact match.
func getAny(record map[string]any, key string) any {
	if v, ok := record[key]; ok {
		return v
	}
	lower := strings.ToLower(key)
	for actual, v := range record {
		if strings.ToLower(actual) == lower {
			return v
		}
	}
	return nil
}

// exifLayouts are the datetime shapes exiftool emits, with and without
// sub-seconds and zone offsets. Colon-separated dates come first; they are
// exiftool's native form.
var exifLayouts = []string{
	"2006:01:02 15:04:05",
	"2006-01-02 15:04:05",
	"2006:01:02 15:04:05-07:00",
	"2006-01-02 15:04:05-07:00",
	"2006:01:02 15:04:05Z07:00",
	"2006:01:02 15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006:01:02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999-07:00",
	time.RFC3339,
	time.RFC3339Nano,
}

func parseExifDatetime(value any) (int64, bool) {
	switch val := value.(type) {
	case float64:
		// exiftool -n can emit numeric epoch values directly.
		return int64(val), true
	case []any:
		for _, item := range val {
			if ts, ok := parseExifDatetime(item); ok {
				return ts, true
			}
		}
		return 0, false
	case string:
		text := strings.TrimSpace(val)
		if text == "" {
			return 0, false
		}
		for _, layout := range exifLayouts {
			if t, err := time.Parse(layout, text); err == nil {
				return t.UTC().Unix(), true
			}
		}
		return 0, false
	default:
		return 0, false
	}
}
