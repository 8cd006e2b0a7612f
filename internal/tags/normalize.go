package tags

import (
	"regexp"
	"strconv"
	"strings"
)

// Tag is one canonical (key, value) metadata pair for a file.
type Tag struct {
	Key   string
	Value string
}

var spaceRE = regexp.MustCompile(`\s+`)

// Normalize collapses runs of whitespace and trims the ends.
func Normalize(s string) string {
	return spaceRE.ReplaceAllString(strings.TrimSpace(s), " ")
}

// excludedKeys are metadata fields that duplicate filesystem state already
// stored in file columns, or exiftool bookkeeping. They never become tags.
var excludedKeys = map[string]bool{
	"SourceFile":          true,
	"ExifToolVersion":     true,
	"FileName":            true,
	"Directory":           true,
	"FileSize":            true,
	"FileModifyDate":      true,
	"FileAccessDate":      true,
	"FileInodeChangeDate": true,
	"FilePermissions":     true,
	"FileType":            true,
	"FileTypeExtension":   true,
	"MIMEType":            true,
}

// hierarchicalKeys hold pipe-delimited subject hierarchies whose parts are
// additionally surfaced as Category and Person tags.
var hierarchicalKeys = map[string]bool{
	"HierarchicalSubject": true,
}

// Parse converts one raw extracted metadata record into canonical tags.
//
// Keys are whitespace-normalized; the extractor already emits them in
// canonical casing, which is preserved so that denylist entries match
// exactly. Multi-value fields produce one tag per value, values are
// whitespace-normalized, and empty values are dropped. Duplicate (key,
// value) pairs collapse to one tag.
func Parse(record map[string]any) []Tag {
	var out []Tag
	seen := make(map[Tag]bool)

	add := func(key, value string) {
		value = Normalize(value)
		if value == "" {
			return
		}
		t := Tag{Key: key, Value: value}
		if seen[t] {
			return
		}
		seen[t] = true
		out = append(out, t)
	}

	for rawKey, rawValue := range record {
		key := Normalize(rawKey)
		if key == "" || excludedKeys[key] || excludedKeys[stripGroup(key)] {
			continue
		}

		values := valueStrings(rawValue)
		if hierarchicalKeys[stripGroup(key)] {
			values = splitHierarchical(values)
		}

		for _, v := range values {
			add(key, v)
			if hierarchicalKeys[stripGroup(key)] {
				if category, person := splitCategoryPerson(v); category != "" || person != "" {
					if category != "" {
						add("Category", category)
					}
					if person != "" {
						add("Person", person)
					}
				}
			}
		}
	}

	return out
}

// stripGroup removes an exiftool group prefix ("XMP-lr:HierarchicalSubject"
// -> "HierarchicalSubject").
func stripGroup(key string) string {
	if i := strings.LastIndex(key, ":"); i >= 0 {
		return key[i+1:]
	}
	return key
}

// valueStrings renders a raw JSON value as zero or more strings.
// Arrays fan out one string per element; null produces nothing.
func valueStrings(v any) []string {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		if val == "" {
			return nil
		}
		return []string{val}
	case bool:
		return []string{strconv.FormatBool(val)}
	case float64:
		return []string{strconv.FormatFloat(val, 'f', -1, 64)}
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			out = append(out, valueStrings(item)...)
		}
		return out
	default:
		return nil
	}
}

// splitHierarchical expands comma-joined hierarchy lists. Commas inside
// parentheses do not split.
func splitHierarchical(values []string) []string {
	var out []string
	for _, value := range values {
		if !strings.Contains(value, ",") {
			out = append(out, value)
			continue
		}
		out = append(out, splitCommasOutsideParens(value)...)
	}
	return out
}

func splitCommasOutsideParens(value string) []string {
	var items []string
	var buf strings.Builder
	depth := 0
	for _, ch := range value {
		switch {
		case ch == '(':
			depth++
		case ch == ')' && depth > 0:
			depth--
		case ch == ',' && depth == 0:
			if part := strings.TrimSpace(buf.String()); part != "" {
				items = append(items, part)
			}
			buf.Reset()
			continue
		}
		buf.WriteRune(ch)
	}
	if part := strings.TrimSpace(buf.String()); part != "" {
		items = append(items, part)
	}
	return items
}

// splitCategoryPerson splits a "Category|Person" hierarchy value. Values
// without a pipe yield nothing.
func splitCategoryPerson(value string) (category, person string) {
	before, after, found := strings.Cut(value, "|")
	if !found {
		return "", ""
	}
	return Normalize(before), Normalize(after)
}
