package tags

import (
	"bufio"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"strings"
)

// Denylist is a set of tag keys excluded from persistence. It applies to
// video-derived tags only; image tags are never filtered.
type Denylist struct {
	keys   map[string]bool
	sha256 string
}

// LoadDenylist reads a denylist file: one key per UTF-8 line, surrounding
// whitespace trimmed, blank lines skipped. The file's SHA-256 is captured so
// run metadata can record which denylist produced a scan.
func LoadDenylist(path string) (*Denylist, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load denylist: %w", err)
	}
	defer f.Close()

	digest := sha256.New()
	keys := make(map[string]bool)

	scanner := bufio.NewScanner(io.TeeReader(f, digest))
	for scanner.Scan() {
		key := strings.TrimSpace(scanner.Text())
		if key != "" {
			keys[key] = true
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("load denylist: %w", err)
	}

	return &Denylist{
		keys:   keys,
		sha256: fmt.Sprintf("%x", digest.Sum(nil)),
	}, nil
}

// Match reports whether a tag key is denylisted. Comparison is a
// case-sensitive exact match.
func (d *Denylist) Match(key string) bool {
	if d == nil {
		return false
	}
	return d.keys[key]
}

// SHA256 returns the hex digest of the denylist file contents.
func (d *Denylist) SHA256() string {
	if d == nil {
		return ""
	}
	return d.sha256
}

// Len returns the number of denylisted keys.
func (d *Denylist) Len() int {
	if d == nil {
		return 0
	}
	return len(d.keys)
}
