package scanpath

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// ErrOutsideRoot is returned when a path to be mapped is not a descendant of
// the configured scan root. Traversal only ever visits descendants, so hitting
// this error indicates a caller bug rather than a filesystem condition.
var ErrOutsideRoot = errors.New("path is outside the scan root")

// Mapper translates filesystem scan paths into stored database paths.
//
// The scan root is where the tree is read from; the stored base is the path
// recorded in the database. They differ when a volume is mounted somewhere
// other than its canonical location (e.g. scanning /mnt/usb/photos for a
// library stored as /media/photos).
type Mapper struct {
	scanRoot   string
	storedBase string
}

// NewMapper creates a Mapper for the given scan root and stored base path.
// An empty storedBase records paths under the scan root itself.
func NewMapper(scanRoot, storedBase string) Mapper {
	if storedBase == "" {
		storedBase = scanRoot
	}
	return Mapper{
		scanRoot:   filepath.Clean(scanRoot),
		storedBase: strings.TrimSuffix(filepath.ToSlash(filepath.Clean(storedBase)), "/"),
	}
}

// ScanRoot returns the filesystem root the mapper translates from.
func (m Mapper) ScanRoot() string {
	return m.scanRoot
}

// StoredBase returns the stored base path, slash-normalized.
func (m Mapper) StoredBase() string {
	return m.storedBase
}

// Map returns the stored path for a filesystem path under the scan root.
// Separators are normalized to forward slashes. The scan root itself maps to
// the stored base.
func (m Mapper) Map(fsPath string) (string, error) {
	rel, err := filepath.Rel(m.scanRoot, filepath.Clean(fsPath))
	if err != nil {
		return "", fmt.Errorf("%w: %q not under %q", ErrOutsideRoot, fsPath, m.scanRoot)
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("%w: %q not under %q", ErrOutsideRoot, fsPath, m.scanRoot)
	}
	if rel == "." {
		return m.storedBase, nil
	}
	return path.Join(m.storedBase, rel), nil
}

// Rel returns the slash-normalized path of fsPath relative to the scan root,
// or an empty string for the root itself.
func (m Mapper) Rel(fsPath string) (string, error) {
	rel, err := filepath.Rel(m.scanRoot, filepath.Clean(fsPath))
	if err != nil {
		return "", fmt.Errorf("%w: %q not under %q", ErrOutsideRoot, fsPath, m.scanRoot)
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("%w: %q not under %q", ErrOutsideRoot, fsPath, m.scanRoot)
	}
	if rel == "." {
		return "", nil
	}
	return rel, nil
}
