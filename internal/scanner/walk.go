package scanner

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	"media-indexer/internal/logging"
	"media-indexer/internal/mediatypes"
)

// fileEntry is one candidate file discovered during the walk.
type fileEntry struct {
	name   string
	fsPath string
	size   int64
	mtime  int64
	ctime  int64
	kind   mediatypes.FileType
}

// dirJob is one directory's unit of work, in traversal order. A non-nil
// readErr means the directory itself could not be listed; it is marked as
// errored without processing and the run continues.
type dirJob struct {
	fsPath  string
	relPath string // slash-separated, "" for the scan root
	depth   int
	files   []fileEntry
	readErr error
}

// collectDirs walks the tree rooted at the scan path in lexicographic order
// and returns one job per directory, parents before children. Hidden entries
// and metadata sidecars are never indexed; files of unrecognized kinds are
// dropped here rather than reported as skipped.
func collectDirs(scanPath string, includeRootFiles bool) []dirJob {
	var jobs []dirJob
	var visit func(dir, rel string, depth int)

	visit = func(dir, rel string, depth int) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			logging.Warn("Cannot read directory %s: %v", dir, err)
			jobs = append(jobs, dirJob{fsPath: dir, relPath: rel, depth: depth, readErr: err})
			return
		}

		job := dirJob{fsPath: dir, relPath: rel, depth: depth}
		var subdirs []string

		for _, entry := range entries {
			name := entry.Name()
			if strings.HasPrefix(name, ".") {
				continue
			}
			if entry.IsDir() {
				subdirs = append(subdirs, name)
				continue
			}
			if !entry.Type().IsRegular() || mediatypes.IsSidecar(name) {
				continue
			}
			kind := mediatypes.Classify(name)
			if kind == mediatypes.FileTypeOther {
				continue
			}
			if depth == 0 && !includeRootFiles {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				logging.Warn("Cannot stat %s: %v", filepath.Join(dir, name), err)
				continue
			}
			mtime := info.ModTime().Unix()
			job.files = append(job.files, fileEntry{
				name:   name,
				fsPath: filepath.Join(dir, name),
				size:   info.Size(),
				mtime:  mtime,
				ctime:  changeTime(info, mtime),
				kind:   kind,
			})
		}

		jobs = append(jobs, job)

		// os.ReadDir returns entries sorted by name, so recursion order is
		// lexicographic by path.
		for _, name := range subdirs {
			visit(filepath.Join(dir, name), path.Join(rel, name), depth+1)
		}
	}

	visit(scanPath, "", 0)
	return jobs
}
