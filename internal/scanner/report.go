package scanner

import "time"

// Run states.
const (
	StateCompleted = "completed"
	StateCancelled = "cancelled"
	StateFailed    = "failed"
)

// Per-file outcomes.
const (
	OutcomeNew       = "new"
	OutcomeChanged   = "changed"
	OutcomeUnchanged = "unchanged"
	OutcomeSkipped   = "skipped"
	OutcomeError     = "error"
)

// Report is the result of one scan run. Counts reflect exactly what was
// committed: files in a rolled-back directory are not counted as indexed.
type Report struct {
	RunID string `json:"runId"`
	State string `json:"state"`

	FilesNew       int `json:"filesNew"`
	FilesChanged   int `json:"filesChanged"`
	FilesUnchanged int `json:"filesUnchanged"`
	FilesSkipped   int `json:"filesSkipped"`
	Warnings       int `json:"warnings"`
	Errors         int `json:"errors"`

	DirectoriesScanned int `json:"directoriesScanned"`
	DirectoriesSkipped int `json:"directoriesSkipped"`
	DirectoriesErrored int `json:"directoriesErrored"`

	TagsPruned int64 `json:"tagsPruned"`

	// TakenSrcDistribution counts indexed files under the scan's stored
	// base grouped by capture-timestamp provenance.
	TakenSrcDistribution map[string]int `json:"takenSrcDistribution,omitempty"`

	StartedAt time.Time     `json:"startedAt"`
	Elapsed   time.Duration `json:"elapsed"`
}

// dirCounts accumulates per-directory outcomes before they are folded into
// the report on commit. A rollback discards the whole struct, so the report
// never reflects rows that were not committed. Skipped files are counted on
// the report directly since they never touch the database.
type dirCounts struct {
	added     int
	changed   int
	unchanged int
	warnings  int
	errors    int
}

func (r *Report) absorb(c dirCounts) {
	r.FilesNew += c.added
	r.FilesChanged += c.changed
	r.FilesUnchanged += c.unchanged
	r.Warnings += c.warnings
	r.Errors += c.errors
}
