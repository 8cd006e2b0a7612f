package database

import "database/sql"

// Directory scan statuses. A directory's status only ever changes inside a
// committed unit of work, except DirStatusError/DirStatusPartial which may be
// written standalone after a rollback.
const (
	DirStatusPending  = "pending"
	DirStatusScanning = "scanning"
	DirStatusDone     = "done"
	DirStatusPartial  = "partial"
	DirStatusError    = "error"
	DirStatusSkipped  = "skipped"
)

// RootRecord is a top-level indexed location, identified by its stored path.
type RootRecord struct {
	ID         int64
	Path       string
	AddedAt    string
	LastScanAt sql.NullString
}

// DirectoryRecord is one filesystem directory under a root.
type DirectoryRecord struct {
	ID         int64
	RootID     int64
	ParentID   sql.NullInt64
	Path       string
	RelPath    string
	Depth      int64
	AddedAt    string
	LastScanAt sql.NullString
	ScanStatus string
}

// FileRecord is one indexed media file. TakenTS and TakenSrc are set
// together: TakenSrc is "none" exactly when TakenTS is null.
type FileRecord struct {
	ID          int64
	DirectoryID int64
	Path        string
	RelPath     string
	Name        string
	Ext         string
	Size        int64
	MTime       int64
	CTime       int64
	TakenTS     sql.NullInt64
	TakenSrc    string
	Kind        string
	Width       sql.NullInt64
	Height      sql.NullInt64
	Lat         sql.NullFloat64
	Lon         sql.NullFloat64
	Make        sql.NullString
	Model       sql.NullString
	Hash        sql.NullString
	Mime        sql.NullString
	RawMetadata sql.NullString
	ScanID      string
}

// FileStat is the subset of a stored file row used for change detection.
type FileStat struct {
	Size  int64
	MTime int64
	Hash  sql.NullString
}

// TagRecord is one canonical (key, value) metadata pair, deduplicated
// across the whole database.
type TagRecord struct {
	ID    int64
	Key   string
	Value string
}

// ErrorRecord is one persisted per-file or per-scope scan error.
type ErrorRecord struct {
	CreatedAt int64
	Scope     string
	Message   string
	Details   sql.NullString
}

// ScanMeta is the run metadata persisted once per scan so later inspection
// can explain why a file has or lacks tags.
type ScanMeta struct {
	RunID          string
	IndexerVersion string
	IncludeVideos  bool
	IncludeDocs    bool
	IncludeAudio   bool
	VideoTags      bool
	DenylistSHA256 string
}
