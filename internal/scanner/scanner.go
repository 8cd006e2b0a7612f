package scanner

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"media-indexer/internal/database"
	"media-indexer/internal/exiftool"
	"media-indexer/internal/hashing"
	"media-indexer/internal/logging"
	"media-indexer/internal/mediatypes"
	"media-indexer/internal/metrics"
	"media-indexer/internal/scanpath"
	"media-indexer/internal/tags"
)

// Scanner drives one scan run: it walks the tree in lexicographic order,
// detects changes, extracts metadata for changed files on a bounded pool,
// and commits results one transaction per directory.
type Scanner struct {
	cfg       Config
	store     *database.Store
	extractor exiftool.Extractor
	mapper    scanpath.Mapper
	denylist  *tags.Denylist
	errlog    *errorLog
}

// New creates a Scanner from a validated configuration. The denylist file,
// when configured, is loaded once here and reused for the whole run.
func New(store *database.Store, extractor exiftool.Extractor, cfg Config) (*Scanner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Scanner{
		cfg:       cfg,
		store:     store,
		extractor: extractor,
		mapper:    scanpath.NewMapper(cfg.ScanPath, cfg.StoredBase),
	}

	if cfg.DenylistPath != "" {
		dl, err := tags.LoadDenylist(cfg.DenylistPath)
		if err != nil {
			return nil, fmt.Errorf("load denylist: %w", err)
		}
		s.denylist = dl
		logging.Info("Loaded video tag denylist (%d keys, sha256 %s)", dl.Len(), dl.SHA256())
	}

	errlog, err := newErrorLog(cfg.ErrorLogPath)
	if err != nil {
		return nil, fmt.Errorf("open error log: %w", err)
	}
	s.errlog = errlog

	return s, nil
}

// Run executes the scan. Cancelling the context stops traversal at the next
// file or directory boundary; the in-flight directory is rolled back and
// directories already committed stay committed. The report is returned for
// every terminal state, with the counts of what actually committed.
func (s *Scanner) Run(ctx context.Context) (*Report, error) {
	report := &Report{
		RunID:     uuid.NewString(),
		State:     StateFailed,
		StartedAt: time.Now(),
	}

	metrics.ScanIsRunning.Set(1)
	defer func() {
		report.Elapsed = time.Since(report.StartedAt)
		metrics.ScanIsRunning.Set(0)
		metrics.ScanRunsTotal.WithLabelValues(report.State).Inc()
		metrics.ScanLastRunTimestamp.Set(float64(time.Now().Unix()))
		metrics.ScanLastRunDuration.Set(report.Elapsed.Seconds())
	}()
	defer s.errlog.Close()

	logging.Info("Starting scan %s: %s (stored base %s, hash %s, mime %s)",
		report.RunID, s.cfg.ScanPath, s.mapper.StoredBase(), s.cfg.HashMode, s.cfg.MimeMode)
	if s.cfg.DryRun {
		logging.Info("Dry run: nothing will be written")
	}

	if ctx.Err() != nil {
		report.State = StateCancelled
		logging.Info("Scan %s cancelled before any work", report.RunID)
		return report, nil
	}

	jobs := collectDirs(s.cfg.ScanPath, s.cfg.IncludeRootFiles)

	var rootID int64
	if !s.cfg.DryRun {
		var err error
		rootID, err = s.store.EnsureRoot(ctx, s.mapper.StoredBase())
		if err != nil {
			return report, err
		}
		if err := s.store.RecordScanStart(ctx, s.scanMeta(report.RunID)); err != nil {
			return report, err
		}
	}

	dirIDs := make(map[string]int64, len(jobs))
	cancelled := false

	for _, job := range jobs {
		if ctx.Err() != nil {
			cancelled = true
			break
		}
		if err := s.processDirectory(ctx, job, rootID, dirIDs, report); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				cancelled = true
				break
			}
			logging.Error("Scan failed: %v", err)
			return report, err
		}
	}

	if err := s.finalize(report, rootID); err != nil {
		return report, err
	}

	if cancelled {
		report.State = StateCancelled
	} else {
		report.State = StateCompleted
	}

	logging.Info("Scan %s %s: new=%d changed=%d unchanged=%d skipped=%d warnings=%d errors=%d dirs=%d in %v",
		report.RunID, report.State, report.FilesNew, report.FilesChanged, report.FilesUnchanged,
		report.FilesSkipped, report.Warnings, report.Errors, report.DirectoriesScanned,
		time.Since(report.StartedAt).Round(time.Millisecond))

	return report, nil
}

// finalize prunes orphan tags and persists end-of-run metadata. It runs for
// completed and cancelled runs alike, since committed directories may have
// re-classified files either way. A background context is used because the
// run context is already cancelled in the cancellation path.
func (s *Scanner) finalize(report *Report, rootID int64) error {
	if s.cfg.DryRun {
		return nil
	}

	fctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pruned, err := s.store.PruneOrphanTags(fctx)
	if err != nil {
		return fmt.Errorf("prune orphan tags: %w", err)
	}
	report.TagsPruned = pruned
	if pruned > 0 {
		logging.Info("Pruned %d orphan tags", pruned)
	}

	if err := s.store.UpdateRootScanTime(fctx, rootID); err != nil {
		return err
	}
	if err := s.store.RecordScanFinish(fctx); err != nil {
		return err
	}

	dist, err := s.store.TakenSrcDistribution(fctx, s.mapper.StoredBase())
	if err != nil {
		logging.Warn("Cannot compute taken_src distribution: %v", err)
	} else {
		report.TakenSrcDistribution = dist
	}
	return nil
}

func (s *Scanner) scanMeta(runID string) database.ScanMeta {
	meta := database.ScanMeta{
		RunID:          runID,
		IndexerVersion: s.cfg.IndexerVersion,
		IncludeVideos:  s.cfg.IncludeVideos,
		IncludeDocs:    s.cfg.IncludeDocs,
		IncludeAudio:   s.cfg.IncludeAudio,
		VideoTags:      s.cfg.VideoTags,
	}
	if s.denylist != nil {
		meta.DenylistSHA256 = s.denylist.SHA256()
	}
	return meta
}

// includeKind applies the configured media kind toggles. Images are always
// included.
func (s *Scanner) includeKind(kind mediatypes.FileType) bool {
	switch kind {
	case mediatypes.FileTypeImage:
		return true
	case mediatypes.FileTypeVideo:
		return s.cfg.IncludeVideos
	case mediatypes.FileTypeDoc:
		return s.cfg.IncludeDocs
	case mediatypes.FileTypeAudio:
		return s.cfg.IncludeAudio
	default:
		return false
	}
}

func (s *Scanner) fileProgress(path, outcome string) {
	if s.cfg.FileProgress != nil {
		s.cfg.FileProgress(path, outcome)
	}
}

// decideAction is the change detector: given the filesystem entry and the
// stored row (if any), it classifies the file for this pass.
func (s *Scanner) decideAction(f fileEntry, stat database.FileStat, exists bool) fileAction {
	if !exists {
		return actNew
	}
	if !s.cfg.ChangedOnly {
		return actChanged
	}
	if f.size != stat.Size || f.mtime != stat.MTime {
		return actChanged
	}
	if s.cfg.HashMode != hashing.ModeNone && !stat.Hash.Valid {
		return actHashOnly
	}
	return actUnchanged
}

// processDirectory handles one directory's unit of work: change detection,
// concurrent preparation, then a single transaction applying results in walk
// order. Per-file and per-directory failures never abort the run; only
// persistence-layer errors propagate as fatal.
func (s *Scanner) processDirectory(ctx context.Context, job dirJob, rootID int64, dirIDs map[string]int64, report *Report) error {
	storedDir, err := s.mapper.Map(job.fsPath)
	if err != nil {
		// Unreachable with the traversal above; defensive.
		logging.Error("Path mapping failed for %s: %v", job.fsPath, err)
		report.DirectoriesErrored++
		metrics.DirectoriesScanned.WithLabelValues(database.DirStatusError).Inc()
		return nil
	}

	if job.readErr != nil {
		report.DirectoriesErrored++
		metrics.DirectoriesScanned.WithLabelValues(database.DirStatusError).Inc()
		s.errlog.log(storedDir, fmt.Sprintf("read directory: %v", job.readErr))
		if !s.cfg.DryRun {
			s.markDirectoryStatus(job, rootID, dirIDs, storedDir, database.DirStatusError)
		}
		return nil
	}

	// Apply include toggles before anything touches stored state.
	var files []fileEntry
	for _, f := range job.files {
		if !s.includeKind(f.kind) {
			report.FilesSkipped++
			metrics.FilesProcessed.WithLabelValues(OutcomeSkipped).Inc()
			s.fileProgress(f.fsPath, OutcomeSkipped)
			continue
		}
		files = append(files, f)
	}

	// A directory whose every file is excluded is skipped outright: its row
	// is stamped rather than scanned, and no transaction opens.
	if len(files) == 0 && len(job.files) > 0 {
		report.DirectoriesSkipped++
		metrics.DirectoriesScanned.WithLabelValues(database.DirStatusSkipped).Inc()
		if !s.cfg.DryRun {
			s.markDirectoryStatus(job, rootID, dirIDs, storedDir, database.DirStatusSkipped)
		}
		return nil
	}

	storedPaths := make([]string, len(files))
	for i, f := range files {
		p, err := s.mapper.Map(f.fsPath)
		if err != nil {
			return err
		}
		storedPaths[i] = p
	}

	existing, err := s.store.FilesByPaths(ctx, storedPaths)
	if err != nil {
		return fmt.Errorf("change detection for %s: %w", storedDir, err)
	}

	actions := make([]fileAction, len(files))
	for i, f := range files {
		stat, ok := existing[storedPaths[i]]
		actions[i] = s.decideAction(f, stat, ok)
	}

	if s.cfg.DryRun {
		var counts dirCounts
		for i, f := range files {
			outcome := s.countAction(actions[i], &counts)
			s.fileProgress(f.fsPath, outcome)
		}
		report.absorb(counts)
		report.DirectoriesScanned++
		return nil
	}

	preps := s.prepareFiles(ctx, files, actions)
	if ctx.Err() != nil {
		return ctx.Err()
	}

	return s.commitDirectory(ctx, job, rootID, dirIDs, storedDir, files, storedPaths, actions, preps, report)
}

// commitDirectory runs the directory's single transaction.
func (s *Scanner) commitDirectory(ctx context.Context, job dirJob, rootID int64, dirIDs map[string]int64,
	storedDir string, files []fileEntry, storedPaths []string, actions []fileAction, preps []prep,
	report *Report) error {

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction for %s: %w", storedDir, err)
	}

	dirID, err := s.store.EnsureDirectory(ctx, tx, rootID, dirIDs[parentRel(job.relPath)],
		storedDir, job.relPath, job.depth)
	if err != nil {
		s.store.End(tx, err)
		report.DirectoriesErrored++
		metrics.DirectoriesScanned.WithLabelValues(database.DirStatusError).Inc()
		logging.Error("Cannot ensure directory row for %s: %v", storedDir, err)
		return nil
	}
	if err := s.store.SetDirectoryStatus(ctx, tx, dirID, database.DirStatusScanning); err != nil {
		s.store.End(tx, err)
		report.DirectoriesErrored++
		metrics.DirectoriesScanned.WithLabelValues(database.DirStatusError).Inc()
		return nil
	}

	var counts dirCounts
	var dbErrors []database.ErrorRecord

	for i, f := range files {
		if ctx.Err() != nil {
			// Roll back the in-flight directory; committed ones stand.
			s.store.End(tx, ctx.Err())
			s.markDirectoryStatus(job, rootID, dirIDs, storedDir, database.DirStatusPartial)
			metrics.DirectoriesScanned.WithLabelValues(database.DirStatusPartial).Inc()
			logging.Info("Cancellation requested, rolled back %s", storedDir)
			return ctx.Err()
		}
		if err := s.applyFile(ctx, tx, dirID, f, storedPaths[i], actions[i], preps[i],
			&counts, &dbErrors, report.RunID); err != nil {
			s.store.End(tx, err)
			report.DirectoriesErrored++
			metrics.DirectoriesScanned.WithLabelValues(database.DirStatusError).Inc()
			s.markDirectoryStatus(job, rootID, dirIDs, storedDir, database.DirStatusError)
			logging.Error("Directory %s rolled back: %v", storedDir, err)
			s.flushErrors(dbErrors)
			return nil
		}
	}

	status := database.DirStatusDone
	if counts.errors > 0 {
		status = database.DirStatusPartial
	}
	if err := s.store.SetDirectoryStatus(ctx, tx, dirID, status); err != nil {
		s.store.End(tx, err)
		report.DirectoriesErrored++
		metrics.DirectoriesScanned.WithLabelValues(database.DirStatusError).Inc()
		return nil
	}
	if err := s.store.TouchDirectory(ctx, tx, dirID); err != nil {
		s.store.End(tx, err)
		report.DirectoriesErrored++
		metrics.DirectoriesScanned.WithLabelValues(database.DirStatusError).Inc()
		return nil
	}

	if err := s.store.End(tx, nil); err != nil {
		report.DirectoriesErrored++
		metrics.DirectoriesScanned.WithLabelValues(database.DirStatusError).Inc()
		logging.Error("Commit failed for %s: %v", storedDir, err)
		s.flushErrors(dbErrors)
		return nil
	}

	dirIDs[job.relPath] = dirID
	report.absorb(counts)
	report.DirectoriesScanned++
	metrics.DirectoriesScanned.WithLabelValues(status).Inc()
	s.flushErrors(dbErrors)

	if s.cfg.Progress != nil {
		s.cfg.Progress(storedDir, len(files))
	}
	return nil
}

// applyFile applies one prepared file inside the directory transaction.
// A returned error is a transaction-level failure that rolls back the whole
// directory; per-file extraction and hashing failures are absorbed into
// counts instead.
func (s *Scanner) applyFile(ctx context.Context, tx *sql.Tx, dirID int64, f fileEntry,
	storedPath string, action fileAction, p prep, counts *dirCounts,
	dbErrors *[]database.ErrorRecord, runID string) error {

	switch action {
	case actUnchanged:
		counts.unchanged++
		metrics.FilesProcessed.WithLabelValues(OutcomeUnchanged).Inc()
		s.fileProgress(f.fsPath, OutcomeUnchanged)
		return nil

	case actHashOnly:
		// Backfill the hash for a previously hash-disabled scan. Metadata
		// and tags are left untouched.
		if p.hashErr != nil {
			s.recordFileError(storedPath, fmt.Sprintf("hash: %v", p.hashErr), "", dbErrors)
			counts.errors++
			metrics.FilesProcessed.WithLabelValues(OutcomeError).Inc()
			s.fileProgress(f.fsPath, OutcomeError)
			return nil
		}
		if err := s.store.UpdateFileHash(ctx, tx, storedPath, p.hash); err != nil {
			return fmt.Errorf("backfill hash for %s: %w", storedPath, err)
		}
		counts.unchanged++
		metrics.FilesProcessed.WithLabelValues(OutcomeUnchanged).Inc()
		s.fileProgress(f.fsPath, OutcomeUnchanged)
		return nil
	}

	// New or changed: full index pass.
	var record map[string]any
	if p.extracted {
		if p.extractErr != nil {
			// Fatal for this file only. Prior stored state, if any, is left
			// untouched.
			details := ""
			var xerr *exiftool.Error
			if errors.As(p.extractErr, &xerr) {
				details = xerr.Stderr
			}
			s.recordFileError(storedPath, p.extractErr.Error(), details, dbErrors)
			counts.errors++
			metrics.FilesProcessed.WithLabelValues(OutcomeError).Inc()
			s.fileProgress(f.fsPath, OutcomeError)
			return nil
		}
		record = p.result.Record
		if p.result.Warning != "" {
			counts.warnings++
			logging.Debug("Extractor warning for %s: %s", storedPath, p.result.Warning)
		}
	}

	hash := sql.NullString{}
	if s.cfg.HashMode != hashing.ModeNone {
		if p.hashErr != nil {
			// The file is still indexed, just without a content hash.
			s.recordFileError(storedPath, fmt.Sprintf("hash: %v", p.hashErr), "", dbErrors)
			counts.errors++
		} else {
			hash = sql.NullString{String: p.hash, Valid: true}
		}
	}

	rec, err := s.buildFileRecord(f, storedPath, dirID, record, hash, runID)
	if err != nil {
		return err
	}

	fileID, err := s.store.UpsertFile(ctx, tx, rec)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", storedPath, err)
	}

	if err := s.linkTags(ctx, tx, fileID, f.kind, record); err != nil {
		return fmt.Errorf("tags for %s: %w", storedPath, err)
	}

	if action == actNew {
		counts.added++
		metrics.FilesProcessed.WithLabelValues(OutcomeNew).Inc()
		s.fileProgress(f.fsPath, OutcomeNew)
	} else {
		counts.changed++
		metrics.FilesProcessed.WithLabelValues(OutcomeChanged).Inc()
		s.fileProgress(f.fsPath, OutcomeChanged)
	}
	return nil
}

// buildFileRecord assembles the file row from the filesystem entry and the
// extracted metadata record (nil when extraction was skipped or not run).
func (s *Scanner) buildFileRecord(f fileEntry, storedPath string, dirID int64,
	record map[string]any, hash sql.NullString, runID string) (*database.FileRecord, error) {

	rel, err := s.mapper.Rel(f.fsPath)
	if err != nil {
		return nil, err
	}

	ts, src := tags.TakenTime(record, f.mtime)
	rec := &database.FileRecord{
		DirectoryID: dirID,
		Path:        storedPath,
		RelPath:     rel,
		Name:        f.name,
		Ext:         lowerExt(f.name),
		Size:        f.size,
		MTime:       f.mtime,
		CTime:       f.ctime,
		TakenSrc:    src,
		Kind:        string(f.kind),
		Hash:        hash,
		Mime:        sql.NullString{String: mediatypes.ResolveMime(f.fsPath, s.cfg.MimeMode), Valid: true},
		ScanID:      runID,
	}
	if src != tags.SrcNone {
		rec.TakenTS = sql.NullInt64{Int64: ts, Valid: true}
	}

	if record != nil {
		if w, h := tags.Dimensions(record); w > 0 && h > 0 {
			rec.Width = sql.NullInt64{Int64: w, Valid: true}
			rec.Height = sql.NullInt64{Int64: h, Valid: true}
		}
		if lat, lon, ok := tags.GPS(record); ok {
			rec.Lat = sql.NullFloat64{Float64: lat, Valid: true}
			rec.Lon = sql.NullFloat64{Float64: lon, Valid: true}
		}
		if mk, model := tags.MakeModel(record); mk != "" || model != "" {
			rec.Make = sql.NullString{String: mk, Valid: mk != ""}
			rec.Model = sql.NullString{String: model, Valid: model != ""}
		}
		if raw, err := json.Marshal(record); err == nil {
			rec.RawMetadata = sql.NullString{String: string(raw), Valid: true}
		}
	}
	return rec, nil
}

// linkTags normalizes the metadata record into tag rows and links them. For
// video files the configured denylist filters tag keys before persistence.
func (s *Scanner) linkTags(ctx context.Context, tx *sql.Tx, fileID int64,
	kind mediatypes.FileType, record map[string]any) error {

	if record == nil {
		return nil
	}
	for _, t := range tags.Parse(record) {
		if kind == mediatypes.FileTypeVideo && s.denylist.Match(t.Key) {
			continue
		}
		tagID, _, err := s.store.EnsureTag(ctx, tx, t.Key, t.Value)
		if err != nil {
			return err
		}
		if _, err := s.store.LinkFileTag(ctx, tx, fileID, tagID); err != nil {
			return err
		}
	}
	return nil
}

// countAction folds a dry-run verdict into counts and returns the outcome
// label.
func (s *Scanner) countAction(action fileAction, counts *dirCounts) string {
	switch action {
	case actNew:
		counts.added++
		return OutcomeNew
	case actChanged:
		counts.changed++
		return OutcomeChanged
	default:
		counts.unchanged++
		return OutcomeUnchanged
	}
}

// recordFileError buffers a per-file error row for post-transaction flushing
// and mirrors it to the JSONL sink immediately.
func (s *Scanner) recordFileError(storedPath, message, details string, dbErrors *[]database.ErrorRecord) {
	logging.Warn("File error %s: %s", storedPath, message)
	s.errlog.log(storedPath, message)
	*dbErrors = append(*dbErrors, database.ErrorRecord{
		Scope:   storedPath,
		Message: message,
		Details: sql.NullString{String: details, Valid: details != ""},
	})
}

// flushErrors writes buffered error rows after the directory transaction has
// ended. The single writer connection cannot take these writes while the
// transaction is open.
func (s *Scanner) flushErrors(dbErrors []database.ErrorRecord) {
	if len(dbErrors) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, rec := range dbErrors {
		if err := s.store.LogError(ctx, rec); err != nil {
			logging.Warn("Cannot persist error row for %s: %v", rec.Scope, err)
		}
	}
}

// markDirectoryStatus writes a directory status outside any transaction,
// creating the row if this directory never committed. Used after rollbacks
// and for unreadable directories.
func (s *Scanner) markDirectoryStatus(job dirJob, rootID int64, dirIDs map[string]int64,
	storedDir, status string) {

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dirID, ok := dirIDs[job.relPath]
	if !ok {
		var err error
		dirID, err = s.store.EnsureDirectory(ctx, s.store.DB(), rootID,
			dirIDs[parentRel(job.relPath)], storedDir, job.relPath, job.depth)
		if err != nil {
			logging.Warn("Cannot record status for %s: %v", storedDir, err)
			return
		}
		dirIDs[job.relPath] = dirID
	}
	if err := s.store.SetDirectoryStatus(ctx, s.store.DB(), dirID, status); err != nil {
		logging.Warn("Cannot set status for %s: %v", storedDir, err)
	}
}

// parentRel returns the walk-relative path of a directory's parent, or ""
// for root-level directories.
func parentRel(rel string) string {
	if rel == "" {
		return ""
	}
	parent := path.Dir(rel)
	if parent == "." {
		return ""
	}
	return parent
}

// lowerExt returns the lowercase file extension including the leading dot.
func lowerExt(name string) string {
	return strings.ToLower(path.Ext(name))
}
