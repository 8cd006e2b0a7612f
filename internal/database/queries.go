package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// EnsureRoot returns the id of the root row for the stored base path,
// creating it on first encounter. Roots are never deleted by a scan.
func (s *Store) EnsureRoot(ctx context.Context, path string) (int64, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("ensure_root", start, err) }()

	var id int64
	err = s.db.QueryRowContext(ctx, "SELECT id FROM roots WHERE path = ?", path).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to look up root %q: %w", path, err)
	}

	res, err := s.db.ExecContext(ctx, "INSERT INTO roots (path) VALUES (?)", path)
	if err != nil {
		return 0, fmt.Errorf("failed to create root %q: %w", path, err)
	}
	return res.LastInsertId()
}

// UpdateRootScanTime stamps the root's last_scan_at at end of run.
func (s *Store) UpdateRootScanTime(ctx context.Context, rootID int64) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE roots SET last_scan_at = strftime('%s', 'now') WHERE id = ?", rootID)
	return err
}

// GetRoot retrieves a root row by stored path.
func (s *Store) GetRoot(ctx context.Context, path string) (*RootRecord, error) {
	var r RootRecord
	err := s.db.QueryRowContext(ctx,
		"SELECT id, path, added_at, last_scan_at FROM roots WHERE path = ?", path,
	).Scan(&r.ID, &r.Path, &r.AddedAt, &r.LastScanAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// EnsureDirectory returns the id of the directory row for a stored path,
// creating it with status pending on first encounter. parentID zero means
// no parent (a root-level directory).
func (s *Store) EnsureDirectory(ctx context.Context, q querier, rootID, parentID int64, path, relPath string, depth int) (int64, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("ensure_directory", start, err) }()

	var id int64
	err = q.QueryRowContext(ctx, "SELECT id FROM directories WHERE path = ?", path).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to look up directory %q: %w", path, err)
	}

	parent := sql.NullInt64{Int64: parentID, Valid: parentID != 0}
	res, err := q.ExecContext(ctx, `
		INSERT INTO directories (root_id, parent_id, path, rel_path, depth, scan_status)
		VALUES (?, ?, ?, ?, ?, ?)
	`, rootID, parent, path, relPath, depth, DirStatusPending)
	if err != nil {
		return 0, fmt.Errorf("failed to create directory %q: %w", path, err)
	}
	return res.LastInsertId()
}

// SetDirectoryStatus updates a directory's scan status. When called outside
// a transaction after a rollback, the row may not exist; that is a no-op.
func (s *Store) SetDirectoryStatus(ctx context.Context, q querier, dirID int64, status string) error {
	_, err := q.ExecContext(ctx,
		"UPDATE directories SET scan_status = ? WHERE id = ?", status, dirID)
	return err
}

// TouchDirectory stamps a directory's last_scan_at.
func (s *Store) TouchDirectory(ctx context.Context, q querier, dirID int64) error {
	_, err := q.ExecContext(ctx,
		"UPDATE directories SET last_scan_at = strftime('%s', 'now') WHERE id = ?", dirID)
	return err
}

// GetDirectory retrieves a directory row by stored path.
func (s *Store) GetDirectory(ctx context.Context, path string) (*DirectoryRecord, error) {
	var d DirectoryRecord
	err := s.db.QueryRowContext(ctx, `
		SELECT id, root_id, parent_id, path, rel_path, depth, added_at, last_scan_at, scan_status
		FROM directories WHERE path = ?
	`, path).Scan(&d.ID, &d.RootID, &d.ParentID, &d.Path, &d.RelPath, &d.Depth,
		&d.AddedAt, &d.LastScanAt, &d.ScanStatus)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// UpsertFile writes one file row inside a directory transaction. INSERT OR
// REPLACE reassigns the row id on replacement, which cascades away the old
// file_tags links; tag rows for the current pass are relinked afterwards.
func (s *Store) UpsertFile(ctx context.Context, q querier, file *FileRecord) (int64, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("upsert_file", start, err) }()

	res, err := q.ExecContext(ctx, `
		INSERT OR REPLACE INTO files
		(directory_id, path, rel_path, name, ext, size, mtime, ctime, taken_ts, taken_src, kind,
		 width, height, lat, lon, make, model, hash, mime, raw_metadata, scan_id, indexed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, strftime('%s', 'now'))
	`,
		file.DirectoryID,
		file.Path,
		file.RelPath,
		file.Name,
		file.Ext,
		file.Size,
		file.MTime,
		file.CTime,
		file.TakenTS,
		file.TakenSrc,
		file.Kind,
		file.Width,
		file.Height,
		file.Lat,
		file.Lon,
		file.Make,
		file.Model,
		file.Hash,
		file.Mime,
		file.RawMetadata,
		file.ScanID,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// UpdateFileHash backfills the content hash for an otherwise unchanged file.
// Nothing else on the row is touched.
func (s *Store) UpdateFileHash(ctx context.Context, q querier, path, hash string) error {
	_, err := q.ExecContext(ctx, "UPDATE files SET hash = ? WHERE path = ?", hash, path)
	return err
}

// FilesByPaths fetches the change-detection columns for a set of stored
// paths, chunked to stay under SQLite's parameter limit.
func (s *Store) FilesByPaths(ctx context.Context, paths []string) (map[string]FileStat, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("files_by_paths", start, err) }()

	result := make(map[string]FileStat, len(paths))
	const chunkSize = 900

	for i := 0; i < len(paths); i += chunkSize {
		end := min(i+chunkSize, len(paths))
		chunk := paths[i:end]

		query := "SELECT path, size, mtime, hash FROM files WHERE path IN (?" +
			repeatParam(len(chunk)-1) + ")"
		args := make([]any, len(chunk))
		for j, p := range chunk {
			args[j] = p
		}

		var rows *sql.Rows
		rows, err = s.db.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			var path string
			var stat FileStat
			if err = rows.Scan(&path, &stat.Size, &stat.MTime, &stat.Hash); err != nil {
				rows.Close()
				return nil, err
			}
			result[path] = stat
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, err
		}
	}

	return result, nil
}

// GetFileByPath retrieves a single file row by stored path.
func (s *Store) GetFileByPath(ctx context.Context, path string) (*FileRecord, error) {
	var f FileRecord
	err := s.db.QueryRowContext(ctx, `
		SELECT id, directory_id, path, rel_path, name, ext, size, mtime, ctime,
		       taken_ts, taken_src, kind, width, height, lat, lon, make, model,
		       hash, mime, raw_metadata, scan_id
		FROM files WHERE path = ?
	`, path).Scan(&f.ID, &f.DirectoryID, &f.Path, &f.RelPath, &f.Name, &f.Ext,
		&f.Size, &f.MTime, &f.CTime, &f.TakenTS, &f.TakenSrc, &f.Kind,
		&f.Width, &f.Height, &f.Lat, &f.Lon, &f.Make, &f.Model,
		&f.Hash, &f.Mime, &f.RawMetadata, &f.ScanID)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// DeleteMissingFiles removes file rows not seen since the cutoff. This is an
// explicit maintenance operation; a normal scan never calls it.
func (s *Store) DeleteMissingFiles(ctx context.Context, tx *sql.Tx, cutoff time.Time) (int64, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("delete_missing_files", start, err) }()

	res, err := tx.ExecContext(ctx, "DELETE FROM files WHERE indexed_at < ?", cutoff.Unix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// TakenSrcDistribution counts files under the stored base path grouped by
// capture-timestamp provenance.
func (s *Store) TakenSrcDistribution(ctx context.Context, basePath string) (map[string]int, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("taken_src_distribution", start, err) }()

	rows, err := s.db.QueryContext(ctx, `
		SELECT taken_src, COUNT(*) FROM files
		WHERE path = ? OR path LIKE ?
		GROUP BY taken_src
	`, basePath, likePrefix(basePath))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	dist := make(map[string]int)
	for rows.Next() {
		var src string
		var count int
		if err = rows.Scan(&src, &count); err != nil {
			return nil, err
		}
		dist[src] = count
	}
	err = rows.Err()
	if err != nil {
		return nil, err
	}
	return dist, nil
}

// repeatParam returns n copies of ",?" for IN clauses.
func repeatParam(n int) string {
	out := make([]byte, 0, n*2)
	for i := 0; i < n; i++ {
		out = append(out, ",?"...)
	}
	return string(out)
}

// likePrefix turns a stored directory path into a LIKE pattern matching its
// descendants.
func likePrefix(path string) string {
	for len(path) > 0 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}
	return path + "/%"
}
