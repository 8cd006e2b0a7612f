package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Meta keys written once per scan run.
const (
	MetaLastRunID       = "last_run_id"
	MetaLastRunStarted  = "last_run_started"
	MetaLastRunFinished = "last_run_finished"
	MetaIndexerVersion  = "indexer_version"
	MetaIncludeVideos   = "include_videos"
	MetaIncludeDocs     = "include_docs"
	MetaIncludeAudio    = "include_audio"
	MetaVideoTags       = "video_tags"
	MetaDenylistSHA256  = "video_tag_denylist_sha256"
)

// SetMeta writes a single meta key, replacing any existing value.
func (s *Store) SetMeta(ctx context.Context, key, value string) (err error) {
	start := time.Now()
	defer func() { recordQuery("set_meta", start, err) }()

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO meta (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("set meta %s: %w", key, err)
	}
	return nil
}

// GetMeta returns the value for a meta key, or "" if the key is absent.
func (s *Store) GetMeta(ctx context.Context, key string) (value string, err error) {
	start := time.Now()
	defer func() { recordQuery("get_meta", start, err) }()

	err = s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get meta %s: %w", key, err)
	}
	return value, nil
}

// RecordScanStart persists the run id and toggle state before scanning begins.
func (s *Store) RecordScanStart(ctx context.Context, meta ScanMeta) error {
	pairs := map[string]string{
		MetaLastRunID:      meta.RunID,
		MetaLastRunStarted: strconv.FormatInt(time.Now().Unix(), 10),
		MetaIndexerVersion: meta.IndexerVersion,
		MetaIncludeVideos:  strconv.FormatBool(meta.IncludeVideos),
		MetaIncludeDocs:    strconv.FormatBool(meta.IncludeDocs),
		MetaIncludeAudio:   strconv.FormatBool(meta.IncludeAudio),
		MetaVideoTags:      strconv.FormatBool(meta.VideoTags),
		MetaDenylistSHA256: meta.DenylistSHA256,
	}
	for key, value := range pairs {
		if err := s.SetMeta(ctx, key, value); err != nil {
			return err
		}
	}
	return nil
}

// RecordScanFinish stamps the run's end time.
func (s *Store) RecordScanFinish(ctx context.Context) error {
	return s.SetMeta(ctx, MetaLastRunFinished, strconv.FormatInt(time.Now().Unix(), 10))
}

// LogError persists a scan error row. Callers buffer these during a
// directory transaction and flush them afterwards so the single writer
// connection is never contended.
func (s *Store) LogError(ctx context.Context, rec ErrorRecord) (err error) {
	start := time.Now()
	defer func() { recordQuery("log_error", start, err) }()

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO errors (scope, message, details) VALUES (?, ?, ?)`,
		rec.Scope, rec.Message, rec.Details)
	if err != nil {
		return fmt.Errorf("log error for %s: %w", rec.Scope, err)
	}
	return nil
}

// ListErrors returns the most recent error rows, newest first.
func (s *Store) ListErrors(ctx context.Context, limit int) (recs []ErrorRecord, err error) {
	start := time.Now()
	defer func() { recordQuery("list_errors", start, err) }()

	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT created_at, scope, message, details
		   FROM errors ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list errors: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rec ErrorRecord
		if err = rows.Scan(&rec.CreatedAt, &rec.Scope, &rec.Message, &rec.Details); err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}
