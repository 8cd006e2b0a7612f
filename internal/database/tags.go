package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// EnsureTag returns the id for a (key, value) tag, inserting the row if it
// does not exist. The bool reports whether a new row was created.
func (s *Store) EnsureTag(ctx context.Context, q querier, key, value string) (id int64, created bool, err error) {
	start := time.Now()
	defer func() { recordQuery("ensure_tag", start, err) }()

	res, err := q.ExecContext(ctx,
		`INSERT OR IGNORE INTO tags (key, value) VALUES (?, ?)`, key, value)
	if err != nil {
		return 0, false, fmt.Errorf("insert tag %s=%s: %w", key, value, err)
	}
	if n, raErr := res.RowsAffected(); raErr == nil && n > 0 {
		id, err = res.LastInsertId()
		if err != nil {
			return 0, false, fmt.Errorf("tag insert id: %w", err)
		}
		return id, true, nil
	}

	err = q.QueryRowContext(ctx,
		`SELECT id FROM tags WHERE key = ? AND value = ?`, key, value).Scan(&id)
	if err != nil {
		return 0, false, fmt.Errorf("lookup tag %s=%s: %w", key, value, err)
	}
	return id, false, nil
}

// LinkFileTag associates a file with a tag. The bool reports whether the
// link was newly created.
func (s *Store) LinkFileTag(ctx context.Context, q querier, fileID, tagID int64) (created bool, err error) {
	start := time.Now()
	defer func() { recordQuery("link_file_tag", start, err) }()

	res, err := q.ExecContext(ctx,
		`INSERT OR IGNORE INTO file_tags (file_id, tag_id) VALUES (?, ?)`, fileID, tagID)
	if err != nil {
		return false, fmt.Errorf("link file %d tag %d: %w", fileID, tagID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ClearFileTags removes all tag links for a file. The scan path does not
// need it: replacing a file row reassigns its id, which cascades the old
// links away. It exists as a maintenance helper for detaching a file's tags
// without rewriting the row.
func (s *Store) ClearFileTags(ctx context.Context, q querier, fileID int64) (err error) {
	start := time.Now()
	defer func() { recordQuery("clear_file_tags", start, err) }()

	_, err = q.ExecContext(ctx, `DELETE FROM file_tags WHERE file_id = ?`, fileID)
	if err != nil {
		return fmt.Errorf("clear tags for file %d: %w", fileID, err)
	}
	return nil
}

// PruneOrphanTags deletes tag rows no file references and returns how many
// were removed. It runs in its own transaction.
func (s *Store) PruneOrphanTags(ctx context.Context) (pruned int64, err error) {
	start := time.Now()
	defer func() { recordQuery("prune_orphan_tags", start, err) }()

	tx, err := s.Begin(ctx)
	if err != nil {
		return 0, err
	}
	res, err := tx.ExecContext(ctx,
		`DELETE FROM tags WHERE id NOT IN (SELECT DISTINCT tag_id FROM file_tags)`)
	if err != nil {
		return 0, s.End(tx, fmt.Errorf("prune orphan tags: %w", err))
	}
	pruned, err = res.RowsAffected()
	if err = s.End(tx, err); err != nil {
		return 0, err
	}
	return pruned, nil
}

// TagsForFile returns the tags linked to a file ordered by key then value.
func (s *Store) TagsForFile(ctx context.Context, fileID int64) (tags []TagRecord, err error) {
	start := time.Now()
	defer func() { recordQuery("tags_for_file", start, err) }()

	rows, err := s.db.QueryContext(ctx,
		`SELECT t.id, t.key, t.value
		   FROM tags t
		   JOIN file_tags ft ON ft.tag_id = t.id
		  WHERE ft.file_id = ?
		  ORDER BY t.key, t.value`, fileID)
	if err != nil {
		return nil, fmt.Errorf("tags for file %d: %w", fileID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var t TagRecord
		if err = rows.Scan(&t.ID, &t.Key, &t.Value); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// CountTags returns the number of distinct tags in the catalog.
func (s *Store) CountTags(ctx context.Context) (n int, err error) {
	start := time.Now()
	defer func() { recordQuery("count_tags", start, err) }()

	err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tags`).Scan(&n)
	if err != nil && err != sql.ErrNoRows {
		return 0, err
	}
	return n, nil
}
