package database

import (
	"context"
	"database/sql"
	"testing"
)

func TestEnsureRootIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.EnsureRoot(ctx, "/media")
	if err != nil {
		t.Fatalf("EnsureRoot failed: %v", err)
	}
	second, err := s.EnsureRoot(ctx, "/media")
	if err != nil {
		t.Fatalf("second EnsureRoot failed: %v", err)
	}
	if first != second {
		t.Errorf("EnsureRoot returned different ids: %d then %d", first, second)
	}

	other, err := s.EnsureRoot(ctx, "/archive")
	if err != nil {
		t.Fatalf("EnsureRoot for second path failed: %v", err)
	}
	if other == first {
		t.Error("distinct roots share an id")
	}
}

func TestUpdateRootScanTime(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rootID, err := s.EnsureRoot(ctx, "/media")
	if err != nil {
		t.Fatalf("EnsureRoot failed: %v", err)
	}

	root, err := s.GetRoot(ctx, "/media")
	if err != nil {
		t.Fatalf("GetRoot failed: %v", err)
	}
	if root.LastScanAt.Valid {
		t.Error("fresh root should have no last_scan_at")
	}

	if err := s.UpdateRootScanTime(ctx, rootID); err != nil {
		t.Fatalf("UpdateRootScanTime failed: %v", err)
	}
	root, err = s.GetRoot(ctx, "/media")
	if err != nil {
		t.Fatalf("GetRoot after update failed: %v", err)
	}
	if !root.LastScanAt.Valid {
		t.Error("last_scan_at not set after update")
	}
}

func TestEnsureDirectory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rootID, err := s.EnsureRoot(ctx, "/media")
	if err != nil {
		t.Fatalf("EnsureRoot failed: %v", err)
	}

	parentID, err := s.EnsureDirectory(ctx, s.db, rootID, 0, "/media/2020", "2020", 1)
	if err != nil {
		t.Fatalf("EnsureDirectory failed: %v", err)
	}
	childID, err := s.EnsureDirectory(ctx, s.db, rootID, parentID, "/media/2020/trip", "2020/trip", 2)
	if err != nil {
		t.Fatalf("EnsureDirectory for child failed: %v", err)
	}

	again, err := s.EnsureDirectory(ctx, s.db, rootID, 0, "/media/2020", "2020", 1)
	if err != nil {
		t.Fatalf("repeat EnsureDirectory failed: %v", err)
	}
	if again != parentID {
		t.Errorf("repeat EnsureDirectory returned %d, want %d", again, parentID)
	}

	parent, err := s.GetDirectory(ctx, "/media/2020")
	if err != nil {
		t.Fatalf("GetDirectory failed: %v", err)
	}
	if parent.ParentID.Valid {
		t.Error("root-level directory should have null parent_id")
	}
	if parent.ScanStatus != DirStatusPending {
		t.Errorf("fresh directory status = %q, want %q", parent.ScanStatus, DirStatusPending)
	}

	child, err := s.GetDirectory(ctx, "/media/2020/trip")
	if err != nil {
		t.Fatalf("GetDirectory for child failed: %v", err)
	}
	if !child.ParentID.Valid || child.ParentID.Int64 != parentID {
		t.Errorf("child parent_id = %v, want %d", child.ParentID, parentID)
	}
	if child.ID != childID || child.Depth != 2 {
		t.Errorf("child = id %d depth %d, want id %d depth 2", child.ID, child.Depth, childID)
	}
}

func TestSetDirectoryStatus(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rootID, err := s.EnsureRoot(ctx, "/media")
	if err != nil {
		t.Fatalf("EnsureRoot failed: %v", err)
	}
	dirID, err := s.EnsureDirectory(ctx, s.db, rootID, 0, "/media/2020", "2020", 1)
	if err != nil {
		t.Fatalf("EnsureDirectory failed: %v", err)
	}

	for _, status := range []string{DirStatusScanning, DirStatusDone, DirStatusPartial, DirStatusError, DirStatusSkipped} {
		if err := s.SetDirectoryStatus(ctx, s.db, dirID, status); err != nil {
			t.Fatalf("SetDirectoryStatus(%s) failed: %v", status, err)
		}
		dir, err := s.GetDirectory(ctx, "/media/2020")
		if err != nil {
			t.Fatalf("GetDirectory failed: %v", err)
		}
		if dir.ScanStatus != status {
			t.Errorf("status = %q, want %q", dir.ScanStatus, status)
		}
	}

	// Updating a nonexistent row is a no-op, not an error.
	if err := s.SetDirectoryStatus(ctx, s.db, 99999, DirStatusError); err != nil {
		t.Errorf("SetDirectoryStatus on missing row = %v, want nil", err)
	}
}

func TestUpsertFileRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rootID, err := s.EnsureRoot(ctx, "/media")
	if err != nil {
		t.Fatalf("EnsureRoot failed: %v", err)
	}
	dirID, err := s.EnsureDirectory(ctx, s.db, rootID, 0, "/media/2020", "2020", 1)
	if err != nil {
		t.Fatalf("EnsureDirectory failed: %v", err)
	}

	rec := &FileRecord{
		DirectoryID: dirID,
		Path:        "/media/2020/img.jpg",
		RelPath:     "2020/img.jpg",
		Name:        "img.jpg",
		Ext:         ".jpg",
		Size:        2048,
		MTime:       1600000000,
		CTime:       1600000100,
		TakenTS:     sql.NullInt64{Int64: 1590000000, Valid: true},
		TakenSrc:    "DateTimeOriginal",
		Kind:        "image",
		Width:       sql.NullInt64{Int64: 4000, Valid: true},
		Height:      sql.NullInt64{Int64: 3000, Valid: true},
		Lat:         sql.NullFloat64{Float64: 40.7128, Valid: true},
		Lon:         sql.NullFloat64{Float64: -74.006, Valid: true},
		Make:        sql.NullString{String: "Canon", Valid: true},
		Model:       sql.NullString{String: "EOS 5D", Valid: true},
		Hash:        sql.NullString{String: "abc123", Valid: true},
		Mime:        sql.NullString{String: "image/jpeg", Valid: true},
		RawMetadata: sql.NullString{String: `{"Make":"Canon"}`, Valid: true},
		ScanID:      "run-1",
	}

	if _, err := s.UpsertFile(ctx, s.db, rec); err != nil {
		t.Fatalf("UpsertFile failed: %v", err)
	}

	got, err := s.GetFileByPath(ctx, "/media/2020/img.jpg")
	if err != nil {
		t.Fatalf("GetFileByPath failed: %v", err)
	}
	if got.Size != 2048 || got.MTime != 1600000000 || got.CTime != 1600000100 {
		t.Errorf("stat columns = (%d, %d, %d), want (2048, 1600000000, 1600000100)",
			got.Size, got.MTime, got.CTime)
	}
	if !got.TakenTS.Valid || got.TakenTS.Int64 != 1590000000 || got.TakenSrc != "DateTimeOriginal" {
		t.Errorf("taken = (%v, %q), want (1590000000, DateTimeOriginal)", got.TakenTS, got.TakenSrc)
	}
	if !got.Width.Valid || got.Width.Int64 != 4000 || !got.Height.Valid || got.Height.Int64 != 3000 {
		t.Errorf("dimensions = (%v, %v), want (4000, 3000)", got.Width, got.Height)
	}
	if !got.Lat.Valid || !got.Lon.Valid {
		t.Error("gps columns should be set")
	}
	if got.Make.String != "Canon" || got.Model.String != "EOS 5D" {
		t.Errorf("make/model = (%q, %q)", got.Make.String, got.Model.String)
	}
	if got.Hash.String != "abc123" || got.Mime.String != "image/jpeg" || got.ScanID != "run-1" {
		t.Errorf("hash/mime/scan = (%q, %q, %q)", got.Hash.String, got.Mime.String, got.ScanID)
	}
}

func TestUpsertFileReplaces(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	fileID, dirID := testFile(t, s, "/media/2020/img.jpg")

	newID, err := s.UpsertFile(ctx, s.db, &FileRecord{
		DirectoryID: dirID,
		Path:        "/media/2020/img.jpg",
		RelPath:     "2020/img.jpg",
		Name:        "img.jpg",
		Ext:         ".jpg",
		Size:        4096,
		MTime:       1700000000,
		CTime:       1700000000,
		TakenSrc:    "mtime_fallback",
		Kind:        "image",
		ScanID:      "run-2",
	})
	if err != nil {
		t.Fatalf("second UpsertFile failed: %v", err)
	}
	if newID == fileID {
		t.Error("replacement should assign a new row id")
	}

	got, err := s.GetFileByPath(ctx, "/media/2020/img.jpg")
	if err != nil {
		t.Fatalf("GetFileByPath failed: %v", err)
	}
	if got.Size != 4096 || got.ScanID != "run-2" {
		t.Errorf("row not replaced: size %d, scan %q", got.Size, got.ScanID)
	}

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM files WHERE path = ?", "/media/2020/img.jpg").Scan(&count); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("file row count = %d, want 1", count)
	}
}

func TestUpdateFileHash(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	testFile(t, s, "/media/2020/img.jpg")

	if err := s.UpdateFileHash(ctx, s.db, "/media/2020/img.jpg", "deadbeef"); err != nil {
		t.Fatalf("UpdateFileHash failed: %v", err)
	}

	got, err := s.GetFileByPath(ctx, "/media/2020/img.jpg")
	if err != nil {
		t.Fatalf("GetFileByPath failed: %v", err)
	}
	if !got.Hash.Valid || got.Hash.String != "deadbeef" {
		t.Errorf("hash = %v, want deadbeef", got.Hash)
	}
	if got.Size != 100 || got.MTime != 1600000000 {
		t.Error("hash backfill should not touch stat columns")
	}
}

func TestFilesByPaths(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	testFile(t, s, "/media/2020/a.jpg")
	testFile(t, s, "/media/2020/b.jpg")
	testFile(t, s, "/media/2020/c.jpg")

	stats, err := s.FilesByPaths(ctx, []string{
		"/media/2020/a.jpg",
		"/media/2020/c.jpg",
		"/media/2020/missing.jpg",
	})
	if err != nil {
		t.Fatalf("FilesByPaths failed: %v", err)
	}

	if len(stats) != 2 {
		t.Fatalf("got %d rows, want 2", len(stats))
	}
	stat, ok := stats["/media/2020/a.jpg"]
	if !ok {
		t.Fatal("a.jpg missing from result")
	}
	if stat.Size != 100 || stat.MTime != 1600000000 {
		t.Errorf("stat = (%d, %d), want (100, 1600000000)", stat.Size, stat.MTime)
	}
	if _, ok := stats["/media/2020/missing.jpg"]; ok {
		t.Error("unknown path should be absent from result")
	}
}

func TestFilesByPathsEmpty(t *testing.T) {
	s := newTestStore(t)

	stats, err := s.FilesByPaths(context.Background(), nil)
	if err != nil {
		t.Fatalf("FilesByPaths with no paths failed: %v", err)
	}
	if len(stats) != 0 {
		t.Errorf("got %d rows, want 0", len(stats))
	}
}

func TestTakenSrcDistribution(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rootID, err := s.EnsureRoot(ctx, "/media")
	if err != nil {
		t.Fatalf("EnsureRoot failed: %v", err)
	}
	dirID, err := s.EnsureDirectory(ctx, s.db, rootID, 0, "/media/2020", "2020", 1)
	if err != nil {
		t.Fatalf("EnsureDirectory failed: %v", err)
	}

	insert := func(path, src string) {
		t.Helper()
		_, err := s.UpsertFile(ctx, s.db, &FileRecord{
			DirectoryID: dirID,
			Path:        path,
			RelPath:     path,
			Name:        "f",
			Ext:         ".jpg",
			Kind:        "image",
			TakenSrc:    src,
		})
		if err != nil {
			t.Fatalf("UpsertFile failed: %v", err)
		}
	}
	insert("/media/2020/a.jpg", "DateTimeOriginal")
	insert("/media/2020/b.jpg", "DateTimeOriginal")
	insert("/media/2020/c.jpg", "mtime_fallback")
	insert("/elsewhere/d.jpg", "none")

	dist, err := s.TakenSrcDistribution(ctx, "/media")
	if err != nil {
		t.Fatalf("TakenSrcDistribution failed: %v", err)
	}
	if dist["DateTimeOriginal"] != 2 || dist["mtime_fallback"] != 1 {
		t.Errorf("distribution = %v, want DateTimeOriginal:2 mtime_fallback:1", dist)
	}
	if _, ok := dist["none"]; ok {
		t.Error("files outside the base path should not be counted")
	}
}
