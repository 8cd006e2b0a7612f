package metrics

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	// --- Scan runs and files ---
	for _, state := range []string{"completed", "cancelled", "failed"} {
		ScanRunsTotal.WithLabelValues(state)
	}
	for _, outcome := range []string{"new", "changed", "unchanged", "skipped", "error"} {
		FilesProcessed.WithLabelValues(outcome)
	}
	for _, status := range []string{"done", "partial", "error", "skipped"} {
		DirectoriesScanned.WithLabelValues(status)
	}

	// --- Extractor invocations ---
	for _, outcome := range []string{"ok", "warning", "error"} {
		ExtractorInvocations.WithLabelValues(outcome)
	}

	// --- Hashing by mode ---
	for _, mode := range []string{"quick", "sha256"} {
		HashDuration.WithLabelValues(mode)
		HashBytesTotal.WithLabelValues(mode)
		HashErrors.WithLabelValues(mode)
	}

	// --- DB query operations ---
	for _, op := range []string{"ensure_root", "ensure_directory", "upsert_file",
		"ensure_tag", "link_file_tag", "clear_file_tags", "prune_orphan_tags",
		"tags_for_file", "count_tags", "files_by_paths", "set_meta", "get_meta",
		"log_error", "list_errors", "taken_src_distribution", "delete_missing_files"} {
		DBQueryTotal.WithLabelValues(op, "success")
		DBQueryTotal.WithLabelValues(op, "error")
		DBQueryDuration.WithLabelValues(op)
	}

	for _, t := range []string{"commit", "rollback"} {
		DBTransactionDuration.WithLabelValues(t)
	}

	// --- Catalog gauges by kind ---
	for _, kind := range []string{"image", "video", "doc", "audio", "other"} {
		CatalogFiles.WithLabelValues(kind)
	}
}
