package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Scan run metrics
var (
	ScanRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_indexer_scan_runs_total",
			Help: "Total number of scan runs by final state",
		},
		[]string{"state"}, // "completed", "cancelled", "failed"
	)

	ScanIsRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_indexer_scan_running",
			Help: "Whether a scan is currently in progress (1 or 0)",
		},
	)

	ScanLastRunTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_indexer_scan_last_run_timestamp_seconds",
			Help: "Unix timestamp of the last completed scan run",
		},
	)

	ScanLastRunDuration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_indexer_scan_last_run_duration_seconds",
			Help: "Duration of the last scan run in seconds",
		},
	)

	FilesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_indexer_files_processed_total",
			Help: "Total number of files processed by change-detection outcome",
		},
		[]string{"outcome"}, // "new", "changed", "unchanged", "skipped", "error"
	)

	DirectoriesScanned = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_indexer_directories_scanned_total",
			Help: "Total number of directories scanned by final status",
		},
		[]string{"status"}, // "done", "partial", "error", "skipped"
	)
)

// Metadata extractor metrics
var (
	ExtractorInvocations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_indexer_extractor_invocations_total",
			Help: "Total number of metadata extractor invocations by outcome",
		},
		[]string{"outcome"}, // "ok", "warning", "error"
	)

	ExtractorDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "media_indexer_extractor_duration_seconds",
			Help:    "Metadata extractor invocation duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)
)

// Hashing metrics
var (
	HashDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_indexer_hash_duration_seconds",
			Help:    "Content hash computation duration in seconds",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 15},
		},
		[]string{"mode"}, // "quick", "sha256"
	)

	HashBytesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_indexer_hash_bytes_total",
			Help: "Total bytes read for content hashing",
		},
		[]string{"mode"},
	)

	HashErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_indexer_hash_errors_total",
			Help: "Total hash computations that failed on file I/O",
		},
		[]string{"mode"},
	)
)

// Database metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_indexer_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_indexer_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	DBTransactionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_indexer_db_transaction_duration_seconds",
			Help:    "Directory transaction duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"status"}, // "commit", "rollback"
	)

	DBConnectionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_indexer_db_connections_open",
			Help: "Number of open database connections",
		},
	)
)

// Catalog size metrics, refreshed by the Collector
var (
	CatalogFiles = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "media_indexer_catalog_files",
			Help: "Number of files in the catalog by media kind",
		},
		[]string{"kind"},
	)

	CatalogDirectories = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_indexer_catalog_directories",
			Help: "Number of directories in the catalog",
		},
	)

	CatalogTags = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_indexer_catalog_tags",
			Help: "Number of distinct tags in the catalog",
		},
	)
)
