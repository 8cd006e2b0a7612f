// Package metrics provides Prometheus instrumentation for the media indexer.
//
// This package defines and exposes various metrics that can be scraped by
// Prometheus to monitor scan runs. All metrics are prefixed with
// "media_indexer_" to avoid naming collisions with other applications.
//
// # Metric Categories
//
// ## Scan Run Metrics
//
// Track scan progress and outcomes:
//   - ScanRunsTotal: Counter of runs by final state (completed, cancelled, failed)
//   - ScanIsRunning: Gauge indicating if a scan is in progress
//   - ScanLastRunTimestamp / ScanLastRunDuration: Gauges for the last run
//   - FilesProcessed: Counter of files by change-detection outcome
//   - DirectoriesScanned: Counter of directories by final status
//
// ## Extractor Metrics
//
// Track metadata extractor subprocess invocations:
//   - ExtractorInvocations: Counter by outcome (ok, warning, error)
//   - ExtractorDuration: Histogram of invocation duration
//
// ## Hashing Metrics
//
// Track content digest computation:
//   - HashDuration / HashBytesTotal / HashErrors, labelled by mode
//
// ## Database Metrics
//
// Monitor database query and transaction performance:
//   - DBQueryTotal / DBQueryDuration by operation
//   - DBTransactionDuration by outcome (commit, rollback)
//   - DBConnectionsOpen
//
// ## Catalog Metrics
//
// Gauges for catalog size (files by kind, directories, tags), refreshed
// periodically by the Collector from a StatsProvider.
//
// Call InitializeMetrics once at startup to pre-populate label combinations
// so that every series is present from the first scrape.
package metrics
