// Package main provides the entry point for the media indexer.
//
// The indexer walks a media directory tree, extracts metadata from new and
// changed files with exiftool, and records files, directories, and
// normalized tags in a SQLite catalog.
//
// # Application Lifecycle
//
//  1. Configuration Loading: Reads environment variables and validates directories
//  2. Database Initialization: Opens the SQLite catalog and applies schema migrations
//  3. Extractor Discovery: Locates the exiftool binary
//  4. Metrics Listener: Optionally serves Prometheus metrics during the scan
//  5. Scan: Runs one scan to completion, cancellation, or failure
//  6. Report: Logs the run's counts and capture-timestamp provenance distribution
//
// # Signals
//
// SIGINT and SIGTERM cancel the scan cooperatively. The in-flight directory
// transaction is rolled back; directories already committed remain
// committed, and the process exits 130 with a partial report.
package main
