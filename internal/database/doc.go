// Package database provides SQLite storage for the media catalog.
//
// It handles storage and retrieval of:
//   - Scan roots, directories, and per-file records
//   - Key/value tags derived from extracted metadata
//   - Scan run metadata and persisted error rows
//
// The database uses WAL mode with a single writer connection. Schema
// changes are applied through forward-only migrations gated on the
// user_version pragma.
package database
