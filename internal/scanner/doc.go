// Package scanner is the scan engine: it walks a media tree in
// deterministic order, decides per file whether it is new, changed, or
// unchanged, extracts and normalizes metadata for changed files, and
// commits results one transaction per directory.
//
// Per-directory transactions trade a small risk of partially indexed trees
// on crash for frequent progress checkpoints and bounded rollback cost.
// Cancellation is cooperative: the context is checked at directory and file
// boundaries, the in-flight directory rolls back, and committed directories
// stay committed. Metadata extraction and hashing run on a bounded worker
// pool, with results merged back in walk order before anything is written.
package scanner
