// Package exiftool wraps the external exiftool binary as a per-file metadata
// extractor.
//
// The tool is invoked as a black-box subprocess emitting JSON on stdout.
// Every invocation is classified into exactly one of three outcomes: success
// (exit 0, parseable JSON), warning (exit 1, parseable JSON; the file is
// still indexed), or fatal failure (anything else; the file retains its
// prior stored state). Nothing escapes unclassified.
//
// The Extractor interface isolates this untrusted third-party boundary so
// that the scanner can be tested against a fake implementation.
package exiftool
