// Package tags normalizes raw extracted metadata into canonical tag records.
//
// Raw key/value pairs from the metadata extractor become deduplicated
// (key, value) tags: values are whitespace-normalized, multi-value fields
// fan out one tag per value, and empty values are dropped. Hierarchical
// subject values additionally surface Category and Person tags.
//
// The package also derives the capture timestamp with source provenance
// (TakenTime), extracts well-known file columns (Dimensions, GPS,
// MakeModel), and loads the optional video-tag denylist.
package tags
