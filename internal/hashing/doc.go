// Package hashing computes content digests for indexed files.
//
// Three modes are supported: none (hashing disabled), quick (a fast
// non-cryptographic xxhash over bounded head/tail windows plus the file
// size), and sha256 (a full-file cryptographic digest). Quick digests are
// best-effort change detection only and must not be treated as identities.
package hashing
