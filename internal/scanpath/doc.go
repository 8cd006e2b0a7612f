// Package scanpath maps filesystem scan paths to stored database paths.
//
// A scan may read from a mount point that differs from the canonical path
// recorded in the database. Mapper replaces the scan-root prefix with the
// stored base path, preserving the relative suffix with separators
// normalized to forward slashes. Mapping is pure: no filesystem access.
package scanpath
