/*
Package workers sizes the scan engine's bounded worker pool.

When running in containers, GOMAXPROCS tracks cgroup CPU limits (Go 1.19+)
while runtime.NumCPU() still reports the host count, so pool sizing here is
derived from GOMAXPROCS.

The scanner's per-directory pipeline runs metadata extraction and hashing
concurrently; both are I/O-dominated (a forked exiftool process to wait on,
file reads), so the pool runs more workers than CPUs:

	// bounded pool for extractor subprocesses, at most 16
	n := workers.ForIO(16)

Operators can pin the count with the SCAN_WORKERS environment variable,
which overrides the computed value but is still capped by the caller's
limit. Malformed or non-positive overrides are ignored so a typo never
stalls a scan.
*/
package workers
