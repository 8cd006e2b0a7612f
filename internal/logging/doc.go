// Package logging provides a simple leveled logging interface for the
// media indexer.
//
// It supports the following log levels:
//   - DEBUG: Verbose debugging information
//   - INFO: General operational messages
//   - WARN: Warning conditions
//   - ERROR: Error conditions
//   - FATAL: Fatal errors that terminate the application
//
// The log level is configured via the LOG_LEVEL environment variable; a
// truthy DEBUG variable forces the debug level regardless of LOG_LEVEL.
package logging
