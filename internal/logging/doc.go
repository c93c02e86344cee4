// Package logging provides a small leveled logger for the media library.
//
// Levels, from most to least verbose:
//   - DEBUG: format resolution, resize and decode details
//   - INFO: ingestion and startup messages
//   - WARN: recoverable problems (bad uploads, cleanup failures)
//   - ERROR: failed operations
//   - FATAL: errors that terminate the process
//
// The level is read once from DEBUG or LOG_LEVEL and can be changed at
// runtime with SetLevel.
package logging
