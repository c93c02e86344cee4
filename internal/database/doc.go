// Package database persists media assets in SQLite.
//
// The database runs in WAL mode so that render requests can read while an
// upload is being written. The schema is created on first open. Every query
// is counted and timed through the metrics package.
package database
