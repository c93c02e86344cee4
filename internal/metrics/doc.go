// Package metrics provides Prometheus instrumentation for the media library.
//
// All metrics are prefixed with "media_library_" and registered through
// promauto, so they are exported by promhttp.Handler() as soon as the
// package is imported.
//
// # Metric Categories
//
//   - HTTP: request counts, durations and in-flight requests
//   - Rendering: render plans by mode and outcome, plan durations and the
//     size of computed srcset attributes
//   - Metadata: extraction outcomes (success, decode error, temp file error)
//   - Thumbnails: derived formats generated per engine and bytes written
//   - Database: query counts and durations per operation
//   - Library: assets per status and the number of registered formats
//   - Filesystem: storage operation durations, errors and NFS retries
//
// InitializeMetrics pre-populates label sets so dashboards see zero values
// before the first event. The Collector refreshes the library gauges from a
// StatsProvider on an interval.
package metrics
