// Package startup loads configuration and writes the startup and shutdown
// log sections.
//
// # Configuration
//
// All configuration is loaded from environment variables via [LoadConfig]:
//
//   - STORAGE_DIR: where references and formats are stored (default: /media)
//   - DATABASE_DIR: directory of the SQLite database (default: /database)
//   - TEMP_DIR: scratch space for uploads and metadata reads (default: os temp dir)
//   - PORT: HTTP server port (default: 8080)
//   - METRICS_PORT: Prometheus metrics server port (default: 9090)
//   - METRICS_ENABLED: enable or disable the metrics server (default: true)
//   - FORMATS_FILE: YAML file of contexts and formats (default: admin format only)
//   - CDN_PATH: base path or URL stored files are served from (default: /media)
//   - THUMBNAIL_ENGINE: imaging or vips (default: imaging)
//   - RESIZER: simple or square (default: simple)
//   - RESIZER_MODE: inset or outbound, for the simple resizer (default: inset)
//   - THUMBNAIL_WORKERS: pins the thumbnail worker count
//   - LOG_LEVEL: debug, info, warn, error (default: info)
//   - LOG_STATIC_FILES: log requests for stored files (default: false)
//   - LOG_HEALTH_CHECKS: log health check requests (default: true)
//   - MEMORY_LIMIT, MEMORY_RATIO: heap sizing, read by package memory
//
// The storage, database and temp directories are created when missing and
// must be writable.
//
// # Build Information
//
// Version, Commit and BuildTime are injected via ldflags and exposed via
// [GetBuildInfo].
package startup
