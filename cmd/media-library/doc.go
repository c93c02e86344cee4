// Package main provides the entry point for the media library server.
//
// The server stores uploaded images, renders their derived formats and
// answers render requests with the attributes of an img element or a
// picture group.
//
// # Application Lifecycle
//
//  1. Memory configuration: GOMEMLIMIT from GOMEMLIMIT or MEMORY_LIMIT
//  2. Configuration loading: environment variables, directory checks
//  3. Database initialization: SQLite in WAL mode
//  4. Format registry: FORMATS_FILE, or only the admin format
//  5. Thumbnail pipeline: engine (imaging or libvips), resizer, worker pool
//     gated by the memory monitor
//  6. HTTP server: API routes, stored files under CDN_PATH, request logging
//     and metrics middleware
//  7. Graceful shutdown on SIGINT/SIGTERM
//
// # HTTP Servers
//
//  1. Main server (PORT, default 8080): the API, health probes and the
//     stored files when CDN_PATH is a local path.
//  2. Metrics server (METRICS_PORT, default 9090, optional): /metrics.
//
// # Environment Variables
//
// See [media-library/internal/startup] for the full list. Memory sizing
// reads GOMEMLIMIT, MEMORY_LIMIT and MEMORY_RATIO.
//
// # Build Requirements
//
// CGO is required for SQLite and libvips:
//
//	go build -o media-library ./cmd/media-library
//
// The imaging engine needs no system libraries; THUMBNAIL_ENGINE=vips falls
// back to it when libvips cannot start.
package main
