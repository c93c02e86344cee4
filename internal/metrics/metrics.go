package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_library_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_library_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_library_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Rendering metrics
var (
	RenderPlansTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_library_render_plans_total",
			Help: "Total number of render plans by mode and outcome",
		},
		[]string{"mode", "status"}, // mode: image, picture, admin; status: success, unknown_format, resizer_missing, invalid_options, error
	)

	RenderPlanDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_library_render_plan_duration_seconds",
			Help:    "Time spent building render parameters",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		},
		[]string{"mode"},
	)

	RenderSrcsetEntries = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "media_library_render_srcset_entries",
			Help:    "Number of candidates emitted in a computed srcset attribute",
			Buckets: []float64{1, 2, 3, 5, 8, 13, 21},
		},
	)
)

// Metadata extraction metrics
var (
	MetadataExtractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_library_metadata_extractions_total",
			Help: "Total number of metadata extractions by outcome",
		},
		[]string{"status"}, // success, error_decode, error_temp
	)

	MetadataExtractionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "media_library_metadata_extraction_duration_seconds",
			Help:    "Time spent extracting metadata from content",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)
)

// Thumbnail metrics
var (
	ThumbnailGenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_library_thumbnail_generations_total",
			Help: "Total number of derived formats generated",
		},
		[]string{"engine", "status"},
	)

	ThumbnailGenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_library_thumbnail_generation_duration_seconds",
			Help:    "Time taken to render one derived format",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"engine"},
	)

	ThumbnailBytesWritten = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_library_thumbnail_bytes_written_total",
			Help: "Total bytes of derived formats written to storage",
		},
	)
)

// Database metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_library_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_library_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)
)

// Library metrics
var (
	MediaAssetsTotal = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "media_library_assets_total",
			Help: "Number of stored assets by provider status",
		},
		[]string{"status"},
	)

	FormatsRegistered = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_library_formats_registered",
			Help: "Number of registered formats",
		},
	)
)

// Filesystem metrics
var (
	FilesystemOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_library_filesystem_operation_duration_seconds",
			Help:    "Duration of storage filesystem operations",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"operation"},
	)

	FilesystemOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_library_filesystem_operation_errors_total",
			Help: "Total storage filesystem operation errors",
		},
		[]string{"operation"},
	)

	FilesystemRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_library_filesystem_retry_attempts_total",
			Help: "Retries after stale NFS file handles",
		},
		[]string{"operation"},
	)

	FilesystemRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_library_filesystem_retry_failures_total",
			Help: "Operations that still failed after all retries",
		},
		[]string{"operation"},
	)
)

// Memory metrics
var (
	MemoryUsageRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_library_memory_usage_ratio",
			Help: "Heap allocation as a share of the memory limit",
		},
	)

	MemoryPaused = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_library_memory_paused",
			Help: "1 while thumbnail work is paused for memory pressure",
		},
	)
)

// AppInfo exposes build information as labels.
var AppInfo = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "media_library_app_info",
		Help: "Application build information",
	},
	[]string{"version", "commit", "go_version"},
)
