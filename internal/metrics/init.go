package metrics

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics(engines ...string) {
	for _, mode := range []string{"image", "picture", "admin"} {
		RenderPlanDuration.WithLabelValues(mode)
		for _, status := range []string{"success", "unknown_format", "resizer_missing", "resizer_error", "error"} {
			RenderPlansTotal.WithLabelValues(mode, status)
		}
	}
	// invalid options are rejected before a mode is chosen
	RenderPlansTotal.WithLabelValues("none", "invalid_options")

	for _, status := range []string{"success", "error_decode", "error_temp"} {
		MetadataExtractionsTotal.WithLabelValues(status)
	}

	for _, engine := range engines {
		ThumbnailGenerationDuration.WithLabelValues(engine)
		ThumbnailGenerationsTotal.WithLabelValues(engine, "success")
		ThumbnailGenerationsTotal.WithLabelValues(engine, "error")
	}

	for _, op := range []string{"open", "write", "stat", "remove"} {
		FilesystemOperationDuration.WithLabelValues(op)
		FilesystemOperationErrors.WithLabelValues(op)
		FilesystemRetryAttempts.WithLabelValues(op)
		FilesystemRetryFailures.WithLabelValues(op)
	}

	for _, op := range []string{"initialize_schema", "create_media", "get_media", "update_media",
		"delete_media", "list_media", "count_by_status"} {
		DBQueryTotal.WithLabelValues(op, "success")
		DBQueryTotal.WithLabelValues(op, "error")
		DBQueryDuration.WithLabelValues(op)
	}

	for _, status := range []string{"ok", "pending", "error"} {
		MediaAssetsTotal.WithLabelValues(status)
	}
}
