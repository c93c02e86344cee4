package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"media-library/internal/cdn"
	"media-library/internal/database"
	"media-library/internal/filesystem"
	"media-library/internal/format"
	"media-library/internal/handlers"
	"media-library/internal/logging"
	"media-library/internal/media"
	"media-library/internal/memory"
	"media-library/internal/metrics"
	"media-library/internal/middleware"
	"media-library/internal/provider"
	"media-library/internal/render"
	"media-library/internal/resize"
	"media-library/internal/startup"
	"media-library/internal/thumbnail"
	"media-library/internal/workers"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	startTime := time.Now()

	memory.ConfigureFromEnv()

	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	buildInfo := startup.GetBuildInfo()
	metrics.AppInfo.WithLabelValues(buildInfo.Version, buildInfo.Commit, buildInfo.GoVersion).Set(1)

	// Initialize database
	dbStart := time.Now()
	store, err := database.New(context.Background(), config.DatabasePath)
	if err != nil {
		startup.LogFatal("Failed to initialize database: %v", err)
	}
	defer store.Close()
	startup.LogDatabaseInit(time.Since(dbStart))

	registry, source, err := loadFormats(config.FormatsFile)
	if err != nil {
		startup.LogFatal("Failed to load formats: %v", err)
	}
	startup.LogFormatsInit(source, formatNames(registry))
	metrics.FormatsRegistered.Set(float64(registry.Len()))

	storage, err := filesystem.NewLocal(config.StorageDir, filesystem.WithObserver(metrics.NewFilesystemObserver()))
	if err != nil {
		startup.LogFatal("Failed to open storage: %v", err)
	}

	// Thumbnail pipeline
	engine := resize.NewEngine(config.ThumbnailEngine)
	metrics.InitializeMetrics(engine.Name())
	resizer, err := buildResizer(engine, config.Resizer, config.ResizerMode)
	if err != nil {
		startup.LogFatal("Failed to configure resizer: %v", err)
	}
	workerCount := workers.ForMixed(8)
	startup.LogThumbnailInit(engine.Name(), config.Resizer, config.ResizerMode, workerCount)

	memMonitor := memory.NewMonitor(memory.DefaultConfig())
	memMonitor.Start()

	thumbs := thumbnail.NewGenerator(storage, nil, registry, resizer, workerCount)
	thumbs.SetGate(memMonitor)

	kind := media.NewImageKind(nil)
	extractor := media.NewExtractor(kind, thumbs, config.TempDir)
	cdnServer := cdn.New(config.CDNPath)
	urls := render.NewURLResolver(thumbs, thumbs, cdnServer)
	planner := render.NewPlanner(kind, registry, resizer, urls)
	images := provider.NewImageProvider(kind, extractor, storage, thumbs, planner, urls, config.TempDir)
	images.SetFlusher(cdnServer, registry)

	collector := metrics.NewCollector(store, time.Minute)
	collector.Start()

	h := handlers.New(store, images, registry)
	router := setupRouter(h, storage.Root(), config.CDNPath)
	startup.LogHTTPRoutes(router, config.LogStaticFiles, config.LogHealthChecks)

	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogStaticFiles = config.LogStaticFiles
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	if prefix, ok := localPrefix(config.CDNPath); ok {
		loggingConfig.StaticPrefix = prefix + "/"
	}
	handler := middleware.Logger(loggingConfig)(router)

	srv := &http.Server{
		Addr:              ":" + config.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       5 * time.Minute,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}

	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metricsSrv = startMetricsServer(config.MetricsPort)
	}

	done := make(chan struct{})
	go func() {
		handleShutdown(srv, metricsSrv, collector, memMonitor, engine.Name())
		close(done)
	}()

	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		startup.LogFatal("Server error: %v", err)
	}
	<-done
}

// loadFormats builds the registry from a formats file, or registers only
// the admin format when path is empty.
func loadFormats(path string) (*format.Registry, string, error) {
	registry := format.NewRegistry()
	if path == "" {
		if err := format.Load(strings.NewReader(""), registry); err != nil {
			return nil, "", err
		}
		return registry, "defaults", nil
	}
	if err := format.LoadFile(path, registry); err != nil {
		return nil, "", err
	}
	return registry, path, nil
}

func formatNames(registry *format.Registry) []string {
	all := registry.All()
	names := make([]string, 0, len(all))
	for _, f := range all {
		names = append(names, f.Name)
	}
	return names
}

// buildResizer returns the default resizer wrapped in a chain so formats
// can pick another one by name.
func buildResizer(engine resize.Engine, name, modeName string) (resize.Resizer, error) {
	mode, err := resize.ParseMode(modeName)
	if err != nil {
		return nil, err
	}
	named := map[string]resize.Resizer{
		"simple": resize.NewSimpleResizer(engine, mode),
		"square": resize.NewSquareResizer(engine),
	}
	if name == "" {
		name = "simple"
	}
	fallback, ok := named[name]
	if !ok {
		return nil, fmt.Errorf("unknown resizer %q", name)
	}
	return resize.NewChain(fallback, named), nil
}

// localPrefix returns the path under which this server serves stored files,
// or false when the CDN base is an external URL.
func localPrefix(cdnPath string) (string, bool) {
	if u, err := url.Parse(cdnPath); err != nil || u.Scheme != "" || u.Host != "" {
		return "", false
	}
	prefix := "/" + strings.Trim(cdnPath, "/")
	if prefix == "/" {
		return "", false
	}
	return prefix, true
}

func setupRouter(h *handlers.Handlers, storageRoot, cdnPath string) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.Metrics(middleware.DefaultMetricsConfig()))

	// Health and version
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET", "HEAD")
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods("GET")
	r.HandleFunc("/version", h.GetVersion).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/media", h.UploadMedia).Methods("POST")
	api.HandleFunc("/media", h.ListMedia).Methods("GET")
	api.HandleFunc("/media/{id}", h.GetMedia).Methods("GET")
	api.HandleFunc("/media/{id}", h.DeleteMedia).Methods("DELETE")
	api.HandleFunc("/media/{id}/metadata", h.UpdateMetadata).Methods("POST")
	api.HandleFunc("/media/{id}/render", h.RenderMedia).Methods("GET")
	api.HandleFunc("/media/{id}/urls", h.GetMediaURLs).Methods("GET")
	api.HandleFunc("/formats", h.ListFormats).Methods("GET")

	// Stored files, when the CDN base points back at this server
	if prefix, ok := localPrefix(cdnPath); ok {
		files := http.StripPrefix(prefix, http.FileServer(http.Dir(storageRoot)))
		r.PathPrefix(prefix + "/").Handler(noDirectoryListing(files)).Methods("GET", "HEAD")
	}

	return r
}

func noDirectoryListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func startMetricsServer(port string) *http.Server {
	m := http.NewServeMux()
	m.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           m,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Metrics server error: %v", err)
		}
	}()
	return srv
}

func handleShutdown(srv, metricsSrv *http.Server, collector *metrics.Collector, memMonitor *memory.Monitor, engine string) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	startup.LogShutdownStep("Stopping metrics collector")
	collector.Stop()
	startup.LogShutdownStepComplete("Metrics collector stopped")

	startup.LogShutdownStep("Stopping memory monitor")
	memMonitor.Stop()
	startup.LogShutdownStepComplete("Memory monitor stopped")

	if metricsSrv != nil {
		startup.LogShutdownStep("Shutting down metrics server")
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Metrics server stopped")
		}
	}

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	if engine == resize.EngineVips {
		startup.LogShutdownStep("Shutting down libvips")
		resize.ShutdownVips()
		startup.LogShutdownStepComplete("libvips stopped")
	}

	startup.LogShutdownComplete()
}
