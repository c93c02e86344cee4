package resize

import (
	"fmt"
	"sync"
	"time"

	"media-library/internal/logging"
	"media-library/internal/media"

	"github.com/davidbyttow/govips/v2/vips"
)

var (
	vipsInitialized bool
	vipsInitMutex   sync.Mutex
	vipsAvailable   bool
)

// vipsLogThreshold maps the application log level to the lowest libvips level
// that is forwarded.
func vipsLogThreshold(level logging.LogLevel) vips.LogLevel {
	switch level {
	case logging.LevelDebug:
		return vips.LogLevelInfo
	case logging.LevelInfo:
		return vips.LogLevelWarning
	case logging.LevelWarn:
		return vips.LogLevelError
	case logging.LevelError:
		return vips.LogLevelCritical
	default:
		return vips.LogLevelWarning
	}
}

func vipsLogHandler(domain string, level vips.LogLevel, msg string) {
	switch level {
	case vips.LogLevelError, vips.LogLevelCritical:
		logging.Error("[%s] %s", domain, msg)
	case vips.LogLevelWarning:
		logging.Warn("[%s] %s", domain, msg)
	default:
		logging.Debug("[%s] %s", domain, msg)
	}
}

// InitVips starts libvips once per process.
func InitVips() error {
	vipsInitMutex.Lock()
	defer vipsInitMutex.Unlock()

	if vipsInitialized {
		return nil
	}

	// Logging must be configured before Startup.
	vips.LoggingSettings(vipsLogHandler, vipsLogThreshold(logging.GetLevel()))

	vips.Startup(&vips.Config{
		ConcurrencyLevel: 1,
		MaxCacheMem:      50 * 1024 * 1024,
		MaxCacheSize:     100,
		ReportLeaks:      false,
		CacheTrace:       false,
		CollectStats:     false,
	})

	vipsInitialized = true
	vipsAvailable = true
	logging.Info("libvips initialized successfully (version: %s)", vips.Version)
	return nil
}

// ShutdownVips releases libvips. It cannot be restarted afterwards.
func ShutdownVips() {
	vipsInitMutex.Lock()
	defer vipsInitMutex.Unlock()

	if vipsInitialized {
		vips.Shutdown()
		vipsInitialized = false
		vipsAvailable = false
		logging.Info("libvips shutdown complete")
	}
}

// IsVipsAvailable reports whether libvips has been started.
func IsVipsAvailable() bool {
	vipsInitMutex.Lock()
	defer vipsInitMutex.Unlock()
	return vipsAvailable
}

// VipsEngine renders with libvips, which shrinks JPEGs at decode time.
type VipsEngine struct{}

// Name returns "vips".
func (VipsEngine) Name() string { return EngineVips }

// Thumbnail implements Engine.
func (e VipsEngine) Thumbnail(src []byte, box media.Box, mode Mode, out Output) ([]byte, error) {
	start := time.Now()
	data, err := e.thumbnail(src, box, mode, out)
	observe(e.Name(), start, len(data), err)
	return data, err
}

func (VipsEngine) thumbnail(src []byte, box media.Box, mode Mode, out Output) ([]byte, error) {
	if !IsVipsAvailable() {
		return nil, fmt.Errorf("%w: libvips not available", ErrResizer)
	}
	if box.IsZero() {
		return nil, fmt.Errorf("%w: empty target box", ErrResizer)
	}

	ref, err := vips.NewImageFromBuffer(src)
	if err != nil {
		return nil, fmt.Errorf("%w: vips failed to load image: %v", ErrResizer, err)
	}
	defer ref.Close()

	if err := ref.AutoRotate(); err != nil {
		return nil, fmt.Errorf("%w: vips auto-rotate failed: %v", ErrResizer, err)
	}

	crop := vips.InterestingNone
	if mode == ModeOutbound {
		crop = vips.InterestingCentre
	}
	if err := ref.Thumbnail(box.Width, box.Height, crop); err != nil {
		return nil, fmt.Errorf("%w: vips resize failed: %v", ErrResizer, err)
	}

	var data []byte
	switch out.Extension {
	case "png":
		data, _, err = ref.ExportPng(vips.NewPngExportParams())
	case "webp":
		params := vips.NewWebpExportParams()
		params.Quality = out.Quality
		data, _, err = ref.ExportWebp(params)
	case "jpg", "jpeg":
		data, _, err = ref.ExportJpeg(&vips.JpegExportParams{
			Quality:        out.Quality,
			StripMetadata:  true,
			OptimizeCoding: true,
		})
	default:
		return nil, fmt.Errorf("%w: vips cannot encode %q", ErrResizer, out.Extension)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: vips export failed: %v", ErrResizer, err)
	}
	return data, nil
}
