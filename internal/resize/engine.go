package resize

import (
	"bytes"
	"fmt"
	"image"
	"strings"
	"time"

	"media-library/internal/logging"
	"media-library/internal/media"
	"media-library/internal/metrics"

	"github.com/disintegration/imaging"
)

// Engine names accepted by NewEngine.
const (
	EngineImaging = "imaging"
	EngineVips    = "vips"
)

// Output describes the encoding of a derived image.
type Output struct {
	Extension string
	Quality   int
}

// Engine decodes an image, fits it into a box and encodes the result.
type Engine interface {
	Name() string
	Thumbnail(src []byte, box media.Box, mode Mode, out Output) ([]byte, error)
}

// NewEngine returns the engine called name. Asking for vips when libvips
// cannot start falls back to the imaging engine.
func NewEngine(name string) Engine {
	switch strings.ToLower(name) {
	case EngineVips:
		if err := InitVips(); err != nil {
			logging.Warn("libvips unavailable, falling back to imaging engine: %v", err)
			return ImagingEngine{}
		}
		return VipsEngine{}
	case "", EngineImaging:
		return ImagingEngine{}
	default:
		logging.Warn("Unknown thumbnail engine %q, using %s", name, EngineImaging)
		return ImagingEngine{}
	}
}

// ImagingEngine renders with github.com/disintegration/imaging.
type ImagingEngine struct{}

// Name returns "imaging".
func (ImagingEngine) Name() string { return EngineImaging }

// Thumbnail implements Engine.
func (e ImagingEngine) Thumbnail(src []byte, box media.Box, mode Mode, out Output) ([]byte, error) {
	start := time.Now()
	data, err := e.thumbnail(src, box, mode, out)
	observe(e.Name(), start, len(data), err)
	return data, err
}

func (ImagingEngine) thumbnail(src []byte, box media.Box, mode Mode, out Output) ([]byte, error) {
	if box.IsZero() {
		return nil, fmt.Errorf("%w: empty target box", ErrResizer)
	}

	f, err := imaging.FormatFromExtension(out.Extension)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot encode %q: %v", ErrResizer, out.Extension, err)
	}

	img, err := imaging.Decode(bytes.NewReader(src), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResizer, err)
	}

	var dst image.Image
	if mode == ModeOutbound {
		dst = imaging.Fill(img, box.Width, box.Height, imaging.Center, imaging.Lanczos)
	} else {
		dst = imaging.Resize(img, box.Width, box.Height, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, dst, f, imaging.JPEGQuality(out.Quality)); err != nil {
		return nil, fmt.Errorf("%w: encode: %v", ErrResizer, err)
	}
	return buf.Bytes(), nil
}

func observe(engine string, start time.Time, n int, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.ThumbnailGenerationsTotal.WithLabelValues(engine, status).Inc()
	metrics.ThumbnailGenerationDuration.WithLabelValues(engine).Observe(time.Since(start).Seconds())
	if err == nil {
		metrics.ThumbnailBytesWritten.Add(float64(n))
	}
}
