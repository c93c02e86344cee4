package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"media-library/internal/logging"
	"media-library/internal/metrics"
)

// ErrTempResource is returned when the reference bytes cannot be copied to a
// temporary file for decoding.
var ErrTempResource = errors.New("temporary resource unavailable")

// ReferenceSource opens the stored reference bytes of an asset.
type ReferenceSource interface {
	ReferenceFile(ctx context.Context, asset *Asset) (io.ReadCloser, error)
}

// Metadata holds the intrinsic properties read from content.
type Metadata struct {
	Size int64
	Box  Box
}

// Extractor derives Metadata from an asset's content. It never mutates the
// asset; Apply does that.
type Extractor struct {
	kind       Kind
	references ReferenceSource
	tempDir    string
}

// NewExtractor creates an extractor. references may be nil when every asset
// passed to Extract carries a ContentPath. An empty tempDir uses os.TempDir.
func NewExtractor(kind Kind, references ReferenceSource, tempDir string) *Extractor {
	return &Extractor{
		kind:       kind,
		references: references,
		tempDir:    tempDir,
	}
}

// Extract reads size and dimensions. When the asset has no ContentPath the
// reference is copied to a temporary file that is removed before returning.
// Errors wrap ErrDecode or ErrTempResource.
func (e *Extractor) Extract(ctx context.Context, asset *Asset) (Metadata, error) {
	start := time.Now()
	md, err := e.extract(ctx, asset)

	status := "success"
	switch {
	case errors.Is(err, ErrTempResource):
		status = "error_temp"
	case err != nil:
		status = "error_decode"
	}
	metrics.MetadataExtractionsTotal.WithLabelValues(status).Inc()
	metrics.MetadataExtractionDuration.Observe(time.Since(start).Seconds())

	return md, err
}

func (e *Extractor) extract(ctx context.Context, asset *Asset) (Metadata, error) {
	path := asset.ContentPath
	if path == "" {
		tmp, cleanup, err := e.materialize(ctx, asset)
		if err != nil {
			return Metadata{}, err
		}
		defer cleanup()
		path = tmp
	}

	info, err := os.Stat(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	box, err := e.kind.Decoder().Open(path)
	if err != nil {
		if !errors.Is(err, ErrDecode) {
			err = fmt.Errorf("%w: %v", ErrDecode, err)
		}
		return Metadata{}, err
	}

	return Metadata{Size: info.Size(), Box: box}, nil
}

// materialize copies the reference into a new temporary file. The returned
// cleanup func removes it and is safe to call once.
func (e *Extractor) materialize(ctx context.Context, asset *Asset) (string, func(), error) {
	if e.references == nil {
		return "", nil, fmt.Errorf("%w: no reference source configured", ErrTempResource)
	}

	src, err := e.references.ReferenceFile(ctx, asset)
	if err != nil {
		return "", nil, fmt.Errorf("%w: open reference: %v", ErrTempResource, err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp(e.tempDir, "media_update_metadata_*")
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrTempResource, err)
	}
	path := tmp.Name()
	cleanup := func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logging.Warn("failed to remove temp file %s: %v", path, err)
		}
	}

	_, copyErr := io.Copy(tmp, src)
	closeErr := tmp.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("%w: write %s: %v", ErrTempResource, path, err)
	}

	return path, cleanup, nil
}

// Apply records the outcome of Extract on the asset. A failed extraction
// marks the asset as errored and zeroes its size and dimensions; a
// successful one copies the metadata and leaves the status alone.
func Apply(asset *Asset, md Metadata, err error) {
	if err != nil {
		asset.Status = StatusError
		asset.Size = 0
		asset.Width = 0
		asset.Height = 0
		return
	}
	asset.Size = md.Size
	asset.Width = md.Box.Width
	asset.Height = md.Box.Height
}

// Update extracts and applies metadata in one step. The error is returned
// for logging; the asset already reflects it.
func (e *Extractor) Update(ctx context.Context, asset *Asset) error {
	md, err := e.Extract(ctx, asset)
	Apply(asset, md, err)
	if err != nil {
		logging.Warn("Metadata extraction failed for media %s: %v", asset.ID, err)
	}
	return err
}
