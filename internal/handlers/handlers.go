package handlers

import (
	"context"
	"io"
	"time"

	"media-library/internal/format"
	"media-library/internal/media"
	"media-library/internal/render"
)

// DefaultMaxUploadSize bounds the multipart body of an upload.
const DefaultMaxUploadSize int64 = 64 << 20

// Store persists asset records.
type Store interface {
	Create(ctx context.Context, a *media.Asset) error
	Get(ctx context.Context, id string) (*media.Asset, error)
	Update(ctx context.Context, a *media.Asset) error
	Delete(ctx context.Context, id string) error
	ListByContext(ctx context.Context, mediaContext string, limit, offset int) ([]*media.Asset, error)
	Ping(ctx context.Context) error
}

// Provider owns the files and render parameters of assets.
type Provider interface {
	Validate(filename, contentType string) error
	Ingest(ctx context.Context, asset *media.Asset, upload io.Reader, filename string) error
	UpdateMetadata(ctx context.Context, asset *media.Asset) error
	HelperProperties(asset *media.Asset, formatName string, opts render.Options) (*render.Result, error)
	PublicURL(asset *media.Asset, formatName string) string
	PrivateURL(asset *media.Asset, formatName string) string
	Remove(ctx context.Context, asset *media.Asset) error
}

// Formats lists registered formats.
type Formats interface {
	All() []format.Format
	ForContext(context string) []format.Format
}

type Handlers struct {
	store         Store
	provider      Provider
	formats       Formats
	maxUploadSize int64
	started       time.Time
}

func New(store Store, provider Provider, formats Formats) *Handlers {
	return &Handlers{
		store:         store,
		provider:      provider,
		formats:       formats,
		maxUploadSize: DefaultMaxUploadSize,
		started:       time.Now(),
	}
}

// SetMaxUploadSize changes the upload limit; values <= 0 are ignored.
func (h *Handlers) SetMaxUploadSize(n int64) {
	if n > 0 {
		h.maxUploadSize = n
	}
}
