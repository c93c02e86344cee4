package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"media-library/internal/format"
	"media-library/internal/logging"
	"media-library/internal/media"
	"media-library/internal/mediatypes"
	"media-library/internal/render"

	"github.com/google/uuid"
)

// Storage is where references are written.
type Storage interface {
	Write(ctx context.Context, key string, r io.Reader) (int64, error)
	Remove(ctx context.Context, key string) error
}

// Thumbnails renders and removes derived formats.
type Thumbnails interface {
	ReferencePath(asset *media.Asset) string
	Generate(ctx context.Context, asset *media.Asset) error
	Remove(ctx context.Context, asset *media.Asset) error
}

// Flusher drops cached copies of served paths.
type Flusher interface {
	Flush(path string) string
}

// FormatLister lists the formats of a context.
type FormatLister interface {
	ForContext(context string) []format.Format
}

// ImageProvider manages image assets.
type ImageProvider struct {
	kind      media.Kind
	extractor *media.Extractor
	storage   Storage
	thumbs    Thumbnails
	planner   *render.Planner
	urls      *render.URLResolver
	tempDir   string

	flusher Flusher
	formats FormatLister
}

// NewImageProvider creates a provider. An empty tempDir uses os.TempDir.
func NewImageProvider(kind media.Kind, extractor *media.Extractor, storage Storage, thumbs Thumbnails,
	planner *render.Planner, urls *render.URLResolver, tempDir string) *ImageProvider {
	return &ImageProvider{
		kind:      kind,
		extractor: extractor,
		storage:   storage,
		thumbs:    thumbs,
		planner:   planner,
		urls:      urls,
		tempDir:   tempDir,
	}
}

// SetFlusher enables CDN flushes for assets marked CDNIsFlushable when their
// files are regenerated or removed.
func (p *ImageProvider) SetFlusher(flusher Flusher, formats FormatLister) {
	p.flusher = flusher
	p.formats = formats
}

// Name returns the provider name recorded on assets.
func (p *ImageProvider) Name() string {
	return p.kind.Name()
}

// Validate checks an upload before anything is written.
func (p *ImageProvider) Validate(filename, contentType string) error {
	return p.kind.Validate(filename, contentType)
}

// Ingest stores a new upload. The asset must carry its context, name and
// the client's content type; the provider fills in the id when missing, the
// provider fields, the sniffed content type, the intrinsic properties and
// the status. Content that cannot be decoded is still stored with status
// error and no formats are generated for it.
func (p *ImageProvider) Ingest(ctx context.Context, asset *media.Asset, upload io.Reader, filename string) error {
	if err := p.kind.Validate(filename, asset.ContentType); err != nil {
		return err
	}

	if asset.ID == "" {
		asset.ID = uuid.NewString()
	}
	asset.ProviderName = p.kind.Name()
	asset.ProviderReference = uuid.NewString() + strings.ToLower(mediatypes.Extension(filename))
	asset.Status = media.StatusPending

	tmpPath, err := p.spool(upload)
	if err != nil {
		return err
	}
	defer func() {
		asset.ContentPath = ""
		if err := os.Remove(tmpPath); err != nil && !os.IsNotExist(err) {
			logging.Warn("failed to remove temp file %s: %v", tmpPath, err)
		}
	}()
	asset.ContentPath = tmpPath

	if sniffed, err := sniff(tmpPath); err == nil && mediatypes.IsImageMimeType(sniffed) {
		asset.ContentType = sniffed
	} else if asset.ContentType == "" {
		asset.ContentType = mediatypes.GetMimeType(mediatypes.Extension(filename))
	}

	md, extractErr := p.extractor.Extract(ctx, asset)
	media.Apply(asset, md, extractErr)
	if extractErr != nil {
		logging.Warn("Media %s (%s) could not be decoded: %v", asset.ID, filename, extractErr)
	} else {
		asset.Status = media.StatusOK
	}

	if err := p.storeReference(ctx, asset, tmpPath); err != nil {
		return err
	}

	if asset.Status != media.StatusOK {
		return nil
	}
	if err := p.thumbs.Generate(ctx, asset); err != nil {
		return fmt.Errorf("generate formats for %s: %w", asset.ID, err)
	}
	logging.Info("Ingested media %s (%dx%d, %d bytes) in context %s",
		asset.ID, asset.Width, asset.Height, asset.Size, asset.Context)
	return nil
}

func (p *ImageProvider) spool(upload io.Reader) (string, error) {
	tmp, err := os.CreateTemp(p.tempDir, "media_upload_*")
	if err != nil {
		return "", fmt.Errorf("%w: %v", media.ErrTempResource, err)
	}
	path := tmp.Name()

	_, copyErr := io.Copy(tmp, upload)
	closeErr := tmp.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("%w: spool upload: %v", media.ErrTempResource, err)
	}
	return path, nil
}

func sniff(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}
	return http.DetectContentType(head[:n]), nil
}

func (p *ImageProvider) storeReference(ctx context.Context, asset *media.Asset, tmpPath string) error {
	f, err := os.Open(tmpPath)
	if err != nil {
		return fmt.Errorf("reopen upload: %w", err)
	}
	defer f.Close()

	key := p.thumbs.ReferencePath(asset)
	if _, err := p.storage.Write(ctx, key, f); err != nil {
		return fmt.Errorf("store reference %s: %w", key, err)
	}
	return nil
}

// UpdateMetadata re-reads the intrinsic properties from the stored
// reference. The asset reflects the outcome either way.
func (p *ImageProvider) UpdateMetadata(ctx context.Context, asset *media.Asset) error {
	return p.extractor.Update(ctx, asset)
}

// GenerateFormats renders every format of the asset's context again.
func (p *ImageProvider) GenerateFormats(ctx context.Context, asset *media.Asset) error {
	if asset.Status != media.StatusOK {
		return fmt.Errorf("media %s has status %s", asset.ID, asset.Status)
	}
	if err := p.thumbs.Generate(ctx, asset); err != nil {
		return err
	}
	p.flush(asset)
	return nil
}

// FormatName expands a short format label within the asset's context.
func (p *ImageProvider) FormatName(asset *media.Asset, id string) string {
	return format.Name(asset.Context, id)
}

// HelperProperties returns the render parameters of asset in a format.
// Short labels are expanded within the asset's context.
func (p *ImageProvider) HelperProperties(asset *media.Asset, formatName string, opts render.Options) (*render.Result, error) {
	return p.planner.Plan(asset, p.FormatName(asset, formatName), opts)
}

// PublicURL returns the public URL of asset in a format.
func (p *ImageProvider) PublicURL(asset *media.Asset, formatName string) string {
	return p.urls.Public(asset, p.FormatName(asset, formatName))
}

// PrivateURL returns the private path of asset in a format.
func (p *ImageProvider) PrivateURL(asset *media.Asset, formatName string) string {
	return p.urls.Private(asset, p.FormatName(asset, formatName))
}

// Remove deletes the derived formats and the reference of asset.
func (p *ImageProvider) Remove(ctx context.Context, asset *media.Asset) error {
	err := errors.Join(
		p.thumbs.Remove(ctx, asset),
		p.storage.Remove(ctx, p.thumbs.ReferencePath(asset)),
	)
	p.flush(asset)
	return err
}

// flush asks the CDN to drop the reference and every format of a flushable
// asset.
func (p *ImageProvider) flush(asset *media.Asset) {
	if p.flusher == nil || !asset.CDNIsFlushable {
		return
	}

	paths := []string{p.urls.Private(asset, format.Reference)}
	if p.formats != nil {
		for _, f := range p.formats.ForContext(asset.Context) {
			paths = append(paths, p.urls.Private(asset, f.Name))
		}
	}
	for _, path := range paths {
		id := p.flusher.Flush(path)
		logging.Debug("Flushed %s of media %s (flush %s)", path, asset.ID, id)
	}
}
