package thumbnail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"media-library/internal/format"
	"media-library/internal/logging"
	"media-library/internal/media"
	"media-library/internal/resize"
	"media-library/internal/workers"
)

// Storage is the blob store the generator reads and writes.
type Storage interface {
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Write(ctx context.Context, key string, r io.Reader) (int64, error)
	Remove(ctx context.Context, key string) error
}

// Gate holds back work, e.g. under memory pressure.
type Gate interface {
	Wait(ctx context.Context) error
}

// Generator renders and locates the derived formats of assets.
type Generator struct {
	storage  Storage
	paths    PathGenerator
	registry *format.Registry
	resizer  resize.Resizer
	workers  int
	gate     Gate
}

// NewGenerator creates a generator. A nil paths uses UUIDPathGenerator and a
// non-positive workers count uses workers.ForMixed(8).
func NewGenerator(storage Storage, paths PathGenerator, registry *format.Registry, resizer resize.Resizer, workerCount int) *Generator {
	if paths == nil {
		paths = UUIDPathGenerator{}
	}
	if workerCount <= 0 {
		workerCount = workers.ForMixed(8)
	}
	return &Generator{
		storage:  storage,
		paths:    paths,
		registry: registry,
		resizer:  resizer,
		workers:  workerCount,
	}
}

// SetGate makes every format render wait on gate first.
func (g *Generator) SetGate(gate Gate) {
	g.gate = gate
}

// ReferencePath returns the storage key of the original upload.
func (g *Generator) ReferencePath(asset *media.Asset) string {
	return path.Join(g.paths.Path(asset), asset.ProviderReference)
}

// ReferenceFile opens the original upload.
func (g *Generator) ReferenceFile(ctx context.Context, asset *media.Asset) (io.ReadCloser, error) {
	return g.storage.Open(ctx, g.ReferencePath(asset))
}

// PublicURL returns the storage key of a derived format. Unknown formats use
// the reference's extension.
func (g *Generator) PublicURL(asset *media.Asset, formatName string) string {
	var settings format.Settings
	if f, err := g.registry.Lookup(formatName); err == nil {
		settings = f.Settings
	}
	name := fmt.Sprintf("thumb_%s_%s.%s", asset.ID, formatName, resize.Extension(asset, settings))
	return path.Join(g.paths.Path(asset), name)
}

// PrivateURL returns the same key as PublicURL; access control is left to
// whatever serves it.
func (g *Generator) PrivateURL(asset *media.Asset, formatName string) string {
	return g.PublicURL(asset, formatName)
}

// formats returns the formats generated for an asset: those of its context
// followed by admin.
func (g *Generator) formats(asset *media.Asset) []format.Format {
	out := g.registry.ForContext(asset.Context)
	if admin, err := g.registry.Lookup(format.Admin); err == nil {
		seen := false
		for _, f := range out {
			if f.Name == format.Admin {
				seen = true
				break
			}
		}
		if !seen {
			out = append(out, admin)
		}
	}
	return out
}

// Generate renders every format of the asset's context plus admin.
func (g *Generator) Generate(ctx context.Context, asset *media.Asset) error {
	formats := g.formats(asset)
	if len(formats) == 0 {
		return nil
	}

	src, err := g.readReference(ctx, asset)
	if err != nil {
		return err
	}

	logging.Debug("Generating %d formats for media %s", len(formats), asset.ID)
	return workers.ForEach(ctx, g.workers, len(formats), func(ctx context.Context, i int) error {
		f := formats[i]
		if g.gate != nil {
			if err := g.gate.Wait(ctx); err != nil {
				return err
			}
		}
		data, err := g.resizer.Resize(ctx, asset, src, f.Settings)
		if err != nil {
			return fmt.Errorf("format %s: %w", f.Name, err)
		}
		key := g.PublicURL(asset, f.Name)
		if _, err := g.storage.Write(ctx, key, bytes.NewReader(data)); err != nil {
			return fmt.Errorf("format %s: write %s: %w", f.Name, key, err)
		}
		logging.Debug("Generated %s (%d bytes)", key, len(data))
		return nil
	})
}

// Remove deletes the derived files of every format of the asset's context
// plus admin. Missing files are not an error.
func (g *Generator) Remove(ctx context.Context, asset *media.Asset) error {
	var errs []error
	for _, f := range g.formats(asset) {
		if err := g.storage.Remove(ctx, g.PublicURL(asset, f.Name)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (g *Generator) readReference(ctx context.Context, asset *media.Asset) ([]byte, error) {
	rc, err := g.ReferenceFile(ctx, asset)
	if err != nil {
		return nil, fmt.Errorf("open reference: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read reference: %w", err)
	}
	return data, nil
}
