package resize

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"media-library/internal/format"
	"media-library/internal/media"
)

// ErrResizer is returned when a box cannot be computed or an image cannot
// be rendered.
var ErrResizer = errors.New("resizer error")

// DefaultQuality is the encoder quality used when a format sets none.
const DefaultQuality = 80

// Mode selects how an image is fitted into a target box.
type Mode string

const (
	// ModeInset fits the whole image inside the box.
	ModeInset Mode = "inset"
	// ModeOutbound fills the box, cropping what overflows.
	ModeOutbound Mode = "outbound"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(s)) {
	case ModeInset:
		return ModeInset, nil
	case ModeOutbound:
		return ModeOutbound, nil
	default:
		return "", fmt.Errorf("%w: invalid mode %q, use inset or outbound", ErrResizer, s)
	}
}

// Resizer computes derived boxes and renders derived images.
type Resizer interface {
	Box(asset *media.Asset, settings format.Settings) (media.Box, error)
	Resize(ctx context.Context, asset *media.Asset, src []byte, settings format.Settings) ([]byte, error)
}

// Extension returns the file extension, without the dot, of a derived
// format: the format's own setting, else the reference's extension.
func Extension(asset *media.Asset, settings format.Settings) string {
	if settings.Extension != "" {
		return strings.ToLower(strings.TrimPrefix(settings.Extension, "."))
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(asset.ProviderReference), "."))
	if ext == "" {
		return "jpg"
	}
	return ext
}

func output(asset *media.Asset, settings format.Settings) Output {
	q := settings.Quality
	if q <= 0 || q > 100 {
		q = DefaultQuality
	}
	return Output{Extension: Extension(asset, settings), Quality: q}
}

// SimpleResizer scales the image into the target box, keeping its aspect
// ratio.
type SimpleResizer struct {
	engine Engine
	mode   Mode
}

// NewSimpleResizer returns a resizer using engine. An empty mode means inset.
func NewSimpleResizer(engine Engine, mode Mode) *SimpleResizer {
	if mode == "" {
		mode = ModeInset
	}
	return &SimpleResizer{engine: engine, mode: mode}
}

// Box returns the dimensions the derived image will have. A missing side is
// derived from the intrinsic aspect ratio; the scaled box is then clamped to
// the target on each side. With Constraint set, images are never upscaled.
func (r *SimpleResizer) Box(asset *media.Asset, settings format.Settings) (media.Box, error) {
	if r.mode != ModeInset && r.mode != ModeOutbound {
		return media.Box{}, fmt.Errorf("%w: invalid mode %q", ErrResizer, r.mode)
	}

	size := asset.Box()
	if size.IsZero() {
		return media.Box{}, fmt.Errorf("%w: media %s has no intrinsic dimensions", ErrResizer, asset.ID)
	}

	width, height := settings.Width, settings.Height
	if width <= 0 && height <= 0 {
		return media.Box{}, fmt.Errorf("%w: width/height parameter is missing", ErrResizer)
	}
	if height <= 0 {
		height = roundDiv(width*size.Height, size.Width)
	}
	if width <= 0 {
		width = roundDiv(height*size.Width, size.Height)
	}

	wRatio := float64(width) / float64(size.Width)
	hRatio := float64(height) / float64(size.Height)
	ratio := min(wRatio, hRatio)
	if r.mode == ModeOutbound {
		ratio = max(wRatio, hRatio)
	}
	if settings.Constraint && ratio > 1 {
		ratio = 1
	}

	scaled := size.Scale(ratio)
	return media.Box{
		Width:  min(scaled.Width, width),
		Height: min(scaled.Height, height),
	}, nil
}

// Resize renders src into the box for settings.
func (r *SimpleResizer) Resize(ctx context.Context, asset *media.Asset, src []byte, settings format.Settings) ([]byte, error) {
	box, err := r.Box(asset, settings)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.engine.Thumbnail(src, box, r.mode, output(asset, settings))
}

// SquareResizer crops to a centred square when a height is configured and
// then shrinks to the target width.
type SquareResizer struct {
	engine Engine
}

// NewSquareResizer returns a square resizer using engine.
func NewSquareResizer(engine Engine) *SquareResizer {
	return &SquareResizer{engine: engine}
}

// Box returns the dimensions the derived image will have. Images are never
// upscaled.
func (r *SquareResizer) Box(asset *media.Asset, settings format.Settings) (media.Box, error) {
	size := asset.Box()
	if size.IsZero() {
		return media.Box{}, fmt.Errorf("%w: media %s has no intrinsic dimensions", ErrResizer, asset.ID)
	}
	if settings.Width <= 0 && settings.Height <= 0 {
		return media.Box{}, fmt.Errorf("%w: width/height parameter is missing", ErrResizer)
	}

	if settings.Height > 0 {
		side := min(size.Width, size.Height)
		size = media.Box{Width: side, Height: side}
	}

	target := settings.Width
	if target <= 0 {
		target = settings.Height
	}
	if target < size.Width {
		size = size.Widen(target)
	}
	return size, nil
}

// Resize renders src into the box for settings.
func (r *SquareResizer) Resize(ctx context.Context, asset *media.Asset, src []byte, settings format.Settings) ([]byte, error) {
	box, err := r.Box(asset, settings)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	mode := ModeInset
	if settings.Height > 0 {
		mode = ModeOutbound
	}
	return r.engine.Thumbnail(src, box, mode, output(asset, settings))
}

// roundDiv returns a/b rounded half away from zero for non-negative inputs.
func roundDiv(a, b int) int {
	return (2*a + b) / (2 * b)
}

// Chain picks a resizer per format from the Resizer setting, falling back to
// a default.
type Chain struct {
	fallback Resizer
	named    map[string]Resizer
}

// NewChain returns a resizer that dispatches on format.Settings.Resizer.
func NewChain(fallback Resizer, named map[string]Resizer) *Chain {
	return &Chain{fallback: fallback, named: named}
}

func (c *Chain) pick(settings format.Settings) Resizer {
	if r, ok := c.named[settings.Resizer]; ok && settings.Resizer != "" {
		return r
	}
	return c.fallback
}

// Box delegates to the resizer selected by settings.
func (c *Chain) Box(asset *media.Asset, settings format.Settings) (media.Box, error) {
	return c.pick(settings).Box(asset, settings)
}

// Resize delegates to the resizer selected by settings.
func (c *Chain) Resize(ctx context.Context, asset *media.Asset, src []byte, settings format.Settings) ([]byte, error) {
	return c.pick(settings).Resize(ctx, asset, src, settings)
}
