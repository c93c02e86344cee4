package render

import (
	"errors"
	"fmt"
	"maps"
	"strings"
	"time"

	"media-library/internal/format"
	"media-library/internal/media"
	"media-library/internal/metrics"
	"media-library/internal/resize"
)

// BoxResizer computes the box of a derived format.
type BoxResizer interface {
	Box(asset *media.Asset, settings format.Settings) (media.Box, error)
}

// PublicURLs returns the public URL of a format.
type PublicURLs interface {
	Public(asset *media.Asset, formatName string) string
}

// Planner builds render results. It holds no per-request state and is safe
// for concurrent use.
type Planner struct {
	kind     media.Kind
	registry *format.Registry
	resizer  BoxResizer
	urls     PublicURLs
}

// NewPlanner creates a planner. resizer may be nil, in which case only the
// reference format can be planned.
func NewPlanner(kind media.Kind, registry *format.Registry, resizer BoxResizer, urls PublicURLs) *Planner {
	return &Planner{kind: kind, registry: registry, resizer: resizer, urls: urls}
}

// Plan computes the render parameters of asset in formatName.
func (p *Planner) Plan(asset *media.Asset, formatName string, opts Options) (*Result, error) {
	start := time.Now()
	mode := planMode(formatName, opts)

	res, err := p.plan(asset, formatName, opts)

	status := planStatus(err)
	if status == "invalid_options" {
		mode = "none"
	}
	metrics.RenderPlansTotal.WithLabelValues(mode, status).Inc()
	metrics.RenderPlanDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())

	if err != nil {
		return nil, err
	}
	return res, nil
}

func planMode(formatName string, opts Options) string {
	switch {
	case opts.Picture != nil:
		return "picture"
	case formatName == format.Admin:
		return "admin"
	default:
		return "image"
	}
}

func planStatus(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrInvalidOptions):
		return "invalid_options"
	case errors.Is(err, format.ErrUnknownFormat):
		return "unknown_format"
	case errors.Is(err, ErrResizerMissing):
		return "resizer_missing"
	case errors.Is(err, resize.ErrResizer):
		return "resizer_error"
	default:
		return "error"
	}
}

func (p *Planner) plan(asset *media.Asset, formatName string, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	box, err := p.box(asset, formatName)
	if err != nil {
		return nil, err
	}

	alt := asset.Description
	if alt == "" {
		alt = asset.Name
	}
	base := ImageParams{
		Alt:    alt,
		Title:  asset.Name,
		Src:    p.urls.Public(asset, formatName),
		Width:  box.Width,
		Height: box.Height,
	}

	if opts.Picture != nil {
		sources, err := p.sources(asset, opts.Picture)
		if err != nil {
			return nil, err
		}
		base.Extra = maps.Clone(opts.Attributes)
		return &Result{Picture: &Picture{Sources: sources, Img: base}}, nil
	}

	if formatName != format.Admin {
		srcset, err := p.srcset(asset, formatName, opts.Srcset)
		if err != nil {
			return nil, err
		}
		base.Srcset = srcset
		base.Sizes = fmt.Sprintf("(max-width: %[1]dpx) 100vw, %[1]dpx", box.Width)
	}

	base.Extra = maps.Clone(opts.Attributes)
	return &Result{Image: &base}, nil
}

// box returns the intrinsic box for the reference and the resized box for
// any registered format.
func (p *Planner) box(asset *media.Asset, formatName string) (media.Box, error) {
	if formatName == format.Reference {
		return p.kind.IntrinsicBox(asset), nil
	}
	f, err := p.registry.Lookup(formatName)
	if err != nil {
		return media.Box{}, err
	}
	return p.formatBox(asset, f)
}

func (p *Planner) formatBox(asset *media.Asset, f format.Format) (media.Box, error) {
	if p.resizer == nil {
		return media.Box{}, fmt.Errorf("%w: cannot size format %s", ErrResizerMissing, f.Name)
	}
	return p.resizer.Box(asset, f.Settings)
}

func (p *Planner) sources(asset *media.Asset, entries []PictureEntry) ([]Source, error) {
	sources := make([]Source, 0, len(entries))
	for _, e := range entries {
		name := format.Name(asset.Context, e.Format)
		b, err := p.box(asset, name)
		if err != nil {
			return nil, err
		}
		query := e.Media
		if query == "" {
			query = fmt.Sprintf("(max-width: %dpx)", b.Width)
		}
		sources = append(sources, Source{Media: query, Srcset: p.urls.Public(asset, name)})
	}
	return sources, nil
}

// candidates returns the formats considered for a srcset: the explicit list,
// normalised and completed with the requested format, or every format of the
// asset's context.
func (p *Planner) candidates(asset *media.Asset, formatName string, opt *SrcsetOption) ([]format.Format, error) {
	if opt == nil || len(opt.Formats) == 0 {
		return p.registry.ForContext(asset.Context), nil
	}

	names := make([]string, 0, len(opt.Formats)+1)
	seen := make(map[string]bool, len(opt.Formats)+1)
	for _, id := range opt.Formats {
		name := format.Name(asset.Context, id)
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	if formatName != format.Reference && !seen[formatName] {
		names = append(names, formatName)
	}

	out := make([]format.Format, 0, len(names))
	for _, name := range names {
		if name == format.Reference {
			continue
		}
		f, err := p.registry.Lookup(name)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// srcset returns the srcset attribute: a raw literal when one was given,
// otherwise one entry per candidate of the asset's context followed by the
// reference at its intrinsic width.
func (p *Planner) srcset(asset *media.Asset, formatName string, opt *SrcsetOption) (string, error) {
	if opt != nil && opt.Raw != "" {
		return opt.Raw, nil
	}

	candidates, err := p.candidates(asset, formatName, opt)
	if err != nil {
		return "", err
	}

	entries := make([]string, 0, len(candidates)+1)
	for _, f := range candidates {
		if !format.BelongsTo(f.Name, asset.Context) {
			continue
		}
		b, err := p.formatBox(asset, f)
		if err != nil {
			return "", err
		}
		entries = append(entries, fmt.Sprintf("%s %dw", p.urls.Public(asset, f.Name), b.Width))
	}
	ref := p.kind.IntrinsicBox(asset)
	entries = append(entries, fmt.Sprintf("%s %dw", p.urls.Public(asset, format.Reference), ref.Width))

	metrics.RenderSrcsetEntries.Observe(float64(len(entries)))
	return strings.Join(entries, ", "), nil
}
