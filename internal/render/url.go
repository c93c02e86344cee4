package render

import (
	"net/url"

	"media-library/internal/format"
	"media-library/internal/media"
)

// ReferenceLocator returns the storage path of an asset's original.
type ReferenceLocator interface {
	ReferencePath(asset *media.Asset) string
}

// ThumbnailURLs returns the paths of derived formats.
type ThumbnailURLs interface {
	PublicURL(asset *media.Asset, formatName string) string
	PrivateURL(asset *media.Asset, formatName string) string
}

// CDN prefixes relative paths with where they are served from.
type CDN interface {
	Path(relativePath string, flushable bool) string
}

// URLResolver computes the URLs of an asset's formats.
type URLResolver struct {
	references ReferenceLocator
	thumbnails ThumbnailURLs
	cdn        CDN
}

// NewURLResolver creates a resolver.
func NewURLResolver(references ReferenceLocator, thumbnails ThumbnailURLs, cdn CDN) *URLResolver {
	return &URLResolver{references: references, thumbnails: thumbnails, cdn: cdn}
}

// Public returns the public URL of a format. URLs with a scheme and a host
// are returned as they are; anything else, including keys such as
// "a:b/x.jpg", goes through the CDN.
func (r *URLResolver) Public(asset *media.Asset, formatName string) string {
	var p string
	if formatName == format.Reference {
		p = r.references.ReferencePath(asset)
	} else {
		p = r.thumbnails.PublicURL(asset, formatName)
	}

	if u, err := url.Parse(p); err == nil && u.Scheme != "" && u.Host != "" {
		return p
	}
	return r.cdn.Path(p, asset.CDNIsFlushable)
}

// Private returns the private path of a format, without a CDN prefix.
func (r *URLResolver) Private(asset *media.Asset, formatName string) string {
	if formatName == format.Reference {
		return r.references.ReferencePath(asset)
	}
	return r.thumbnails.PrivateURL(asset, formatName)
}
