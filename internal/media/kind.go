package media

import (
	"errors"
	"fmt"

	"media-library/internal/mediatypes"
)

// ErrUnsupportedType is returned when an upload does not match the media kind.
var ErrUnsupportedType = errors.New("unsupported media type")

// Kind captures what differs between media kinds: how content is decoded,
// where the intrinsic box comes from and which uploads are accepted.
type Kind interface {
	Name() string
	Decoder() Decoder
	IntrinsicBox(asset *Asset) Box
	Validate(filename, contentType string) error
}

// ImageKind handles raster images.
type ImageKind struct {
	decoder Decoder
}

// NewImageKind returns the image kind. A nil decoder selects ConfigDecoder.
func NewImageKind(decoder Decoder) *ImageKind {
	if decoder == nil {
		decoder = ConfigDecoder{}
	}
	return &ImageKind{decoder: decoder}
}

// Name returns the provider name stored on assets.
func (k *ImageKind) Name() string {
	return "image"
}

// Decoder returns the decoder used for metadata extraction.
func (k *ImageKind) Decoder() Decoder {
	return k.decoder
}

// IntrinsicBox returns the stored width and height of the asset.
func (k *ImageKind) IntrinsicBox(asset *Asset) Box {
	return asset.Box()
}

// Validate accepts uploads whose extension is a known image extension and
// whose content type, when present, is an image type.
func (k *ImageKind) Validate(filename, contentType string) error {
	ext := mediatypes.Extension(filename)
	if !mediatypes.IsImageExtension(ext) {
		return fmt.Errorf("%w: extension %q", ErrUnsupportedType, ext)
	}
	if contentType != "" && contentType != "application/octet-stream" && !mediatypes.IsImageMimeType(contentType) {
		return fmt.Errorf("%w: content type %q", ErrUnsupportedType, contentType)
	}
	return nil
}
