package media

import (
	"errors"
	"fmt"
	"image"
	"os"

	"media-library/internal/logging"

	// Image format decoders
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrDecode is returned when content cannot be read as an image.
var ErrDecode = errors.New("image decode failed")

// Decoder reads the pixel dimensions of a file.
type Decoder interface {
	Open(path string) (Box, error)
}

// ConfigDecoder reads image headers with image.DecodeConfig, avoiding a full
// pixel decode.
type ConfigDecoder struct{}

// Open returns the dimensions of the image at path. Every failure, including
// a missing file, wraps ErrDecode.
func (ConfigDecoder) Open(path string) (Box, error) {
	file, err := os.Open(path)
	if err != nil {
		return Box{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logging.Warn("failed to close image file %s: %v", path, err)
		}
	}()

	config, format, err := image.DecodeConfig(file)
	if err != nil {
		return Box{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if config.Width <= 0 || config.Height <= 0 {
		return Box{}, fmt.Errorf("%w: empty %s image", ErrDecode, format)
	}

	logging.Debug("Decoded %s header for %s: %dx%d", format, path, config.Width, config.Height)
	return Box{Width: config.Width, Height: config.Height}, nil
}
