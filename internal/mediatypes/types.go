package mediatypes

import (
	"path/filepath"
	"strings"
)

// FileType represents the kind of a media file.
type FileType string

const (
	// FileTypeImage represents a decodable raster image.
	FileTypeImage FileType = "image"
	// FileTypeOther represents an unknown or unsupported file type.
	FileTypeOther FileType = "other"
)

// ImageMimeTypes maps supported image extensions to their MIME types.
var ImageMimeTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".webp": "image/webp",
	".tiff": "image/tiff",
	".tif":  "image/tiff",
}

// preferredExtensions maps a MIME type to the extension used when an upload
// has none.
var preferredExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/bmp":  ".bmp",
	"image/webp": ".webp",
	"image/tiff": ".tiff",
}

// Extension returns the lowercase extension of a filename including the dot.
func Extension(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

// IsImageExtension reports whether ext (lowercase, with dot) is supported.
func IsImageExtension(ext string) bool {
	_, ok := ImageMimeTypes[ext]
	return ok
}

// IsImageMimeType reports whether mime names a supported image type.
// Parameters such as "; charset=" are ignored.
func IsImageMimeType(mime string) bool {
	_, ok := preferredExtensions[baseMime(mime)]
	return ok
}

// ExtensionForMimeType returns the preferred extension for a MIME type, or
// an empty string.
func ExtensionForMimeType(mime string) string {
	return preferredExtensions[baseMime(mime)]
}

// GetFileType returns the FileType for a given file extension.
func GetFileType(ext string) FileType {
	if IsImageExtension(ext) {
		return FileTypeImage
	}
	return FileTypeOther
}

// GetMimeType returns the MIME type for a given file extension.
// Returns "application/octet-stream" if the extension is not recognized.
func GetMimeType(ext string) string {
	if mime, ok := ImageMimeTypes[ext]; ok {
		return mime
	}
	return "application/octet-stream"
}

func baseMime(mime string) string {
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	return strings.ToLower(strings.TrimSpace(mime))
}
