package cdn

import (
	"strconv"
	"strings"
	"sync/atomic"

	"media-library/internal/logging"
)

// DefaultBasePath is where stored files are served when nothing else is
// configured.
const DefaultBasePath = "/media"

// Server serves files from a base path or absolute base URL.
type Server struct {
	BasePath string

	flushes atomic.Int64
}

// New returns a server rooted at basePath. An empty basePath uses
// DefaultBasePath.
func New(basePath string) *Server {
	if basePath == "" {
		basePath = DefaultBasePath
	}
	return &Server{BasePath: basePath}
}

// Path joins the base path and a relative key with exactly one slash.
// Whether the asset is flushable does not change the URL of a plain server.
func (s *Server) Path(relativePath string, flushable bool) string {
	return strings.TrimRight(s.BasePath, "/") + "/" + strings.TrimLeft(relativePath, "/")
}

// Flush asks the CDN to drop cached copies of path. A plain server has no
// cache; the returned identifier only counts requests.
func (s *Server) Flush(path string) string {
	id := s.flushes.Add(1)
	logging.Debug("CDN flush #%d requested for %s", id, path)
	return strconv.FormatInt(id, 10)
}
