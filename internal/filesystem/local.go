package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"media-library/internal/logging"
)

// ErrInvalidKey is returned for keys that are empty or escape the root.
var ErrInvalidKey = errors.New("invalid storage key")

// Local stores files under a root directory. Keys are slash separated paths
// relative to the root.
type Local struct {
	root     string
	retry    RetryConfig
	observer Observer
}

// Option configures a Local store.
type Option func(*Local)

// WithRetryConfig overrides the NFS retry settings.
func WithRetryConfig(c RetryConfig) Option {
	return func(l *Local) { l.retry = c }
}

// WithObserver sets the metrics observer.
func WithObserver(o Observer) Option {
	return func(l *Local) {
		if o != nil {
			l.observer = o
		}
	}
}

// NewLocal creates the root directory if needed and returns a store.
func NewLocal(root string, opts ...Option) (*Local, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage root: %w", err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}

	l := &Local{
		root:     abs,
		retry:    DefaultRetryConfig(),
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(l)
	}
	logging.Debug("Local storage rooted at %s", abs)
	return l, nil
}

// Root returns the absolute root directory.
func (l *Local) Root() string {
	return l.root
}

// Path maps a key to an absolute filesystem path inside the root.
func (l *Local) Path(key string) (string, error) {
	clean := path.Clean("/" + strings.TrimSpace(key))
	if clean == "/" || strings.Contains(key, "\x00") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	// Clean on a rooted path already removed any "..", so the join stays inside.
	return filepath.Join(l.root, filepath.FromSlash(clean)), nil
}

// Open returns a reader for key.
func (l *Local) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := l.Path(key)
	if err != nil {
		return nil, err
	}
	return OpenWithRetry(p, l.retry, l.observer)
}

// Exists reports whether key is present.
func (l *Local) Exists(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	p, err := l.Path(key)
	if err != nil {
		return false, err
	}
	_, err = StatWithRetry(p, l.retry, l.observer)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}

// Write stores the content of r under key, replacing any existing file.
// The file is written to a sibling temp file first and renamed into place.
func (l *Local) Write(ctx context.Context, key string, r io.Reader) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	p, err := l.Path(key)
	if err != nil {
		return 0, err
	}

	start := time.Now()
	n, err := writeAtomic(p, r)
	l.observer.ObserveOperation("write", time.Since(start).Seconds(), err)
	return n, err
}

func writeAtomic(p string, r io.Reader) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return 0, fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(p), ".upload-*")
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err := os.Remove(tmpName); err != nil && !os.IsNotExist(err) {
			logging.Warn("failed to remove temp file %s: %v", tmpName, err)
		}
	}()

	n, copyErr := io.Copy(tmp, r)
	closeErr := tmp.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		return n, fmt.Errorf("failed to write %s: %w", p, err)
	}

	if err := os.Rename(tmpName, p); err != nil {
		return n, fmt.Errorf("failed to move %s into place: %w", p, err)
	}
	return n, nil
}

// Remove deletes key. A missing file is not an error.
func (l *Local) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := l.Path(key)
	if err != nil {
		return err
	}

	start := time.Now()
	err = os.Remove(p)
	if errors.Is(err, os.ErrNotExist) {
		err = nil
	}
	l.observer.ObserveOperation("remove", time.Since(start).Seconds(), err)
	return err
}
