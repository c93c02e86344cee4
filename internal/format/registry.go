package format

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

const (
	// Reference identifies the original, unmodified upload.
	Reference = "reference"
	// Admin identifies the back-office thumbnail format.
	Admin = "admin"
)

var (
	// ErrUnknownFormat is returned when a format name is not registered.
	ErrUnknownFormat = errors.New("unknown format")
	// ErrDuplicateFormat is returned when a name is registered twice.
	ErrDuplicateFormat = errors.New("format already registered")
)

// Settings are passed through to the resizer untouched. A zero Width or
// Height means the side is derived from the intrinsic aspect ratio.
type Settings struct {
	Width      int    `json:"width,omitempty" yaml:"width"`
	Height     int    `json:"height,omitempty" yaml:"height"`
	Quality    int    `json:"quality,omitempty" yaml:"quality"`
	Extension  string `json:"extension,omitempty" yaml:"format"`
	Constraint bool   `json:"constraint,omitempty" yaml:"constraint"`
	Resizer    string `json:"resizer,omitempty" yaml:"resizer"`
}

// Format is a registered rendering target.
type Format struct {
	Name     string   `json:"name"`
	Settings Settings `json:"settings"`
}

// Registry holds formats in registration order.
type Registry struct {
	mu      sync.RWMutex
	formats map[string]Format
	order   []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{formats: make(map[string]Format)}
}

// Register adds a format. Names are unique and formats are immutable once
// registered.
func (r *Registry) Register(name string, settings Settings) error {
	if name == "" {
		return fmt.Errorf("format name is required")
	}
	if name == Reference {
		return fmt.Errorf("%q is reserved for the original upload", Reference)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.formats[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateFormat, name)
	}
	r.formats[name] = Format{Name: name, Settings: settings}
	r.order = append(r.order, name)
	return nil
}

// Lookup returns the format registered under name.
func (r *Registry) Lookup(name string) (Format, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.formats[name]
	if !ok {
		return Format{}, fmt.Errorf("%w: %q is not defined", ErrUnknownFormat, name)
	}
	return f, nil
}

// ForContext returns the formats that belong to context, in registration
// order.
func (r *Registry) ForContext(context string) []Format {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Format
	for _, name := range r.order {
		if BelongsTo(name, context) {
			out = append(out, r.formats[name])
		}
	}
	return out
}

// All returns every registered format in registration order.
func (r *Registry) All() []Format {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Format, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.formats[name])
	}
	return out
}

// Len returns the number of registered formats.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// BelongsTo reports whether a format applies to a context. This is a plain
// case-sensitive prefix match, so "gallery" also matches "gallery2_x".
func BelongsTo(formatName, context string) bool {
	return strings.HasPrefix(formatName, context)
}

// Name expands a short format label to its registered name within a
// context. Reference, Admin and names that already carry the context prefix
// are returned unchanged.
func Name(context, id string) string {
	if id == Reference || id == Admin {
		return id
	}
	prefix := context + "_"
	if strings.HasPrefix(id, prefix) {
		return id
	}
	return prefix + id
}
