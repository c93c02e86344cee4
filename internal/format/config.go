package format

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultAdminWidth is used when the formats file does not size the admin
// thumbnail.
const DefaultAdminWidth = 100

// File is the YAML layout of a formats file.
type File struct {
	Contexts []ContextConfig `yaml:"contexts"`
	Admin    *Settings       `yaml:"admin"`
}

// ContextConfig lists the formats of one context.
type ContextConfig struct {
	Name    string         `yaml:"name"`
	Formats []FormatConfig `yaml:"formats"`
}

// FormatConfig is one format entry; Name is the short label.
type FormatConfig struct {
	Name     string `yaml:"name"`
	Settings `yaml:",inline"`
}

// LoadFile registers the formats described by the YAML file at path.
func LoadFile(path string, r *Registry) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open formats file: %w", err)
	}
	defer f.Close()

	if err := Load(f, r); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// Load registers the formats described by a YAML document. Each entry is
// registered as "<context>_<name>"; the admin format is always registered.
func Load(src io.Reader, r *Registry) error {
	var file File
	dec := yaml.NewDecoder(src)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && err != io.EOF {
		return fmt.Errorf("failed to parse formats: %w", err)
	}

	for _, ctx := range file.Contexts {
		if ctx.Name == "" {
			return fmt.Errorf("context without a name")
		}
		for _, fc := range ctx.Formats {
			if fc.Name == "" {
				return fmt.Errorf("context %s: format without a name", ctx.Name)
			}
			if fc.Width <= 0 && fc.Height <= 0 {
				return fmt.Errorf("format %s_%s: width or height is required", ctx.Name, fc.Name)
			}
			if err := r.Register(Name(ctx.Name, fc.Name), fc.Settings); err != nil {
				return err
			}
		}
	}

	admin := Settings{Width: DefaultAdminWidth}
	if file.Admin != nil {
		admin = *file.Admin
		if admin.Width <= 0 && admin.Height <= 0 {
			admin.Width = DefaultAdminWidth
		}
	}
	return r.Register(Admin, admin)
}
