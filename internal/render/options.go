package render

import "fmt"

// SrcsetOption is either an explicit list of formats or a literal attribute
// value.
type SrcsetOption struct {
	Formats []string `json:"formats,omitempty"`
	Raw     string   `json:"raw,omitempty"`
}

// PictureEntry is one source of a picture group. An empty Media asks for a
// max-width query derived from the format's box.
type PictureEntry struct {
	Media  string `json:"media,omitempty"`
	Format string `json:"format"`
}

// Options controls how a plan is built. A nil Srcset or Picture means the
// option is absent.
type Options struct {
	Srcset     *SrcsetOption     `json:"srcset,omitempty"`
	Picture    []PictureEntry    `json:"picture,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// Validate reports contradictory options.
func (o Options) Validate() error {
	if o.Srcset != nil && o.Picture != nil {
		return fmt.Errorf("%w: srcset and picture cannot be used together", ErrInvalidOptions)
	}
	if o.Srcset != nil && o.Srcset.Raw != "" && len(o.Srcset.Formats) > 0 {
		return fmt.Errorf("%w: srcset takes either a format list or a raw value", ErrInvalidOptions)
	}
	for i, e := range o.Picture {
		if e.Format == "" {
			return fmt.Errorf("%w: picture entry %d has no format", ErrInvalidOptions, i)
		}
	}
	return nil
}
