package render

import (
	"encoding/json"
	"errors"
	"strconv"
)

// ImageParams are the attributes of an img element.
type ImageParams struct {
	Alt    string
	Title  string
	Src    string
	Width  int
	Height int
	Srcset string
	Sizes  string
	// Extra holds passthrough attributes. They replace computed keys.
	Extra map[string]string
}

// Attributes flattens the params. Srcset and sizes are omitted when empty.
func (p ImageParams) Attributes() map[string]string {
	m := map[string]string{
		"alt":    p.Alt,
		"title":  p.Title,
		"src":    p.Src,
		"width":  strconv.Itoa(p.Width),
		"height": strconv.Itoa(p.Height),
	}
	if p.Srcset != "" {
		m["srcset"] = p.Srcset
	}
	if p.Sizes != "" {
		m["sizes"] = p.Sizes
	}
	for k, v := range p.Extra {
		m[k] = v
	}
	return m
}

// values is Attributes with numeric width and height kept as numbers.
func (p ImageParams) values() map[string]any {
	m := make(map[string]any, len(p.Extra)+7)
	for k, v := range p.Attributes() {
		m[k] = v
	}
	if _, ok := p.Extra["width"]; !ok {
		m["width"] = p.Width
	}
	if _, ok := p.Extra["height"]; !ok {
		m["height"] = p.Height
	}
	return m
}

// Source is one entry of a picture group.
type Source struct {
	Media  string `json:"media"`
	Srcset string `json:"srcset"`
}

// Picture is a picture group with its img fallback.
type Picture struct {
	Sources []Source
	Img     ImageParams
}

// Result holds exactly one of Image or Picture.
type Result struct {
	Image   *ImageParams
	Picture *Picture
}

// IsPicture reports whether the result is a picture group.
func (r *Result) IsPicture() bool {
	return r.Picture != nil
}

// MarshalJSON emits either the flat attribute map or
// {"picture":{"source":[...],"img":{...}}}.
func (r Result) MarshalJSON() ([]byte, error) {
	switch {
	case r.Picture != nil && r.Image != nil:
		return nil, errors.New("render result has both image and picture")
	case r.Picture != nil:
		sources := r.Picture.Sources
		if sources == nil {
			sources = []Source{}
		}
		return json.Marshal(map[string]any{
			"picture": map[string]any{
				"source": sources,
				"img":    r.Picture.Img.values(),
			},
		})
	case r.Image != nil:
		return json.Marshal(r.Image.values())
	default:
		return nil, errors.New("render result is empty")
	}
}
