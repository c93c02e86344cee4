package render

import (
	"bufio"
	"errors"
	"html"
	"io"
	"maps"
	"slices"
)

// WriteHTML writes the markup of r: an img element, or a picture element
// with its sources followed by the img fallback. Attributes are written in
// name order and escaped.
func WriteHTML(w io.Writer, r *Result) error {
	if r == nil || (r.Image == nil && r.Picture == nil) {
		return errors.New("render result is empty")
	}

	bw := bufio.NewWriter(w)
	if r.Picture != nil {
		bw.WriteString("<picture>")
		for _, s := range r.Picture.Sources {
			writeElement(bw, "source", map[string]string{"media": s.Media, "srcset": s.Srcset})
		}
		writeElement(bw, "img", r.Picture.Img.Attributes())
		bw.WriteString("</picture>")
	} else {
		writeElement(bw, "img", r.Image.Attributes())
	}
	return bw.Flush()
}

func writeElement(w *bufio.Writer, tag string, attrs map[string]string) {
	w.WriteByte('<')
	w.WriteString(tag)
	for _, k := range slices.Sorted(maps.Keys(attrs)) {
		w.WriteByte(' ')
		w.WriteString(html.EscapeString(k))
		w.WriteString(`="`)
		w.WriteString(html.EscapeString(attrs[k]))
		w.WriteByte('"')
	}
	w.WriteByte('>')
}
