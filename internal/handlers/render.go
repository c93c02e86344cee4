package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"media-library/internal/format"
	"media-library/internal/logging"
	"media-library/internal/render"
)

const attrPrefix = "attr."

// RenderMedia returns the render parameters of an asset in a format.
//
// Query parameters:
//
//	format      format name, short labels expand within the asset's context
//	srcset      comma separated format list
//	srcset.raw  literal srcset value
//	picture     [media query=]format, repeatable
//	attr.<key>  extra attribute
//	output      json (default) or html
func (h *Handlers) RenderMedia(w http.ResponseWriter, r *http.Request) {
	asset, ok := h.loadAsset(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	output := q.Get("output")
	if output != "" && output != "json" && output != "html" {
		writeJSONError(w, "output must be json or html", http.StatusBadRequest)
		return
	}

	result, err := h.provider.HelperProperties(asset, formatParam(q), parseRenderOptions(q))
	if err != nil {
		writeError(w, err)
		return
	}

	if output == "html" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := render.WriteHTML(w, result); err != nil {
			logging.Error("failed to write markup for media %s: %v", asset.ID, err)
		}
		return
	}
	writeJSONStatus(w, http.StatusOK, result)
}

// GetMediaURLs returns the public and private URL of an asset in a format.
func (h *Handlers) GetMediaURLs(w http.ResponseWriter, r *http.Request) {
	asset, ok := h.loadAsset(w, r)
	if !ok {
		return
	}
	name := formatParam(r.URL.Query())
	writeJSONStatus(w, http.StatusOK, map[string]string{
		"format":  name,
		"public":  h.provider.PublicURL(asset, name),
		"private": h.provider.PrivateURL(asset, name),
	})
}

// ListFormats returns the registered formats, optionally for one context.
func (h *Handlers) ListFormats(w http.ResponseWriter, r *http.Request) {
	var formats []format.Format
	if c := r.URL.Query().Get("context"); c != "" {
		formats = h.formats.ForContext(c)
	} else {
		formats = h.formats.All()
	}
	if formats == nil {
		formats = []format.Format{}
	}
	writeJSONStatus(w, http.StatusOK, formats)
}

func formatParam(q url.Values) string {
	if name := strings.TrimSpace(q.Get("format")); name != "" {
		return name
	}
	return format.Reference
}

// parseRenderOptions maps query parameters to render options. Presence of a
// key enables its option even when the value is empty, so contradictory
// requests reach Validate.
func parseRenderOptions(q url.Values) render.Options {
	var opts render.Options

	_, hasList := q["srcset"]
	_, hasRaw := q["srcset.raw"]
	if hasList || hasRaw {
		opts.Srcset = &render.SrcsetOption{Raw: q.Get("srcset.raw")}
		for _, v := range q["srcset"] {
			for _, name := range strings.Split(v, ",") {
				if name = strings.TrimSpace(name); name != "" {
					opts.Srcset.Formats = append(opts.Srcset.Formats, name)
				}
			}
		}
	}

	if entries, ok := q["picture"]; ok {
		opts.Picture = make([]render.PictureEntry, 0, len(entries))
		for _, v := range entries {
			opts.Picture = append(opts.Picture, parsePictureEntry(v))
		}
	}

	for key, values := range q {
		if !strings.HasPrefix(key, attrPrefix) || len(values) == 0 {
			continue
		}
		name := strings.TrimPrefix(key, attrPrefix)
		if name == "" {
			continue
		}
		if opts.Attributes == nil {
			opts.Attributes = make(map[string]string)
		}
		opts.Attributes[name] = values[0]
	}

	return opts
}

// parsePictureEntry splits "media=format". Media queries never contain '=',
// so everything after the last one is the format.
func parsePictureEntry(v string) render.PictureEntry {
	if i := strings.LastIndex(v, "="); i >= 0 {
		return render.PictureEntry{
			Media:  strings.TrimSpace(v[:i]),
			Format: strings.TrimSpace(v[i+1:]),
		}
	}
	return render.PictureEntry{Format: strings.TrimSpace(v)}
}
