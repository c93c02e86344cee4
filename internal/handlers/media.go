package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"media-library/internal/logging"
	"media-library/internal/media"

	"github.com/gorilla/mux"
)

const defaultContext = "default"

// UploadMedia ingests a multipart upload and stores its record.
func (h *Handlers) UploadMedia(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > h.maxUploadSize {
		writeJSONError(w, "upload too large", http.StatusRequestEntityTooLarge)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSONError(w, "upload too large", http.StatusRequestEntityTooLarge)
			return
		}
		writeJSONError(w, "invalid multipart form", http.StatusBadRequest)
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			logging.Warn("failed to remove multipart files: %v", err)
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSONError(w, "file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	asset := &media.Asset{
		Context:     strings.TrimSpace(r.FormValue("context")),
		Name:        strings.TrimSpace(r.FormValue("name")),
		Description: r.FormValue("description"),
		ContentType: header.Header.Get("Content-Type"),
	}
	if asset.Context == "" {
		asset.Context = defaultContext
	}
	if asset.Name == "" {
		asset.Name = header.Filename
	}
	if v := r.FormValue("cdnIsFlushable"); v != "" {
		flushable, err := strconv.ParseBool(v)
		if err != nil {
			writeJSONError(w, "invalid cdnIsFlushable value", http.StatusBadRequest)
			return
		}
		asset.CDNIsFlushable = flushable
	}

	if err := h.provider.Validate(header.Filename, asset.ContentType); err != nil {
		writeError(w, err)
		return
	}

	if err := h.provider.Ingest(r.Context(), asset, file, header.Filename); err != nil {
		writeError(w, err)
		return
	}

	if err := h.store.Create(r.Context(), asset); err != nil {
		if rmErr := h.provider.Remove(r.Context(), asset); rmErr != nil {
			logging.Warn("failed to clean up files of media %s: %v", asset.ID, rmErr)
		}
		writeError(w, err)
		return
	}

	writeJSONStatus(w, http.StatusCreated, asset)
}

// ListMedia lists the assets of a context, newest first.
func (h *Handlers) ListMedia(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 50)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	mediaContext := r.URL.Query().Get("context")
	if mediaContext == "" {
		mediaContext = defaultContext
	}

	assets, err := h.store.ListByContext(r.Context(), mediaContext, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	if assets == nil {
		assets = []*media.Asset{}
	}
	writeJSONStatus(w, http.StatusOK, assets)
}

// GetMedia returns one asset record.
func (h *Handlers) GetMedia(w http.ResponseWriter, r *http.Request) {
	asset, ok := h.loadAsset(w, r)
	if !ok {
		return
	}
	writeJSONStatus(w, http.StatusOK, asset)
}

// DeleteMedia removes the files and the record of an asset.
func (h *Handlers) DeleteMedia(w http.ResponseWriter, r *http.Request) {
	asset, ok := h.loadAsset(w, r)
	if !ok {
		return
	}

	if err := h.provider.Remove(r.Context(), asset); err != nil {
		logging.Warn("failed to remove files of media %s: %v", asset.ID, err)
	}
	if err := h.store.Delete(r.Context(), asset.ID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateMetadata re-reads the stored reference and saves the outcome. A
// failed extraction is saved with status error and still returns 200.
func (h *Handlers) UpdateMetadata(w http.ResponseWriter, r *http.Request) {
	asset, ok := h.loadAsset(w, r)
	if !ok {
		return
	}

	if err := h.provider.UpdateMetadata(r.Context(), asset); err != nil {
		logging.Warn("Metadata of media %s downgraded to %s: %v", asset.ID, asset.Status, err)
	}

	if err := h.store.Update(r.Context(), asset); err != nil {
		writeError(w, err)
		return
	}
	writeJSONStatus(w, http.StatusOK, asset)
}

func (h *Handlers) loadAsset(w http.ResponseWriter, r *http.Request) (*media.Asset, bool) {
	id := mux.Vars(r)["id"]
	if id == "" {
		writeJSONError(w, "media id is required", http.StatusBadRequest)
		return nil, false
	}
	asset, err := h.store.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return asset, true
}
