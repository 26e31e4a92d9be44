package api

import (
	"io"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
)

const maxUploadBytes = 50 << 20 // 50 MB

// ImageHandler serves and accepts image files.
type ImageHandler struct {
	svc *Service
}

// NewImageHandler creates a handler backed by the API service.
func NewImageHandler(svc *Service) *ImageHandler {
	return &ImageHandler{svc: svc}
}

// ServeFile handles GET /api/images/{filename}.
func (h *ImageHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	abs, err := h.svc.ImagePath(filename)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid filename"))
		return
	}
	if _, statErr := os.Stat(abs); os.IsNotExist(statErr) {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	http.ServeFile(w, r, abs)
}

// Upload handles POST /api/upload (multipart/form-data, field "file").
// The stored filename is a fresh UUID keeping the original extension.
func (h *ImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("missing 'file' field in multipart form"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read upload"))
		return
	}

	up, err := h.svc.UploadImage(r.Context(), header.Filename, data)
	if err != nil {
		writeError(w, "upload image", err)
		return
	}
	writeJSON(w, http.StatusOK, up)
}
