package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/halvard/tavla/internal/apperr"
	"github.com/halvard/tavla/internal/models"
)

const maxBodyBytes = 10 << 20

// Handler holds API route handlers.
type Handler struct {
	svc *Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// canvasID extracts and validates the canvas id URL parameter.
func canvasID(r *http.Request) (string, error) {
	id := chi.URLParam(r, "id")
	if err := models.ValidateID(id); err != nil {
		return "", err
	}
	return id, nil
}

// writeError maps apperr sentinels onto HTTP statuses.
func writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrInvalidInput), errors.Is(err, apperr.ErrInvalidTreeEdit):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	default:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

// GetCanvas handles GET /api/canvas/{id}.
func (h *Handler) GetCanvas(w http.ResponseWriter, r *http.Request) {
	id, err := canvasID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid canvas id"))
		return
	}
	canvas, err := h.svc.GetCanvas(r.Context(), id)
	if err != nil {
		writeError(w, "get canvas", err)
		return
	}
	writeJSON(w, http.StatusOK, canvas)
}

// CreateCanvas handles POST /api/canvas.
func (h *Handler) CreateCanvas(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req CreateCanvasRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.ParentID != nil {
		if err := models.ValidateID(*req.ParentID); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("invalid parent id"))
			return
		}
	}
	canvas, err := h.svc.CreateCanvas(r.Context(), req.Name, req.ParentID)
	if err != nil {
		writeError(w, "create canvas", err)
		return
	}
	writeJSON(w, http.StatusOK, canvas)
}

// UpdateCanvas handles PUT /api/canvas/{id}.
func (h *Handler) UpdateCanvas(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	id, err := canvasID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid canvas id"))
		return
	}
	var canvas models.Canvas
	if err := json.NewDecoder(r.Body).Decode(&canvas); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	saved, err := h.svc.SaveCanvas(r.Context(), id, &canvas)
	if err != nil {
		writeError(w, "update canvas", err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// DeleteCanvas handles DELETE /api/canvas/{id}.
func (h *Handler) DeleteCanvas(w http.ResponseWriter, r *http.Request) {
	id, err := canvasID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid canvas id"))
		return
	}
	if err := h.svc.DeleteCanvas(r.Context(), id); err != nil {
		writeError(w, "delete canvas", err)
		return
	}
	writeJSON(w, http.StatusOK, DeleteResponse{Success: true})
}

// GetTree handles GET /api/tree.
func (h *Handler) GetTree(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.GetTree(r.Context())
	if err != nil {
		writeError(w, "get tree", err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// UpdateTree handles PUT /api/tree.
func (h *Handler) UpdateTree(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var t models.Tree
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := h.svc.SaveTree(r.Context(), &t); err != nil {
		writeError(w, "update tree", err)
		return
	}
	writeJSON(w, http.StatusOK, &t)
}

// Search handles GET /api/search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(q, limit)
	if err != nil {
		writeError(w, "search", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"results": results,
	})
}
