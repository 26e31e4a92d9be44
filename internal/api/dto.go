package api

import (
	"github.com/halvard/tavla/internal/index"
	"github.com/halvard/tavla/internal/store"
)

// CreateCanvasRequest is the request body for creating a canvas.
type CreateCanvasRequest struct {
	Name     string  `json:"name,omitempty" example:"Sketches"`
	ParentID *string `json:"parentId,omitempty" example:"main"`
}

// DeleteResponse confirms a successful delete.
type DeleteResponse struct {
	Success bool `json:"success" validate:"required"`
}

// SearchResult is a single search hit in the API response.
type SearchResult = index.SearchResult

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []SearchResult `json:"results" validate:"required"`
}

// UploadResponse is returned after a successful image upload.
type UploadResponse = store.UploadedImage
