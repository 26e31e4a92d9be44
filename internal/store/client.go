package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/halvard/tavla/internal/apperr"
	"github.com/halvard/tavla/internal/models"
)

// Client implements Store against the remote HTTP surface.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient creates a store client for the given base URL (e.g.
// "http://localhost:8080"). token, when non-empty, is sent as a Bearer
// credential.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("store: build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("store: %s %s: %v: %w", method, path, err, apperr.ErrStoreUnavailable)
	}
	return resp, nil
}

// decodeOrError closes the response body and decodes it into out on
// success, or maps the status code onto the apperr sentinels.
func decodeOrError(resp *http.Response, out any) error {
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return apperr.ErrNotFound
	case resp.StatusCode == http.StatusBadRequest:
		return apperr.ErrInvalidInput
	case resp.StatusCode >= 500:
		return fmt.Errorf("store: server status %d: %w", resp.StatusCode, apperr.ErrStoreUnavailable)
	case resp.StatusCode >= 300:
		return fmt.Errorf("store: unexpected status %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("store: decode response: %w", err)
	}
	return nil
}

// LoadCanvas fetches GET /api/canvas/:id.
func (c *Client) LoadCanvas(ctx context.Context, id string) (*models.Canvas, error) {
	if err := models.ValidateID(id); err != nil {
		return nil, fmt.Errorf("store: canvas id %q: %w", id, apperr.ErrInvalidInput)
	}
	resp, err := c.do(ctx, http.MethodGet, "/api/canvas/"+url.PathEscape(id), nil, "")
	if err != nil {
		return nil, err
	}
	var canvas models.Canvas
	if err := decodeOrError(resp, &canvas); err != nil {
		return nil, err
	}
	return &canvas, nil
}

// SaveCanvas issues PUT /api/canvas/:id and returns the authoritative
// record with the server-stamped modified timestamp.
func (c *Client) SaveCanvas(ctx context.Context, canvas *models.Canvas) (*models.Canvas, error) {
	body, err := json.Marshal(canvas)
	if err != nil {
		return nil, fmt.Errorf("store: encode canvas: %w", err)
	}
	resp, err := c.do(ctx, http.MethodPut, "/api/canvas/"+url.PathEscape(canvas.ID), bytes.NewReader(body), "application/json")
	if err != nil {
		return nil, err
	}
	var saved models.Canvas
	if err := decodeOrError(resp, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

// CreateCanvas issues POST /api/canvas.
func (c *Client) CreateCanvas(ctx context.Context, name string, parentID *string) (*models.Canvas, error) {
	body, _ := json.Marshal(map[string]any{"name": name, "parentId": parentID})
	resp, err := c.do(ctx, http.MethodPost, "/api/canvas", bytes.NewReader(body), "application/json")
	if err != nil {
		return nil, err
	}
	var canvas models.Canvas
	if err := decodeOrError(resp, &canvas); err != nil {
		return nil, err
	}
	return &canvas, nil
}

// DeleteCanvas issues DELETE /api/canvas/:id.
func (c *Client) DeleteCanvas(ctx context.Context, id string) error {
	if err := models.ValidateID(id); err != nil {
		return fmt.Errorf("store: canvas id %q: %w", id, apperr.ErrInvalidInput)
	}
	resp, err := c.do(ctx, http.MethodDelete, "/api/canvas/"+url.PathEscape(id), nil, "")
	if err != nil {
		return err
	}
	return decodeOrError(resp, nil)
}

// LoadTree fetches GET /api/tree.
func (c *Client) LoadTree(ctx context.Context) (*models.Tree, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/tree", nil, "")
	if err != nil {
		return nil, err
	}
	var t models.Tree
	if err := decodeOrError(resp, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// SaveTree issues PUT /api/tree.
func (c *Client) SaveTree(ctx context.Context, t *models.Tree) error {
	body, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("store: encode tree: %w", err)
	}
	resp, err := c.do(ctx, http.MethodPut, "/api/tree", bytes.NewReader(body), "application/json")
	if err != nil {
		return err
	}
	return decodeOrError(resp, nil)
}

// UploadImage posts a multipart blob to /api/upload.
func (c *Client) UploadImage(ctx context.Context, name string, data []byte) (*UploadedImage, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return nil, fmt.Errorf("store: build multipart: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("store: write multipart: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("store: close multipart: %w", err)
	}
	resp, err := c.do(ctx, http.MethodPost, "/api/upload", &buf, mw.FormDataContentType())
	if err != nil {
		return nil, err
	}
	var up UploadedImage
	if err := decodeOrError(resp, &up); err != nil {
		return nil, err
	}
	return &up, nil
}

var _ Store = (*Client)(nil)
var _ Store = (*FS)(nil)
