package index

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/halvard/tavla/internal/models"
)

// CanvasRow represents a row in the canvases table.
type CanvasRow struct {
	ID        string
	Name      string
	Checksum  string
	Elements  int
	UpdatedAt time.Time
}

// SearchResult represents one search hit.
type SearchResult struct {
	CanvasID string `json:"canvasId"`
	Name     string `json:"name"`
	Snippet  string `json:"snippet"`
}

// UpsertCanvas inserts or replaces a canvas row plus its FTS entry.
func (db *DB) UpsertCanvas(row CanvasRow, body string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO canvases (id, name, checksum, body, elements, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name       = excluded.name,
			checksum   = excluded.checksum,
			body       = excluded.body,
			elements   = excluded.elements,
			updated_at = excluded.updated_at
	`, row.ID, row.Name, row.Checksum, body, row.Elements, row.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert canvas: %w", err)
	}

	if err := ftsUpsert(tx, row.ID, row.Name, body); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteCanvas removes a canvas row and its FTS entry.
func (db *DB) DeleteCanvas(id string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, id)
	_, _ = tx.Exec(`DELETE FROM canvases WHERE id = ?`, id)

	return tx.Commit()
}

// GetChecksum returns the stored checksum for a canvas, or empty string
// when the canvas is not indexed.
func (db *DB) GetChecksum(id string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM canvases WHERE id = ?`, id).Scan(&cs)
	if err != nil {
		return "", nil // not indexed is fine
	}
	return cs, nil
}

// AllChecksums returns every indexed canvas id mapped to its checksum.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT id, checksum FROM canvases`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var id, cs string
		if err := rows.Scan(&id, &cs); err != nil {
			return nil, err
		}
		out[id] = cs
	}
	return out, rows.Err()
}

// ListCanvases returns indexed canvases ordered by last update.
func (db *DB) ListCanvases(limit int) ([]CanvasRow, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := db.conn.Query(`
		SELECT id, name, checksum, elements, updated_at
		FROM canvases
		ORDER BY updated_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("index: list canvases: %w", err)
	}
	defer rows.Close()

	var out []CanvasRow
	for rows.Next() {
		var r CanvasRow
		if err := rows.Scan(&r.ID, &r.Name, &r.Checksum, &r.Elements, &r.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// IndexDocument parses a raw canvas document and upserts its searchable
// content: the canvas name plus every element's note and text.
func (db *DB) IndexDocument(id string, data []byte, checksum string) error {
	var canvas models.Canvas
	if err := json.Unmarshal(data, &canvas); err != nil {
		return fmt.Errorf("index: parse canvas %s: %w", id, err)
	}
	return db.UpsertCanvas(CanvasRow{
		ID:        id,
		Name:      canvas.Name,
		Checksum:  checksum,
		Elements:  len(canvas.Elements),
		UpdatedAt: time.Now(),
	}, searchableText(&canvas))
}

// searchableText flattens the content a user would search for.
func searchableText(c *models.Canvas) string {
	var parts []string
	for _, e := range c.Elements {
		if e.Note != "" {
			parts = append(parts, e.Note)
		}
		if e.Text != "" {
			parts = append(parts, e.Text)
		}
	}
	return strings.Join(parts, "\n")
}
