package mcpserver

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/halvard/tavla/internal/index"
	"github.com/halvard/tavla/internal/models"
	"github.com/halvard/tavla/internal/store"
)

func testServer(t *testing.T) (*Server, *store.FS) {
	t.Helper()

	dataDir := t.TempDir()
	fs, err := store.NewFS(dataDir)
	if err != nil {
		t.Fatal(err)
	}

	dbFile, err := os.CreateTemp("", "tavla-mcp-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	srv := New(fs, db)
	return srv, fs
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper, so the handler
	// functions are invoked directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "search_canvases":
		result, err = srv.searchCanvases(ctx, req)
	case "read_canvas":
		result, err = srv.readCanvas(ctx, req)
	case "list_canvases":
		result, err = srv.listCanvases(ctx, req)
	case "get_tree":
		result, err = srv.getTree(ctx, req)
	case "get_element_notes":
		result, err = srv.getElementNotes(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestReadCanvas(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "read_canvas", map[string]interface{}{"id": "main"})
	text := resultText(r)
	if !strings.Contains(text, `"Main Canvas"`) {
		t.Errorf("read result = %q, want main canvas JSON", text)
	}
}

func TestReadCanvasMissing(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "read_canvas", map[string]interface{}{"id": "nope"})
	if !r.IsError {
		t.Error("expected error for missing canvas")
	}
}

func TestListCanvases(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "list_canvases", map[string]interface{}{})
	text := resultText(r)
	if !strings.Contains(text, "main\tMain Canvas") {
		t.Errorf("list result = %q", text)
	}
}

func TestGetTree(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "get_tree", map[string]interface{}{})
	text := resultText(r)
	if !strings.Contains(text, `"rootCanvases"`) {
		t.Errorf("tree result = %q", text)
	}
}

func TestGetElementNotes(t *testing.T) {
	srv, fs := testServer(t)

	ctx := context.Background()
	canvas, err := fs.LoadCanvas(ctx, models.MainCanvasID)
	if err != nil {
		t.Fatal(err)
	}
	canvas.Elements = []*models.Element{
		{ID: "r1", Type: models.TypeRectangle, X: 0, Y: 0, Width: 10, Height: 10, Note: "ship it"},
		{ID: "r2", Type: models.TypeRectangle, X: 20, Y: 0, Width: 10, Height: 10},
	}
	if _, err := fs.SaveCanvas(ctx, canvas); err != nil {
		t.Fatal(err)
	}

	r := callTool(t, srv, "get_element_notes", map[string]interface{}{"id": "main"})
	text := resultText(r)
	if !strings.Contains(text, "r1 (rectangle): ship it") {
		t.Errorf("notes = %q", text)
	}
	if strings.Contains(text, "r2") {
		t.Errorf("noteless element listed: %q", text)
	}
}

func TestSearchCanvases(t *testing.T) {
	srv, fs := testServer(t)

	ctx := context.Background()
	canvas, err := fs.LoadCanvas(ctx, models.MainCanvasID)
	if err != nil {
		t.Fatal(err)
	}
	canvas.Elements = []*models.Element{
		{ID: "t1", Type: models.TypeText, X: 0, Y: 0, Width: 100, Height: 20, Text: "roadmap draft"},
	}
	saved, err := fs.SaveCanvas(ctx, canvas)
	if err != nil {
		t.Fatal(err)
	}

	raw, err := fs.ReadCanvasRaw(saved.ID)
	if err != nil {
		t.Fatal(err)
	}
	if err := srv.db.IndexDocument(saved.ID, raw, store.Checksum(raw)); err != nil {
		t.Fatal(err)
	}

	r := callTool(t, srv, "search_canvases", map[string]interface{}{"query": "roadmap"})
	text := resultText(r)
	if !strings.Contains(text, "main") {
		t.Errorf("search result = %q, want hit on main", text)
	}
}
