// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Tavla board tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/halvard/tavla/internal/index"
	"github.com/halvard/tavla/internal/store"
)

// Server wraps the MCP server with Tavla tools.
type Server struct {
	mcp *server.MCPServer
	fs  *store.FS
	db  *index.DB
}

// New creates a new MCP server with all Tavla tools registered.
func New(fs *store.FS, db *index.DB) *Server {
	s := &Server{fs: fs, db: db}

	s.mcp = server.NewMCPServer(
		"Tavla",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_canvases",
		mcp.WithDescription("Full-text search through canvas names, notes and text elements."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchCanvases)

	s.mcp.AddTool(mcp.NewTool("read_canvas",
		mcp.WithDescription("Read a canvas document as JSON, including all its elements."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Canvas id (e.g. main)")),
	), s.readCanvas)

	s.mcp.AddTool(mcp.NewTool("list_canvases",
		mcp.WithDescription("List all canvases with their names, one per line."),
	), s.listCanvases)

	s.mcp.AddTool(mcp.NewTool("get_tree",
		mcp.WithDescription("Get the canvas hierarchy (roots, parents and children) as JSON."),
	), s.getTree)

	s.mcp.AddTool(mcp.NewTool("get_element_notes",
		mcp.WithDescription("List the notes attached to elements of a canvas."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Canvas id")),
	), s.getElementNotes)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) searchCanvases(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.db.Search(query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readCanvas(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	canvas, err := s.fs.LoadCanvas(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	out, _ := json.MarshalIndent(canvas, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listCanvases(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t, err := s.fs.LoadTree(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var lines []string
	for id, node := range t.Canvases {
		lines = append(lines, fmt.Sprintf("%s\t%s", id, node.Name))
	}
	sort.Strings(lines)
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) getTree(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t, err := s.fs.LoadTree(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(t, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getElementNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	canvas, err := s.fs.LoadCanvas(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}

	var lines []string
	for _, el := range canvas.Elements {
		if el.Note != "" {
			lines = append(lines, fmt.Sprintf("%s (%s): %s", el.ID, el.Type, el.Note))
		}
	}
	if len(lines) == 0 {
		return mcp.NewToolResultText("no notes found"), nil
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}
