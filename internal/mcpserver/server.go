// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Ansuz tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/stallerud/ansuz/internal/bridge"
	"github.com/stallerud/ansuz/internal/index"
	"github.com/stallerud/ansuz/internal/notestore"
	"github.com/stallerud/ansuz/internal/storage"
)

// Server wraps the MCP server with Ansuz tools.
type Server struct {
	mcp    *server.MCPServer
	store  storage.Provider
	engine *notestore.Engine
	db     index.GraphIndex
	bridge *bridge.Service
}

// New creates a new MCP server with all Ansuz tools registered.
func New(store storage.Provider, engine *notestore.Engine, db index.GraphIndex, br *bridge.Service) *Server {
	s := &Server{store: store, engine: engine, db: db, bridge: br}

	s.mcp = server.NewMCPServer(
		"Ansuz",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_nodes",
		mcp.WithDescription("Full-text search through indexed note content and titles."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchNodes)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read the full content of a vault note."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the note (e.g. 20240101T120000--title.org)")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("create_note",
		mcp.WithDescription("Create a new note from a title and optional tags. "+
			"The filename and identifier are generated; do not supply content. "+
			"Read the format contract first via the get_note_contract tool or the "+
			"ansuz://note-format resource."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Human-readable note title")),
		mcp.WithString("tags", mcp.Description("Optional space-separated tags (lowercase)")),
	), s.createNote)

	s.mcp.AddTool(mcp.NewTool("ensure_identifier",
		mcp.WithDescription("Assign a fresh identifier block to a note, replacing any existing one. "+
			"Notes in the excluded category are skipped."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path of the note")),
	), s.ensureIdentifier)

	s.mcp.AddTool(mcp.NewTool("audit_unlinked",
		mcp.WithDescription("List vault notes that carry no identifier block."),
		mcp.WithString("dir", mcp.Description("Optional subdirectory to scan (empty for vault root)")),
		mcp.WithString("recursive", mcp.Description("Pass \"true\" to descend into subdirectories")),
	), s.auditUnlinked)

	s.mcp.AddTool(mcp.NewTool("list_linked",
		mcp.WithDescription("List indexed nodes living under a vault directory."),
		mcp.WithString("dir", mcp.Description("Optional subdirectory (empty for vault root)")),
	), s.listLinked)

	s.mcp.AddTool(mcp.NewTool("get_backrefs",
		mcp.WithDescription("Find all notes that reference the given identifier."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Node identifier to find references to")),
	), s.getBackrefs)

	s.mcp.AddTool(mcp.NewTool("get_note_contract",
		mcp.WithDescription("Returns the canonical Ansuz note format contract. "+
			"Call this before creating notes to understand the file structure."),
	), s.getNoteContract)

	// Resource: note format contract.
	s.mcp.AddResource(
		mcp.NewResource("ansuz://note-format", "Note Format Contract",
			mcp.WithResourceDescription("Canonical org note format that all notes follow."),
			mcp.WithMIMEType("text/plain"),
		),
		s.readNoteFormatResource,
	)

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

func (s *Server) searchNodes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
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

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := s.store.Read(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) createNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	tags := strings.Fields(req.GetString("tags", ""))

	path, err := s.engine.Create(title, tags)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", path)), nil
}

func (s *Server) ensureIdentifier(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, skipped, err := s.bridge.EnsureIdentifier(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if skipped {
		return mcp.NewToolResultText(fmt.Sprintf("skipped (excluded): %s", path)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("identifier %s assigned to %s", id, path)), nil
}

func (s *Server) auditUnlinked(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dir := ""
	if d, err := req.RequireString("dir"); err == nil {
		dir = d
	}
	recursive := false
	if r, err := req.RequireString("recursive"); err == nil {
		recursive = r == "true"
	}

	paths, err := s.bridge.ScanUnlinked(dir, recursive)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(paths) == 0 {
		return mcp.NewToolResultText("no unlinked notes"), nil
	}
	return mcp.NewToolResultText(strings.Join(paths, "\n")), nil
}

func (s *Server) listLinked(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dir := ""
	if d, err := req.RequireString("dir"); err == nil {
		dir = d
	}

	paths, err := s.bridge.ScanLinked(dir)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(paths) == 0 {
		return mcp.NewToolResultText("no linked notes"), nil
	}
	return mcp.NewToolResultText(strings.Join(paths, "\n")), nil
}

func (s *Server) getBackrefs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	refs, err := s.db.Backrefs(id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(refs) == 0 {
		return mcp.NewToolResultText("no backrefs found"), nil
	}
	return mcp.NewToolResultText(strings.Join(refs, "\n")), nil
}

func (s *Server) getNoteContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(NoteFormatContract), nil
}

func (s *Server) readNoteFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "ansuz://note-format",
			MIMEType: "text/plain",
			Text:     NoteFormatContract,
		},
	}, nil
}
