// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes dagaz tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/dagaz/internal/engine"
	"github.com/starford/dagaz/internal/query"
	"github.com/starford/dagaz/internal/storage"
)

// Server wraps the MCP server with dagaz tools.
type Server struct {
	mcp   *server.MCPServer
	store storage.Provider
	eng   *engine.Engine
}

// New creates a new MCP server with all dagaz tools registered.
func New(store storage.Provider, eng *engine.Engine) *Server {
	s := &Server{store: store, eng: eng}

	s.mcp = server.NewMCPServer(
		"Dagaz",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_docs",
		mcp.WithDescription("Search documents by keyword in titles and bodies."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchDocs)

	s.mcp.AddTool(mcp.NewTool("read_doc",
		mcp.WithDescription("Read the full content of a Markdown document."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the document (e.g. guides/intro.md)")),
	), s.readDoc)

	s.mcp.AddTool(mcp.NewTool("list_by_tag",
		mcp.WithDescription("List all documents carrying a tag."),
		mcp.WithString("tag", mcp.Required(), mcp.Description("Tag to filter by (case-insensitive)")),
	), s.listByTag)

	s.mcp.AddTool(mcp.NewTool("doc_summary",
		mcp.WithDescription("Summarize one document: metadata, outbound references, backlinks, and health issues."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path of the document to summarize")),
	), s.docSummary)

	s.mcp.AddTool(mcp.NewTool("check_health",
		mcp.WithDescription("Run the repository health checks and return the report: "+
			"broken links, stale documents, orphans, and frontmatter problems."),
	), s.checkHealth)

	s.mcp.AddTool(mcp.NewTool("get_doc_contract",
		mcp.WithDescription("Returns the canonical dagaz document format contract. "+
			"Call this before creating documents to ensure correct structure."),
	), s.getDocContract)

	// Resource: document format contract.
	s.mcp.AddResource(
		mcp.NewResource("dagaz://doc-format", "Document Format Contract",
			mcp.WithResourceDescription("Canonical Markdown document format that all documents must follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readDocFormatResource,
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

// snapshot returns the current snapshot, rebuilding on first use.
func (s *Server) snapshot(ctx context.Context) (*engine.Snapshot, error) {
	if snap := s.eng.Snapshot(); snap != nil {
		return snap, nil
	}
	return s.eng.Rebuild(ctx)
}

func (s *Server) searchDocs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	snap, err := s.snapshot(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	docs := query.ByKeyword(snap.Collection, q)
	if len(docs) == 0 {
		return mcp.NewToolResultText("no matches"), nil
	}
	var lines []string
	for _, doc := range docs {
		lines = append(lines, fmt.Sprintf("%s\t%s", doc.Path, doc.Title))
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) readDoc(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
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

func (s *Server) listByTag(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tag, err := req.RequireString("tag")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	snap, err := s.snapshot(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	docs := query.ByTag(snap.Collection, tag)
	if len(docs) == 0 {
		return mcp.NewToolResultText("no documents with tag " + tag), nil
	}
	var lines []string
	for _, doc := range docs {
		lines = append(lines, doc.Path)
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) docSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	snap, err := s.snapshot(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sum, err := query.Summarize(snap.Collection, snap.Graph, snap.Report, path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	out, _ := json.MarshalIndent(map[string]any{
		"path":      sum.Document.Path,
		"title":     sum.Document.Title,
		"category":  sum.Document.Category,
		"status":    sum.Document.Status,
		"tags":      sum.Document.Tags,
		"outbound":  sum.Outbound,
		"backlinks": sum.Backlinks,
		"issues":    sum.Issues,
	}, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) checkHealth(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap, err := s.eng.Rebuild(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(snap.Report.Format()), nil
}

func (s *Server) getDocContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(DocFormatContract), nil
}

func (s *Server) readDocFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "dagaz://doc-format",
			MIMEType: "text/markdown",
			Text:     DocFormatContract,
		},
	}, nil
}
