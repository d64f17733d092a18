package mcpserver

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/dagaz/internal/engine"
	"github.com/starford/dagaz/internal/health"
	"github.com/starford/dagaz/internal/parser"
	"github.com/starford/dagaz/internal/scanner"
	"github.com/starford/dagaz/internal/testutil"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	_, store := testutil.TestDocs(t)
	eng := engine.New(store, engine.Config{
		Scan: scanner.Config{Rules: parser.DefaultRules()},
		Health: health.Config{
			Roots:          []string{"index.md"},
			DefaultCadence: 180 * 24 * time.Hour,
		},
	}, testutil.Logger(t))
	return New(store, eng)
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go does not expose a direct "call tool" test helper, so we invoke
	// the handler functions directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "search_docs":
		result, err = srv.searchDocs(ctx, req)
	case "read_doc":
		result, err = srv.readDoc(ctx, req)
	case "list_by_tag":
		result, err = srv.listByTag(ctx, req)
	case "doc_summary":
		result, err = srv.docSummary(ctx, req)
	case "check_health":
		result, err = srv.checkHealth(ctx, req)
	case "get_doc_contract":
		result, err = srv.getDocContract(ctx, req)
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

func TestSearchDocs(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "search_docs", map[string]interface{}{"query": "execution"})
	text := resultText(r)
	if !strings.Contains(text, "active/architecture/execution-engine.md") {
		t.Errorf("search result = %q", text)
	}

	r = callTool(t, srv, "search_docs", map[string]interface{}{"query": "zzz-nothing"})
	if resultText(r) != "no matches" {
		t.Errorf("empty search = %q", resultText(r))
	}
}

func TestReadDoc(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "read_doc", map[string]interface{}{"path": "index.md"})
	if !strings.Contains(resultText(r), "title: Documentation Index") {
		t.Errorf("read result = %q", resultText(r))
	}

	r = callTool(t, srv, "read_doc", map[string]interface{}{"path": "nope.md"})
	if !r.IsError {
		t.Error("expected error for missing doc")
	}
}

func TestListByTag(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "list_by_tag", map[string]interface{}{"tag": "architecture"})
	text := resultText(r)
	for _, want := range []string{
		"active/architecture/core-concepts.md",
		"active/architecture/execution-engine.md",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("list_by_tag missing %s in %q", want, text)
		}
	}
}

func TestDocSummary(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "doc_summary", map[string]interface{}{"path": "active/architecture/core-concepts.md"})
	text := resultText(r)
	for _, want := range []string{`"title": "Core Concepts"`, `"backlinks"`, `"outbound"`} {
		if !strings.Contains(text, want) {
			t.Errorf("summary missing %s:\n%s", want, text)
		}
	}

	r = callTool(t, srv, "doc_summary", map[string]interface{}{"path": "nope.md"})
	if !r.IsError {
		t.Error("expected error for missing doc")
	}
}

func TestCheckHealth(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "check_health", nil)
	text := resultText(r)
	if !strings.Contains(text, "misc/bare.md") {
		t.Errorf("health report missing failed file:\n%s", text)
	}
	if !strings.Contains(text, "documents checked") {
		t.Errorf("health report missing summary:\n%s", text)
	}
}

func TestGetDocContract(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "get_doc_contract", nil)
	if !strings.Contains(resultText(r), "Document Format Contract") {
		t.Error("contract text missing")
	}
}
