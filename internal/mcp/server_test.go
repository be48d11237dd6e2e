// ABOUTME: Tests for MCP tool, resource, and prompt handlers.
// ABOUTME: Calls handlers directly against a bolt-backed app.

package mcp

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/harper/mdpad/internal/app"
	"github.com/harper/mdpad/internal/files"
	"github.com/harper/mdpad/internal/models"
	"github.com/harper/mdpad/internal/store"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s, err := store.OpenBolt(filepath.Join(t.TempDir(), "mcp.bolt"))
	if err != nil {
		t.Fatalf("OpenBolt failed: %v", err)
	}
	a := app.NewWithManager(nil, files.NewManagerForStore(s, files.WithoutSeed()), nil)
	t.Cleanup(func() { _ = a.Close() })
	return NewServer(a, "test", nil)
}

func call(t *testing.T, handler func(context.Context, *mcp.CallToolRequest) (*mcp.CallToolResult, error), args string) (string, bool) {
	t.Helper()
	res, err := handler(context.Background(), &mcp.CallToolRequest{
		Params: &mcp.CallToolParamsRaw{Arguments: json.RawMessage(args)},
	})
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if len(res.Content) != 1 {
		t.Fatalf("expected one content item, got %d", len(res.Content))
	}
	text, ok := res.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", res.Content[0])
	}
	return text.Text, res.IsError
}

func seed(t *testing.T, s *Server, name, content string) int64 {
	t.Helper()
	id, err := s.app.Files.CreateFile(context.Background(), models.NewFile(name, content))
	if err != nil {
		t.Fatalf("CreateFile failed: %v", err)
	}
	return id
}

func TestCreateAndGetFile(t *testing.T) {
	s := newTestServer(t)

	text, isErr := call(t, s.handleCreateFile, `{"name":"  ","content":"# hi"}`)
	if isErr || text != "Created file 1" {
		t.Fatalf("unexpected create result %q (error=%v)", text, isErr)
	}

	text, isErr = call(t, s.handleGetFile, `{"id":1}`)
	if isErr {
		t.Fatalf("get failed: %s", text)
	}
	var f models.MarkdownFile
	if err := json.Unmarshal([]byte(text), &f); err != nil {
		t.Fatalf("bad json %q: %v", text, err)
	}
	if f.Name != models.DefaultName || f.Content != "# hi" {
		t.Errorf("unexpected file %+v", f)
	}
}

func TestGetMissingFileIsToolError(t *testing.T) {
	s := newTestServer(t)
	text, isErr := call(t, s.handleGetFile, `{"id":99}`)
	if !isErr || !strings.Contains(text, "not found") {
		t.Errorf("expected not found tool error, got %q (error=%v)", text, isErr)
	}
}

func TestListFilesLimit(t *testing.T) {
	s := newTestServer(t)
	seed(t, s, "a", "")
	seed(t, s, "b", "")
	seed(t, s, "c", "")

	text, isErr := call(t, s.handleListFiles, `{"limit":2}`)
	if isErr {
		t.Fatalf("list failed: %s", text)
	}
	var out []fileSummary
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if len(out) != 2 {
		t.Errorf("expected 2 files, got %d", len(out))
	}
}

func TestUpdateFile(t *testing.T) {
	s := newTestServer(t)
	id := seed(t, s, "doc", "old")

	if text, isErr := call(t, s.handleUpdateFile, `{"id":1,"content":"new"}`); isErr {
		t.Fatalf("update failed: %s", text)
	}
	f, _ := s.app.Files.GetFile(context.Background(), id)
	if f.Content != "new" || f.Name != "doc" {
		t.Errorf("unexpected file after update %+v", f)
	}

	if _, isErr := call(t, s.handleUpdateFile, `{"id":1}`); !isErr {
		t.Error("expected error when nothing to update")
	}
	if _, isErr := call(t, s.handleUpdateFile, `{"id":5,"name":"x"}`); !isErr {
		t.Error("expected error updating missing file")
	}
}

func TestRenameAndDelete(t *testing.T) {
	s := newTestServer(t)
	id := seed(t, s, "before", "")

	text, isErr := call(t, s.handleRenameFile, `{"id":1,"name":"after"}`)
	if isErr || !strings.Contains(text, "after") {
		t.Fatalf("unexpected rename result %q", text)
	}
	if _, isErr := call(t, s.handleRenameFile, `{"id":7,"name":"x"}`); !isErr {
		t.Error("expected error renaming missing file")
	}

	if text, isErr := call(t, s.handleDeleteFile, `{"id":1}`); isErr {
		t.Fatalf("delete failed: %s", text)
	}
	if _, err := s.app.Files.GetFile(context.Background(), id); err == nil {
		t.Error("expected file to be deleted")
	}
}

func TestExportFile(t *testing.T) {
	s := newTestServer(t)
	seed(t, s, "report", "# Report")

	text, isErr := call(t, s.handleExportFile, `{"id":1,"frontmatter":true}`)
	if isErr {
		t.Fatalf("export failed: %s", text)
	}
	var out exportPayload
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if out.Filename != "report.md" || out.MediaType != files.MediaTypeMarkdown {
		t.Errorf("unexpected export metadata %+v", out)
	}
	if !strings.HasPrefix(out.Content, "---\n") || !strings.Contains(out.Content, "title: report") {
		t.Errorf("expected frontmatter, got %q", out.Content)
	}
	if s.app.Files.OpenExports() != 0 {
		t.Error("expected export handle released")
	}
}

func TestRenderPreview(t *testing.T) {
	s := newTestServer(t)
	seed(t, s, "doc", "**stored**")

	text, _ := call(t, s.handleRenderPreview, `{"markdown":"*inline*"}`)
	if !strings.Contains(text, "<em>inline</em>") {
		t.Errorf("unexpected preview %q", text)
	}
	text, _ = call(t, s.handleRenderPreview, `{"id":1}`)
	if !strings.Contains(text, "<strong>stored</strong>") {
		t.Errorf("unexpected preview %q", text)
	}
}

func TestInsertFormat(t *testing.T) {
	s := newTestServer(t)

	text, isErr := call(t, s.handleInsertFormat, `{"content":"abc","start":0,"end":0,"format":"bold"}`)
	if isErr {
		t.Fatalf("insert failed: %s", text)
	}
	var out formatPayload
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if out.Content != "****abc" || out.Caret != 4 {
		t.Errorf("unexpected result %+v", out)
	}

	text, _ = call(t, s.handleInsertFormat, `{"content":"see docs","start":4,"end":8,"prefix":"[","suffix":"](url)"}`)
	if !strings.Contains(text, "see [docs](url)") {
		t.Errorf("unexpected custom format result %q", text)
	}

	if _, isErr := call(t, s.handleInsertFormat, `{"content":"abc","start":2,"end":9,"format":"bold"}`); !isErr {
		t.Error("expected error for bad selection")
	}
	if _, isErr := call(t, s.handleInsertFormat, `{"content":"abc","start":0,"end":0,"format":"blink"}`); !isErr {
		t.Error("expected error for unknown format")
	}
}

func TestReadResource(t *testing.T) {
	s := newTestServer(t)
	seed(t, s, "doc", "resource body")

	res, err := s.handleReadResource(context.Background(), &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{URI: "mdpad://file/1"},
	})
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(res.Contents) != 1 || res.Contents[0].Text != "resource body" {
		t.Errorf("unexpected contents %+v", res.Contents)
	}

	for _, uri := range []string{"mdpad://file/abc", "other://file/1", "mdpad://file/0"} {
		if _, err := parseFileURI(uri); err == nil {
			t.Errorf("expected %q to be rejected", uri)
		}
	}
}

func TestPrompts(t *testing.T) {
	s := newTestServer(t)
	seed(t, s, "draft", "some words")

	res, err := s.getOutlinePrompt(context.Background(), &mcp.GetPromptRequest{
		Params: &mcp.GetPromptParams{Arguments: map[string]string{"topic": "release notes"}},
	})
	if err != nil {
		t.Fatalf("outline prompt failed: %v", err)
	}
	if text := res.Messages[0].Content.(*mcp.TextContent).Text; !strings.Contains(text, "release notes") {
		t.Errorf("expected topic in prompt, got %q", text)
	}

	res, err = s.getReviewPrompt(context.Background(), &mcp.GetPromptRequest{
		Params: &mcp.GetPromptParams{Arguments: map[string]string{"file_id": "1"}},
	})
	if err != nil {
		t.Fatalf("review prompt failed: %v", err)
	}
	if text := res.Messages[0].Content.(*mcp.TextContent).Text; !strings.Contains(text, "some words") {
		t.Errorf("expected file content in prompt, got %q", text)
	}
}
