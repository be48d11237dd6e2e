// ABOUTME: MCP tools for markdown file CRUD, export, preview, and formatting.
// ABOUTME: Maps CLI functionality to the MCP tool interface.

package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/harper/mdpad/internal/editor"
	"github.com/harper/mdpad/internal/files"
	"github.com/harper/mdpad/internal/models"
	"github.com/harper/mdpad/internal/render"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerTools() {
	// list_files
	s.server.AddTool(&mcp.Tool{
		Name:        "list_files",
		Description: "List markdown files, most recently updated first",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"limit": {"type": "integer", "description": "Max results (0 for all)", "default": 0}
			}
		}`),
	}, s.handleListFiles)

	// get_file
	s.server.AddTool(&mcp.Tool{
		Name:        "get_file",
		Description: "Get a markdown file by ID",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"id": {"type": "integer", "description": "File ID"}
			},
			"required": ["id"]
		}`),
	}, s.handleGetFile)

	// create_file
	s.server.AddTool(&mcp.Tool{
		Name:        "create_file",
		Description: "Create a markdown file. A blank name becomes \"Untitled\"",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"name": {"type": "string", "description": "File name"},
				"content": {"type": "string", "description": "Markdown content"}
			}
		}`),
	}, s.handleCreateFile)

	// update_file
	s.server.AddTool(&mcp.Tool{
		Name:        "update_file",
		Description: "Update a file's name or content",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"id": {"type": "integer", "description": "File ID"},
				"name": {"type": "string", "description": "New name"},
				"content": {"type": "string", "description": "New content"}
			},
			"required": ["id"]
		}`),
	}, s.handleUpdateFile)

	// rename_file
	s.server.AddTool(&mcp.Tool{
		Name:        "rename_file",
		Description: "Rename a file",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"id": {"type": "integer", "description": "File ID"},
				"name": {"type": "string", "description": "New name"}
			},
			"required": ["id", "name"]
		}`),
	}, s.handleRenameFile)

	// delete_file
	s.server.AddTool(&mcp.Tool{
		Name:        "delete_file",
		Description: "Delete a file permanently",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"id": {"type": "integer", "description": "File ID"}
			},
			"required": ["id"]
		}`),
	}, s.handleDeleteFile)

	// export_file
	s.server.AddTool(&mcp.Tool{
		Name:        "export_file",
		Description: "Export a file as a .md document",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"id": {"type": "integer", "description": "File ID"},
				"frontmatter": {"type": "boolean", "description": "Prefix YAML frontmatter with title and timestamps"}
			},
			"required": ["id"]
		}`),
	}, s.handleExportFile)

	// render_preview
	s.server.AddTool(&mcp.Tool{
		Name:        "render_preview",
		Description: "Render markdown to sanitized HTML, either a stored file or the given text",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"id": {"type": "integer", "description": "File ID to render"},
				"markdown": {"type": "string", "description": "Markdown to render when no id is given"}
			}
		}`),
	}, s.handleRenderPreview)

	// insert_format
	s.server.AddTool(&mcp.Tool{
		Name:        "insert_format",
		Description: "Wrap a selection of markdown with a named format or a custom prefix and suffix. Offsets count characters",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"content": {"type": "string", "description": "Markdown text"},
				"start": {"type": "integer", "description": "Selection start"},
				"end": {"type": "integer", "description": "Selection end"},
				"format": {"type": "string", "description": "bold, italic, strikethrough, code, code-block, h1, h2, h3, quote, bullet, numbered, task, link, image, rule"},
				"prefix": {"type": "string", "description": "Custom prefix when no format is given"},
				"suffix": {"type": "string", "description": "Custom suffix when no format is given"}
			},
			"required": ["content", "start", "end"]
		}`),
	}, s.handleInsertFormat)
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

func errorResult(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf(format, args...)},
		},
		IsError: true,
	}
}

func jsonResult(v any) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult("failed to encode result: %v", err)
	}
	return textResult(string(data))
}

type fileSummary struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	UpdatedAt time.Time `json:"updated_at"`
	Size      int       `json:"size"`
}

func (s *Server) handleListFiles(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		Limit int `json:"limit"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return nil, err
	}

	list, err := s.app.List(ctx)
	if err != nil {
		return errorResult("failed to list files: %v", err), nil
	}
	if params.Limit > 0 && len(list) > params.Limit {
		list = list[:params.Limit]
	}

	out := make([]fileSummary, 0, len(list))
	for _, f := range list {
		out = append(out, fileSummary{ID: f.ID, Name: f.Name, UpdatedAt: f.UpdatedAt, Size: len(f.Content)})
	}
	return jsonResult(out), nil
}

func (s *Server) handleGetFile(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return nil, err
	}

	f, err := s.app.Files.GetFile(ctx, params.ID)
	if err != nil {
		return errorResult("failed to get file: %v", err), nil
	}
	return jsonResult(f), nil
}

func (s *Server) handleCreateFile(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		Name    string `json:"name"`
		Content string `json:"content"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return nil, err
	}

	id, err := s.app.Files.CreateFile(ctx, models.NewFile(params.Name, params.Content))
	if err != nil {
		return errorResult("failed to create file: %v", err), nil
	}
	s.logger.Info("created file via mcp", "id", id)
	return textResult(fmt.Sprintf("Created file %d", id)), nil
}

func (s *Server) handleUpdateFile(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		ID      int64   `json:"id"`
		Name    *string `json:"name"`
		Content *string `json:"content"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return nil, err
	}
	if params.Name == nil && params.Content == nil {
		return errorResult("nothing to update: give name or content"), nil
	}

	f, err := s.app.Files.GetFile(ctx, params.ID)
	if err != nil {
		return errorResult("failed to get file: %v", err), nil
	}
	if params.Name != nil {
		f.Name = *params.Name
	}
	if params.Content != nil {
		f.Content = *params.Content
	}
	if _, err := s.app.Files.UpdateFile(ctx, f); err != nil {
		return errorResult("failed to update file: %v", err), nil
	}
	return textResult(fmt.Sprintf("Updated file %d", f.ID)), nil
}

func (s *Server) handleRenameFile(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return nil, err
	}

	ok, err := s.app.Files.RenameFile(ctx, params.ID, params.Name)
	if err != nil {
		return errorResult("failed to rename file: %v", err), nil
	}
	if !ok {
		return errorResult("file %d not found", params.ID), nil
	}
	return textResult(fmt.Sprintf("Renamed file %d to %q", params.ID, models.NormalizeName(params.Name))), nil
}

func (s *Server) handleDeleteFile(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return nil, err
	}

	if err := s.app.Delete(ctx, params.ID); err != nil {
		return errorResult("failed to delete file: %v", err), nil
	}
	return textResult(fmt.Sprintf("Deleted file %d", params.ID)), nil
}

type exportPayload struct {
	Filename  string `json:"filename"`
	MediaType string `json:"media_type"`
	Content   string `json:"content"`
}

func (s *Server) handleExportFile(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		ID          int64 `json:"id"`
		Frontmatter bool  `json:"frontmatter"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return nil, err
	}

	var opts []files.ExportOption
	if params.Frontmatter {
		opts = append(opts, files.WithFrontmatter())
	}
	e, err := s.app.Files.ExportFile(ctx, params.ID, opts...)
	if err != nil {
		return errorResult("failed to export file: %v", err), nil
	}
	defer e.Release()

	data, err := e.Bytes()
	if err != nil {
		return errorResult("failed to read export: %v", err), nil
	}
	return jsonResult(exportPayload{
		Filename:  e.Filename(),
		MediaType: e.MediaType(),
		Content:   string(data),
	}), nil
}

func (s *Server) handleRenderPreview(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		ID       int64  `json:"id"`
		Markdown string `json:"markdown"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return nil, err
	}

	markdown := params.Markdown
	if params.ID != 0 {
		f, err := s.app.Files.GetFile(ctx, params.ID)
		if err != nil {
			return errorResult("failed to get file: %v", err), nil
		}
		markdown = f.Content
	}
	return textResult(render.Preview(markdown)), nil
}

type formatPayload struct {
	Content string `json:"content"`
	Caret   int    `json:"caret"`
}

func (s *Server) handleInsertFormat(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		Content string `json:"content"`
		Start   int    `json:"start"`
		End     int    `json:"end"`
		Format  string `json:"format"`
		Prefix  string `json:"prefix"`
		Suffix  string `json:"suffix"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return nil, err
	}

	prefix, suffix := params.Prefix, params.Suffix
	if params.Format != "" {
		f, ok := editor.LookupFormat(params.Format)
		if !ok {
			return errorResult("unknown format %q", params.Format), nil
		}
		prefix, suffix = f.Prefix, f.Suffix
	}

	out, caret, err := editor.Insert(params.Content, params.Start, params.End, prefix, suffix)
	if err != nil {
		if errors.Is(err, editor.ErrBadSelection) {
			return errorResult("invalid selection: %v", err), nil
		}
		return errorResult("failed to format: %v", err), nil
	}
	return jsonResult(formatPayload{Content: out, Caret: caret}), nil
}
