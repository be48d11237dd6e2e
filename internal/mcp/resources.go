// ABOUTME: MCP resources exposing markdown files as readable documents.
// ABOUTME: Allows AI agents to read file content via the mdpad:// URI scheme.

package mcp

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/harper/mdpad/internal/files"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const fileURIPrefix = "mdpad://file/"

func (s *Server) registerResources() {
	// The SDK lists resources from the template.
	s.server.AddResourceTemplate(
		&mcp.ResourceTemplate{
			URITemplate: fileURIPrefix + "{id}",
			Name:        "Markdown file",
			Description: "Access individual markdown files by ID",
			MIMEType:    files.MediaTypeMarkdown,
		},
		s.handleReadResource,
	)
}

func parseFileURI(uri string) (int64, error) {
	raw, ok := strings.CutPrefix(uri, fileURIPrefix)
	if !ok {
		return 0, fmt.Errorf("invalid resource URI: %s", uri)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid file id in URI: %s", uri)
	}
	return id, nil
}

func (s *Server) handleReadResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	id, err := parseFileURI(req.Params.URI)
	if err != nil {
		return nil, err
	}

	f, err := s.app.Files.GetFile(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get file: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      req.Params.URI,
				MIMEType: files.MediaTypeMarkdown,
				Text:     f.Content,
			},
		},
	}, nil
}
