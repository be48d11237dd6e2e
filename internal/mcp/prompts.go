// ABOUTME: MCP prompts for common writing workflows.
// ABOUTME: Provides pre-configured prompts for AI agent interactions.

package mcp

import (
	"context"
	"fmt"
	"strconv"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerPrompts() {
	s.server.AddPrompt(&mcp.Prompt{
		Name:        "outline-document",
		Description: "Draft a structured markdown outline for a new document",
		Arguments: []*mcp.PromptArgument{
			{
				Name:        "topic",
				Description: "What the document is about",
				Required:    true,
			},
		},
	}, s.getOutlinePrompt)

	s.server.AddPrompt(&mcp.Prompt{
		Name:        "review-file",
		Description: "Review an existing file for clarity and markdown structure",
		Arguments: []*mcp.PromptArgument{
			{
				Name:        "file_id",
				Description: "ID of the file to review",
				Required:    true,
			},
		},
	}, s.getReviewPrompt)
}

func userPrompt(text string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Messages: []*mcp.PromptMessage{
			{
				Role: "user",
				Content: &mcp.TextContent{
					Text: text,
				},
			},
		},
	}
}

func (s *Server) getOutlinePrompt(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	topic, ok := req.Params.Arguments["topic"]
	if !ok || topic == "" {
		topic = "Untitled"
	}

	template := fmt.Sprintf(`Write a markdown outline for a document about: %s

Please structure it with:

# [Title]

## Summary
[One paragraph]

## Background
- [Context point]

## Main Points
1. [Point 1]
2. [Point 2]

## Open Questions
- [ ] [Question]

Use the create_file tool to save it, naming the file after the title.`, topic)

	return userPrompt(template), nil
}

func (s *Server) getReviewPrompt(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	raw := req.Params.Arguments["file_id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid file_id %q", raw)
	}

	f, err := s.app.Files.GetFile(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get file: %w", err)
	}

	template := fmt.Sprintf(`Review the markdown file %q (id %d).

Check for:
- Unclear sentences and missing context
- Heading structure and list formatting
- Broken or placeholder links

Suggest concrete edits, then apply the ones I accept with the update_file tool.

---

%s`, f.Name, f.ID, f.Content)

	return userPrompt(template), nil
}
