// ABOUTME: MCP server for mdpad integration with AI agents.
// ABOUTME: Provides tools, resources, and prompts for markdown file management.

package mcp

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/harper/mdpad/internal/app"
	"github.com/harper/mdpad/internal/logging"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type Server struct {
	server  *mcp.Server
	app     *app.App
	logger  *log.Logger
	version string
}

func NewServer(a *app.App, version string, logger *log.Logger) *Server {
	if logger == nil {
		logger = logging.Discard()
	}
	s := &Server{app: a, logger: logger, version: version}

	s.server = mcp.NewServer(
		&mcp.Implementation{
			Name:    "mdpad",
			Version: version,
		},
		&mcp.ServerOptions{
			HasTools:     true,
			HasResources: true,
			HasPrompts:   true,
		},
	)

	s.registerTools()
	s.registerResources()
	s.registerPrompts()

	return s
}

func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("mcp server starting", "version", s.version)
	return s.server.Run(ctx, &mcp.StdioTransport{})
}
