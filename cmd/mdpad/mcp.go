// ABOUTME: MCP command for running the Model Context Protocol server.
// ABOUTME: Serves files, tools, and prompts over stdio.

package main

import (
	"github.com/harper/mdpad/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run MCP server",
	Long:  `Run the Model Context Protocol server on stdio so AI agents can read and edit files.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return mcp.NewServer(mdApp, version, logger).Serve(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
