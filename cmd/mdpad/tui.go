// ABOUTME: TUI command for the interactive editor.

package main

import (
	"github.com/harper/mdpad/internal/tui"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive editor",
	Long:  `Open the split-pane editor with a file list, editor, and live preview. This is also what mdpad runs with no subcommand.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return tui.Run(cmd.Context(), mdApp)
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}
