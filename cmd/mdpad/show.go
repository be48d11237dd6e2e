// ABOUTME: Show command for displaying a single file.
// ABOUTME: Renders markdown with glamour unless --raw is given.

package main

import (
	"fmt"

	"github.com/harper/mdpad/internal/ui"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a file",
	Long:  `Display a file's metadata and rendered content.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		raw, _ := cmd.Flags().GetBool("raw")

		f, err := mdApp.Files.GetFile(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("failed to get file: %w", err)
		}

		if raw {
			fmt.Print(f.Content)
			return nil
		}

		fmt.Print(ui.FormatFileHeader(f))
		fmt.Print(ui.FormatFileContent(f.Content, cfg.WrapWidth, cfg.GlamourStyle))
		return nil
	},
}

func init() {
	showCmd.Flags().Bool("raw", false, "print markdown without rendering")
	rootCmd.AddCommand(showCmd)
}
