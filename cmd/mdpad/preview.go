// ABOUTME: Preview command for rendering a file as sanitized HTML.
// ABOUTME: Writes a standalone page to stdout or a file.

package main

import (
	"fmt"
	"os"

	"github.com/harper/mdpad/internal/render"
	"github.com/harper/mdpad/internal/ui"
	"github.com/spf13/cobra"
)

var previewCmd = &cobra.Command{
	Use:   "preview <id>",
	Short: "Render a file to HTML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		output, _ := cmd.Flags().GetString("output")
		fragment, _ := cmd.Flags().GetBool("fragment")

		f, err := mdApp.Files.GetFile(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("failed to get file: %w", err)
		}

		var html string
		if fragment {
			html = render.Preview(f.Content)
		} else {
			html, err = render.Page(f.Name, f.Content)
			if err != nil {
				return fmt.Errorf("failed to render page: %w", err)
			}
		}

		if output == "" {
			fmt.Print(html)
			return nil
		}
		if err := os.WriteFile(output, []byte(html), 0600); err != nil {
			return fmt.Errorf("failed to write preview: %w", err)
		}
		fmt.Println(ui.Success(fmt.Sprintf("Wrote preview of file %d to %s", id, output)))
		return nil
	},
}

func init() {
	previewCmd.Flags().StringP("output", "o", "", "write HTML to file instead of stdout")
	previewCmd.Flags().Bool("fragment", false, "emit only the rendered body")
	rootCmd.AddCommand(previewCmd)
}
