// ABOUTME: Export command for downloading a file as markdown.
// ABOUTME: Writes to disk, stdout, or the clipboard.

package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/atotto/clipboard"
	"github.com/harper/mdpad/internal/files"
	"github.com/harper/mdpad/internal/ui"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Export a file",
	Long: `Export a file as a markdown document.

By default the file is written to <name>.md in the current directory.
Use -o - to write to stdout, or --clipboard to copy the content.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		output, _ := cmd.Flags().GetString("output")
		withFM, _ := cmd.Flags().GetBool("frontmatter")
		toClipboard, _ := cmd.Flags().GetBool("clipboard")

		var opts []files.ExportOption
		if withFM {
			opts = append(opts, files.WithFrontmatter())
		}

		var buf bytes.Buffer
		filename, err := mdApp.ExportTo(cmd.Context(), id, &buf, opts...)
		if err != nil {
			return fmt.Errorf("failed to export file: %w", err)
		}

		switch {
		case toClipboard:
			if err := clipboard.WriteAll(buf.String()); err != nil {
				return fmt.Errorf("failed to copy to clipboard: %w", err)
			}
			fmt.Println(ui.Success(fmt.Sprintf("Copied file %d to clipboard", id)))
			return nil
		case output == "-":
			_, err := os.Stdout.Write(buf.Bytes())
			return err
		}

		if output == "" {
			output = filename
		}
		if err := os.WriteFile(output, buf.Bytes(), 0600); err != nil {
			return fmt.Errorf("failed to write export: %w", err)
		}

		fmt.Println(ui.Success(fmt.Sprintf("Exported file %d to %s", id, output)))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringP("output", "o", "", "output path (- for stdout)")
	exportCmd.Flags().Bool("frontmatter", false, "include YAML frontmatter")
	exportCmd.Flags().Bool("clipboard", false, "copy to clipboard instead of writing a file")
	rootCmd.AddCommand(exportCmd)
}
