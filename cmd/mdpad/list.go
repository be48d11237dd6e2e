// ABOUTME: List command for displaying files.
// ABOUTME: Most recently updated first, optionally as JSON.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/harper/mdpad/internal/ui"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List files",
	Long:    `List all files, most recently updated first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonFlag, _ := cmd.Flags().GetBool("json")
		limitFlag, _ := cmd.Flags().GetInt("limit")

		files, err := mdApp.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list files: %w", err)
		}
		if limitFlag > 0 && len(files) > limitFlag {
			files = files[:limitFlag]
		}

		if jsonFlag {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(files)
		}

		if len(files) == 0 {
			fmt.Print(ui.FormatEmptyList())
			return nil
		}
		for _, f := range files {
			fmt.Print(ui.FormatFileListItem(f))
		}
		return nil
	},
}

func init() {
	listCmd.Flags().Bool("json", false, "output as JSON")
	listCmd.Flags().IntP("limit", "n", 0, "max files to show (0 for all)")
	rootCmd.AddCommand(listCmd)
}
