// ABOUTME: Edit command for modifying existing files.
// ABOUTME: Opens file content in $EDITOR for modification.

package main

import (
	"fmt"

	"github.com/harper/mdpad/internal/ui"
	"github.com/spf13/cobra"
)

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a file",
	Long:  `Open a file in $EDITOR for editing.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		f, err := mdApp.Files.GetFile(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("failed to get file: %w", err)
		}

		newContent, err := openEditor(f.Content)
		if err != nil {
			return fmt.Errorf("failed to open editor: %w", err)
		}

		if newContent == f.Content {
			fmt.Println("No changes made.")
			return nil
		}

		f.Content = newContent
		if _, err := mdApp.Files.UpdateFile(cmd.Context(), f); err != nil {
			return fmt.Errorf("failed to update file: %w", err)
		}

		fmt.Println(ui.Success(fmt.Sprintf("Updated file %d", f.ID)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(editCmd)
}
