// ABOUTME: Rename command for changing a file's name.

package main

import (
	"fmt"
	"strings"

	"github.com/harper/mdpad/internal/models"
	"github.com/harper/mdpad/internal/ui"
	"github.com/spf13/cobra"
)

var renameCmd = &cobra.Command{
	Use:   "rename <id> <name>",
	Short: "Rename a file",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		name := strings.Join(args[1:], " ")

		ok, err := mdApp.Rename(cmd.Context(), id, name)
		if err != nil {
			return fmt.Errorf("failed to rename file: %w", err)
		}
		if !ok {
			return fmt.Errorf("file %d not found", id)
		}

		fmt.Println(ui.Success(fmt.Sprintf("Renamed file %d to %q", id, models.NormalizeName(name))))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(renameCmd)
}
