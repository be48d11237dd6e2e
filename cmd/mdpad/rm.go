// ABOUTME: Remove command for deleting files.
// ABOUTME: Includes confirmation prompt before deletion.

package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/harper/mdpad/internal/ui"
	"github.com/spf13/cobra"
)

var rmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Remove a file",
	Long:  `Delete a file permanently.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		force, _ := cmd.Flags().GetBool("force")

		f, err := mdApp.Files.GetFile(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("failed to get file: %w", err)
		}

		if !force {
			fmt.Printf("Delete file %q (%d)? [y/N] ", f.Name, f.ID)
			reader := bufio.NewReader(os.Stdin)
			response, _ := reader.ReadString('\n')
			response = strings.TrimSpace(strings.ToLower(response))
			if response != "y" && response != "yes" {
				fmt.Println("Cancelled.")
				return nil
			}
		}

		if err := mdApp.Delete(cmd.Context(), id); err != nil {
			return fmt.Errorf("failed to delete file: %w", err)
		}

		fmt.Println(ui.Success(fmt.Sprintf("Deleted file %d", id)))
		return nil
	},
}

func init() {
	rmCmd.Flags().BoolP("force", "f", false, "skip confirmation")
	rootCmd.AddCommand(rmCmd)
}
