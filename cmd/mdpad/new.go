// ABOUTME: New command for creating markdown files.
// ABOUTME: Supports inline content, file input, or $EDITOR.

package main

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/harper/mdpad/internal/models"
	"github.com/harper/mdpad/internal/ui"
	"github.com/spf13/cobra"
)

var newCmd = &cobra.Command{
	Use:   "new [name]",
	Short: "Create a new file",
	Long:  `Create a markdown file. Content can be provided via --content, --file, or --editor. A missing name becomes "Untitled".`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := ""
		if len(args) == 1 {
			name = args[0]
		}

		contentFlag, _ := cmd.Flags().GetString("content")
		fileFlag, _ := cmd.Flags().GetString("file")
		editorFlag, _ := cmd.Flags().GetBool("editor")

		var content string
		switch {
		case contentFlag != "":
			content = contentFlag
		case fileFlag != "":
			data, err := os.ReadFile(fileFlag) //nolint:gosec // User-specified file path is expected CLI behavior
			if err != nil {
				return fmt.Errorf("failed to read file: %w", err)
			}
			content = string(data)
		case editorFlag:
			var err error
			content, err = openEditor("")
			if err != nil {
				return fmt.Errorf("failed to open editor: %w", err)
			}
		}

		saved, err := mdApp.Save(cmd.Context(), models.NewFile(name, content))
		if err != nil {
			return fmt.Errorf("failed to create file: %w", err)
		}

		fmt.Println(ui.Success(fmt.Sprintf("Created file %d (%s)", saved.ID, saved.Name)))
		return nil
	},
}

func openEditor(initial string) (string, error) {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vim"
	}

	tmpFile, err := os.CreateTemp("", "mdpad-*.md")
	if err != nil {
		return "", err
	}
	defer func() {
		_ = os.Remove(tmpFile.Name()) // Best-effort cleanup
	}()

	if initial != "" {
		if _, err := tmpFile.WriteString(initial); err != nil {
			_ = tmpFile.Close()
			return "", fmt.Errorf("failed to write initial content: %w", err)
		}
	}
	if err := tmpFile.Close(); err != nil {
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}

	parts := strings.Fields(editor)
	cmd := exec.Command(parts[0], append(parts[1:], tmpFile.Name())...) //nolint:gosec // Launching $EDITOR is expected CLI behavior
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return "", err
	}

	data, err := os.ReadFile(tmpFile.Name())
	if err != nil {
		return "", err
	}

	return string(data), nil
}

func init() {
	newCmd.Flags().String("content", "", "file content (inline)")
	newCmd.Flags().String("file", "", "read content from file")
	newCmd.Flags().Bool("editor", false, "write content in $EDITOR")
	rootCmd.AddCommand(newCmd)
}
