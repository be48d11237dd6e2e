// ABOUTME: Import command for loading markdown documents from disk.
// ABOUTME: Accepts files and directories of .md files.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/harper/mdpad/internal/ui"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <path>...",
	Short: "Import markdown files",
	Long: `Import markdown documents. Directories are walked for .md files.

A file's name comes from its frontmatter title, or from the filename
without its extension.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		count := 0
		for _, path := range args {
			info, err := os.Stat(path)
			if err != nil {
				return fmt.Errorf("failed to stat path: %w", err)
			}

			if !info.IsDir() {
				if _, err := mdApp.ImportPath(cmd.Context(), path); err != nil {
					return fmt.Errorf("failed to import %s: %w", path, err)
				}
				count++
				continue
			}

			err = filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if info.IsDir() || !isMarkdown(p) {
					return nil
				}
				if _, err := mdApp.ImportPath(cmd.Context(), p); err != nil {
					fmt.Println(ui.Warning(fmt.Sprintf("failed to import %s: %v", p, err)))
					return nil
				}
				count++
				return nil
			})
			if err != nil {
				return err
			}
		}

		fmt.Println(ui.Success(fmt.Sprintf("Imported %d files", count)))
		return nil
	},
}

func isMarkdown(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return true
	}
	return false
}

func init() {
	rootCmd.AddCommand(importCmd)
}
