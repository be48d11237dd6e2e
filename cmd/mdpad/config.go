// ABOUTME: Config command for inspecting and writing settings.
// ABOUTME: Subcommands show, path, and init.

package main

import (
	"fmt"

	"github.com/harper/mdpad/internal/config"
	"github.com/harper/mdpad/internal/ui"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Print(cfg.String())
		fmt.Printf("# store: %s\n", cfg.StorePath())
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(config.Path())
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the current settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		if config.Exists() && !force {
			return fmt.Errorf("config already exists at %s (use --force to overwrite)", config.Path())
		}
		if err := config.Save(cfg); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
		fmt.Println(ui.Success("Wrote " + config.Path()))
		return nil
	},
}

func init() {
	configInitCmd.Flags().Bool("force", false, "overwrite an existing config file")
	configCmd.AddCommand(configShowCmd, configPathCmd, configInitCmd)
	rootCmd.AddCommand(configCmd)
}
