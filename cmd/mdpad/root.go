// ABOUTME: Root command wiring configuration, logging, and the app.
// ABOUTME: Runs the interactive editor when no subcommand is given.

package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/harper/mdpad/internal/app"
	"github.com/harper/mdpad/internal/config"
	"github.com/harper/mdpad/internal/logging"
	"github.com/harper/mdpad/internal/tui"
	"github.com/spf13/cobra"
)

var (
	cfg    *config.Config
	logger *log.Logger
	mdApp  *app.App
)

var rootCmd = &cobra.Command{
	Use:   "mdpad",
	Short: "A small markdown editor with local storage",
	Long: `mdpad keeps markdown files in a local database and edits them with a
live preview. Run it without arguments for the interactive editor.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		flags := cmd.Flags()
		if flags.Changed("backend") {
			cfg.Backend, _ = flags.GetString("backend")
		}
		if flags.Changed("db") {
			cfg.DataPath, _ = flags.GetString("db")
		}
		if flags.Changed("log-level") {
			cfg.LogLevel, _ = flags.GetString("log-level")
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		logger, err = logging.New(os.Stderr, cfg.LogLevel)
		if err != nil {
			return err
		}

		// The store opens lazily, so commands that never touch files pay nothing.
		mdApp = app.New(cfg, logger)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if mdApp == nil {
			return nil
		}
		return mdApp.Close()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return tui.Run(cmd.Context(), mdApp)
	},
}

// Execute runs the CLI.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid file id %q", arg)
	}
	return id, nil
}

func init() {
	rootCmd.PersistentFlags().String("backend", "", "storage backend (badger, sqlite, bolt)")
	rootCmd.PersistentFlags().String("db", "", "path to the store (default $XDG_DATA_HOME/mdpad/...)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
}
