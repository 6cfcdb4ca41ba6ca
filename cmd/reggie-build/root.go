package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/reggie-db/reggie-build/internal/config"
	"github.com/reggie-db/reggie-build/internal/workspace"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "reggie-build",
		Short:             "Keep the pyproject.toml files of a uv workspace in sync",
		Version:           version,
		PersistentPreRunE: setupLogging,
	}

	cmd.PersistentFlags().String("root", ".", "Workspace root directory")
	cmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error); defaults to $LOG_LEVEL or info")

	cmd.AddCommand(
		newSyncCmd(),
		newVersionCmd(),
		newAddCmd(),
		newMembersCmd(),
		newReadmeCmd(),
		newDoctorCmd(),
	)

	return cmd
}

// setupLogging configures the global logger for the invoked command.
func setupLogging(cmd *cobra.Command, _ []string) error {
	level, _ := cmd.Flags().GetString("log-level")
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}
	if level == "" {
		level = "info"
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()
	return nil
}

// loadWorkspace loads the tree and configuration file under --root.
func loadWorkspace(cmd *cobra.Command) (*workspace.Tree, *config.File, error) {
	root, _ := cmd.Flags().GetString("root")
	tree, err := workspace.Load(root)
	if err != nil {
		return nil, nil, fmt.Errorf("loading workspace: %w", err)
	}
	cfg, err := config.Load(tree.Dir())
	if err != nil {
		return nil, nil, err
	}
	return tree, cfg, nil
}
