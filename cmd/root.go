package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/pasosync/internal/cli"
	"github.com/thenoetrevino/pasosync/internal/cli/project"
	"github.com/thenoetrevino/pasosync/internal/cli/task"
	"github.com/thenoetrevino/pasosync/internal/config"
	"github.com/thenoetrevino/pasosync/internal/logging"
)

var (
	cfgFile  string
	logLevel string
	logFile  string

	cfg *config.Config
)

// NewRootCmd builds the pasosync command tree
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pasosync",
		Short: "Pasosync - live sync for projects and tasks",
		Long: `Pasosync serves a project and task API whose changes are pushed to every
connected client over a websocket, and ships a terminal client that watches
those changes as they happen.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default $XDG_CONFIG_HOME/pasosync/config.yaml)")
	flags.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&logFile, "log-file", "", `log file, "-" for stderr`)

	rootCmd.AddCommand(ServeCmd())
	rootCmd.AddCommand(WatchCmd())
	rootCmd.AddCommand(project.ProjectCmd())
	rootCmd.AddCommand(task.TaskCmd())

	return rootCmd
}

// setup loads the configuration and starts logging before any subcommand runs
func setup(cmd *cobra.Command, _ []string) error {
	var err error
	if cfgFile != "" {
		cfg, err = config.LoadFile(cfgFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFile != "" {
		cfg.Logging.File = logFile
	}
	if err := logging.Init(cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	cmd.SetContext(cli.WithConfig(cmd.Context(), cfg))
	return nil
}

// Execute runs the root command and prints any error not yet reported
func Execute() error {
	defer logging.Close()

	err := NewRootCmd().Execute()
	if err != nil {
		var reported *cli.ReportedError
		if !errors.As(err, &reported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}
	return err
}
