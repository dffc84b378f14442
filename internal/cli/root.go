// Package cli provides the command-line interface for notion2csv.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/takak2166/notion2csv/internal/config"
	"github.com/takak2166/notion2csv/internal/logger"
)

// ExitResume is the exit status of a run that stopped with work left.
const ExitResume = 3

// ErrResumeRequired is returned when an export stopped before every group
// completed. Running the same command again continues it.
var ErrResumeRequired = errors.New("export is incomplete, run the command again to resume")

var (
	// Version is set at build time.
	Version = "0.1.0"

	configFile string
	logLevel   string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "notion2csv",
	Short: "Export a Notion course catalog to CSV, ZIP or XLSX",
	Long: `notion2csv reads a Notion database, groups its pages by a choice property
(Kurzus by default) and exports the video or lesson text of every page.

Batch exports are checkpointed: an interrupted or capped run resumes where it
stopped the next time the same export command is run.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" {
			return nil
		}

		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return err
		}
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}
		if err := logger.Init(cfg.LogLevel); err != nil {
			return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
		}
		return logger.SetFormat(cfg.LogFormat)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: ./notion2csv.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(groupsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(groupCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(checkpointCmd)
}

// Execute runs the root command. An interrupt cancels the running command;
// checkpointed progress is kept.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// ExitCode maps the error returned by Execute to a process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrResumeRequired):
		return ExitResume
	}
	return 1
}
