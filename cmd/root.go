package cmd

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"agentsight/internal/bootstrap/logging"
	"agentsight/internal/errs"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:          "agentsight",
	Short:        "Observability server for coding-agent hook events",
	Long:         "Collects lifecycle events from coding-agent sessions, persists them to an append-only log, and streams them live to dashboard subscribers.",
	SilenceUsage: true,
}

// Execute runs the root command. Called once from main.
func Execute(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}

	logger := slog.New(slog.NewTextHandler(rootCmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	ctx = logging.WithLogger(ctx, logger)
	ctx = logging.WithAttrs(ctx, slog.String("app", "agentsight"))

	rootCmd.SetContext(ctx)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logging.Error(ctx, "command execution failed", slog.Any("err", errs.Loggable(err)))
		return errs.Wrap(err, "execute root command")
	}

	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "configs/config.yaml", "Config file path")
}
