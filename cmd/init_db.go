package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"agentsight/internal/bootstrap"
	"agentsight/internal/bootstrap/logging"
	"agentsight/internal/errs"
	"agentsight/internal/httpapi"
)

var initDbCmd = &cobra.Command{
	Use:   "init-db",
	Short: "Initialize the event log schema",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App, _ *httpapi.Handler) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		if err := app.InitSchema(ctx); err != nil {
			logging.Error(ctx, "initialize schema failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "initialize schema")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "event log schema initialized: %s\n", app.Config.Database.DSN); err != nil {
			return errs.Wrap(err, "write init-db output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(initDbCmd)
}
