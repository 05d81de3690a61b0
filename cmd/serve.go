package cmd

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"agentsight/internal/bootstrap"
	"agentsight/internal/bootstrap/logging"
	"agentsight/internal/errs"
	"agentsight/internal/httpapi"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the event intake, query and stream server",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App, handler *httpapi.Handler) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		addr, _ := cmd.Flags().GetString("addr")
		addr = strings.TrimSpace(addr)
		if addr == "" {
			addr = app.Config.Server.Addr
		}

		if err := app.InitSchema(ctx); err != nil {
			logging.Error(ctx, "initialize schema failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "initialize schema")
		}

		server := &http.Server{
			Addr:    addr,
			Handler: handler.Routes(),
		}

		logging.Info(ctx, "event server started", slog.String("addr", addr))

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error(ctx, "event server failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "serve events")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr from config)")
}
