package bootstrap

import (
	"context"
	"log/slog"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"agentsight/internal/bootstrap/config"
	"agentsight/internal/bootstrap/database"
	"agentsight/internal/bootstrap/logging"
	"agentsight/internal/httpapi"
	"agentsight/internal/infrastructure/mirror"
	sqliterepo "agentsight/internal/infrastructure/persistence/sqlite/repository"
	"agentsight/internal/infrastructure/summarizer"
	"agentsight/internal/ports"
	"agentsight/internal/stream"
	"agentsight/internal/usecase/ingest"
)

var Module = fx.Options(
	fx.Provide(provideConfig),
	fx.Provide(provideDatabase),
	fx.Provide(provideApp),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewEventRepository,
			fx.As(new(ports.EventRepository)),
		),
	),
	fx.Provide(stream.NewHub),
	fx.Provide(provideSummarizer),
	fx.Provide(provideMirror),
	fx.Provide(provideIngestService),
	fx.Provide(provideHandler),
)

type configParams struct {
	fx.In

	Ctx        context.Context
	ConfigFile string `name:"configFile"`
}

func provideConfig(p configParams) (config.Config, error) {
	ctx := logging.WithAttrs(p.Ctx, slog.String("component", "bootstrap.fx"))
	return config.Load(ctx, p.ConfigFile)
}

func provideDatabase(lc fx.Lifecycle, ctx context.Context, cfg config.Config) (*gorm.DB, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx"))

	db, err := database.Open(logCtx, cfg.Database)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})

	return db, nil
}

func provideApp(cfg config.Config, db *gorm.DB) *App {
	return &App{
		Config: cfg,
		DB:     db,
	}
}

func provideSummarizer(ctx context.Context, cfg config.Config) ports.Summarizer {
	if !cfg.Summarizer.Enabled() {
		logging.Info(ctx, "summarizer disabled, events commit without enrichment")
		return nil
	}
	return summarizer.NewOpenAIClient(cfg.Summarizer)
}

func provideMirror(lc fx.Lifecycle, ctx context.Context, cfg config.Config) (ports.EventMirror, error) {
	if !cfg.Mirror.Enabled() {
		return nil, nil
	}

	m, err := mirror.NewNATSMirror(cfg.Mirror.URL, cfg.Mirror.Subject)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			m.Close()
			return nil
		},
	})

	logging.Info(ctx, "event mirror enabled", slog.String("subject", cfg.Mirror.Subject))
	return m, nil
}

func provideIngestService(
	repo ports.EventRepository,
	hub *stream.Hub,
	sum ports.Summarizer,
	mir ports.EventMirror,
	cfg config.Config,
) *ingest.Service {
	return ingest.NewService(repo, hub, sum, mir, cfg.Summarizer.Timeout)
}

func provideHandler(svc *ingest.Service, hub *stream.Hub) *httpapi.Handler {
	return httpapi.NewHandler(svc, hub)
}
