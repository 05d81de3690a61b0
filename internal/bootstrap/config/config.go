package config

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"agentsight/internal/bootstrap/logging"
	"agentsight/internal/errs"
)

type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Summarizer SummarizerConfig `mapstructure:"summarizer"`
	Mirror     MirrorConfig     `mapstructure:"mirror"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// SummarizerConfig drives the optional event enrichment client. The
// summarizer stays disabled until an API key is present.
type SummarizerConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

func (c SummarizerConfig) Enabled() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

// MirrorConfig drives the optional NATS re-publish of committed events.
// Disabled until a server URL is present.
type MirrorConfig struct {
	URL     string `mapstructure:"url"`
	Subject string `mapstructure:"subject"`
}

func (c MirrorConfig) Enabled() bool {
	return strings.TrimSpace(c.URL) != ""
}

func Load(ctx context.Context, configFile string) (Config, error) {
	if ctx == nil {
		return Config{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return Config{}, errs.Wrap(err, "check context")
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.config"))

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("AGENTSIGHT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile == "" && errors.As(err, &notFound) {
			logging.Warn(logCtx, "config file not found, using defaults and env")
		} else {
			return Config{}, errs.Wrap(err, "read config")
		}
	} else {
		logging.Info(logCtx, "using config file", slog.String("path", v.ConfigFileUsed()))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errs.Wrap(err, "unmarshal config")
	}

	if cfg.Database.DSN == "" {
		return Config{}, errors.New("database.dsn is required")
	}
	if cfg.Summarizer.Timeout <= 0 {
		cfg.Summarizer.Timeout = 10 * time.Second
	}

	logging.Info(
		logCtx,
		"config loaded",
		slog.String("app", cfg.App.Name),
		slog.String("env", cfg.App.Env),
		slog.String("addr", cfg.Server.Addr),
		slog.Bool("summarizer_enabled", cfg.Summarizer.Enabled()),
		slog.Bool("mirror_enabled", cfg.Mirror.Enabled()),
	)

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "agentsight")
	v.SetDefault("app.env", "local")
	v.SetDefault("server.addr", ":4000")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", ".agentsight/events.sqlite")
	v.SetDefault("summarizer.base_url", "")
	v.SetDefault("summarizer.model", "gpt-4o-mini")
	v.SetDefault("summarizer.timeout", "10s")
	v.SetDefault("mirror.subject", "agentsight.events")
}
