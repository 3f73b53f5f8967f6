// Package app wires configuration, logging, the completion provider, the
// session and the adapters together for the parley binary.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/flemzord/parley/internal/chat"
	"github.com/flemzord/parley/internal/config"
	"github.com/flemzord/parley/internal/metrics"
	"github.com/flemzord/parley/internal/provider"
	"github.com/flemzord/parley/internal/provider/anthropic"
	"github.com/flemzord/parley/internal/session"
	"github.com/flemzord/parley/internal/telemetry"
)

// Params selects where configuration comes from.
type Params struct {
	// ConfigPath is an explicit YAML file. Empty means search the
	// standard locations; no file at all is fine.
	ConfigPath string

	// EnvFile is loaded before the environment is read. Default: ".env".
	EnvFile string

	// Version is reported to tracing and the version command.
	Version string

	// LogLevel sets the minimum log level. Defaults to slog.LevelInfo.
	// cfg.Debug always lowers it to slog.LevelDebug.
	LogLevel slog.Level
}

// LoadConfig reads .env, the YAML file and the environment, then validates.
// Every validation failure wraps config.ErrInvalid.
func LoadConfig(params Params) (*config.Config, error) {
	envFile := params.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := config.LoadDotEnv(envFile); err != nil {
		return nil, err
	}

	cfg, err := config.Load(config.ResolvePath(params.ConfigPath))
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// App holds the wired components shared by the web and terminal adapters.
type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	Chat    *chat.Service
	Metrics *metrics.Metrics

	closers []func(context.Context) error
}

// New builds an App from a validated configuration. Log output goes to
// logOut. Call Close when done.
func New(ctx context.Context, cfg *config.Config, params Params, logOut io.Writer) (*App, error) {
	if logOut == nil {
		logOut = os.Stderr
	}
	logger, logCloser, err := NewLogger(cfg, logOut, params.LogLevel)
	if err != nil {
		return nil, err
	}

	a := &App{Config: cfg, Logger: logger}
	a.closers = append(a.closers, func(context.Context) error { return logCloser.Close() })

	shutdownTracing, err := telemetry.Setup(ctx, cfg.OTLPEndpoint, params.Version, logger)
	if err != nil {
		_ = a.Close(ctx)
		return nil, err
	}
	a.closers = append(a.closers, shutdownTracing)

	p, err := anthropic.New(anthropic.Config{
		APIKey:    cfg.APIKey,
		Model:     cfg.Model,
		BaseURL:   cfg.BaseURL,
		MaxTokens: cfg.MaxTokens,
	}, logger)
	if err != nil {
		_ = a.Close(ctx)
		return nil, fmt.Errorf("%w: %w", config.ErrInvalid, err)
	}

	a.Metrics = metrics.New()
	a.Chat = newChatService(cfg, p, a.Metrics, logger)

	logger.Info("parley initialized",
		"model", p.ModelName(),
		"history_limit", cfg.HistoryLimit,
		"max_tokens", cfg.MaxTokens,
		"temperature", cfg.Temperature,
	)
	return a, nil
}

func newChatService(cfg *config.Config, p provider.Provider, m *metrics.Metrics, logger *slog.Logger) *chat.Service {
	sess := session.NewManager(session.Config{
		Capacity:     cfg.HistoryLimit,
		Instructions: cfg.SystemPrompt,
	}, logger)
	return chat.NewService(sess, p, chat.Config{
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
	}, logger, chat.WithObserver(m))
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
