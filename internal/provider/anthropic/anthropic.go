// Package anthropic implements provider.Provider on top of the Anthropic
// Messages API.
package anthropic

import (
	"errors"
	"log/slog"

	sdkanthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/flemzord/parley/internal/provider"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/flemzord/parley/internal/provider/anthropic"

// Interface guards.
var (
	_ provider.Provider      = (*Anthropic)(nil)
	_ provider.HealthChecker = (*Anthropic)(nil)
)

// Anthropic implements provider.Provider and provider.HealthChecker using
// the Anthropic Messages API. It holds no per-call state.
type Anthropic struct {
	config Config
	client *sdkanthropic.Client
	logger *slog.Logger
	tracer trace.Tracer
}

// New builds a provider from cfg. The API key must already be resolved.
func New(cfg Config, logger *slog.Logger) (*Anthropic, error) {
	cfg.defaults()
	if cfg.APIKey == "" {
		return nil, errors.New("anthropic: api key must not be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		// One call, one outcome.
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	client := sdkanthropic.NewClient(opts...)
	return &Anthropic{
		config: cfg,
		client: &client,
		logger: logger,
		tracer: otel.Tracer(tracerName),
	}, nil
}

// ModelName implements provider.Provider.
func (a *Anthropic) ModelName() string {
	return a.config.Model
}
