// Package chat runs conversation turns: it assembles a request from the
// session, performs the single completion call and commits the exchange.
package chat

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/flemzord/parley/internal/provider"
	"github.com/flemzord/parley/internal/session"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Observer receives turn outcomes. Implementations must be safe for
// concurrent use.
type Observer interface {
	TurnCompleted(latency time.Duration, usage provider.TokenUsage, historyLen int)
	TurnFailed(kind provider.ErrorKind, latency time.Duration)
	HistoryChanged(historyLen int)
}

type nopObserver struct{}

func (nopObserver) TurnCompleted(time.Duration, provider.TokenUsage, int) {}
func (nopObserver) TurnFailed(provider.ErrorKind, time.Duration)          {}
func (nopObserver) HistoryChanged(int)                                     {}

// Config holds the model-call parameters sent with every turn.
type Config struct {
	MaxTokens   int
	Temperature float64
}

// Reply is the outcome of a successful turn.
type Reply struct {
	Content   string
	Timestamp time.Time
	Summary   string
	Usage     provider.TokenUsage
}

// Service executes turns against one session. At most one turn is in
// flight at a time; later callers wait their turn or give up with their
// context.
type Service struct {
	session  *session.Manager
	provider provider.Provider
	config   Config
	logger   *slog.Logger
	observer Observer
	tracer   trace.Tracer

	turn chan struct{}
}

// Option customizes a Service.
type Option func(*Service)

// WithObserver reports turn outcomes to o.
func WithObserver(o Observer) Option {
	return func(s *Service) {
		if o != nil {
			s.observer = o
		}
	}
}

// NewService wires a session to a provider.
func NewService(sess *session.Manager, p provider.Provider, cfg Config, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		session:  sess,
		provider: p,
		config:   cfg,
		logger:   logger,
		observer: nopObserver{},
		tracer:   otel.Tracer("github.com/flemzord/parley/internal/chat"),
		turn:     make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Session returns the session this service operates on.
func (s *Service) Session() *session.Manager {
	return s.session
}

// Model returns the provider's model identifier.
func (s *Service) Model() string {
	return s.provider.ModelName()
}

// Clear empties the conversation log.
func (s *Service) Clear() {
	s.session.Clear()
	s.observer.HistoryChanged(s.session.Len())
}

// Import replaces the conversation log with the serialized conversation in
// data. On error the log is unchanged.
func (s *Service) Import(data []byte) error {
	if err := s.session.Import(data); err != nil {
		return err
	}
	s.observer.HistoryChanged(s.session.Len())
	return nil
}

// HealthCheck probes the provider when it supports probing. Providers
// without a probe are reported healthy.
func (s *Service) HealthCheck(ctx context.Context) error {
	hc, ok := s.provider.(provider.HealthChecker)
	if !ok {
		return nil
	}
	return hc.HealthCheck(ctx)
}

// Send runs one turn for text. On success the log ends with text as a user
// entry immediately followed by the reply. On failure the log is unchanged.
func (s *Service) Send(ctx context.Context, text string) (Reply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Reply{}, session.ErrEmptyContent
	}

	select {
	case s.turn <- struct{}{}:
	case <-ctx.Done():
		return Reply{}, ctx.Err()
	}
	defer func() { <-s.turn }()

	ctx, span := s.tracer.Start(ctx, "chat.turn")
	defer span.End()

	req := s.session.Request(text)
	req.MaxTokens = s.config.MaxTokens
	req.Temperature = provider.Float(s.config.Temperature)
	span.SetAttributes(attribute.Int("chat.request_messages", len(req.Messages)))

	start := time.Now()
	resp, err := s.provider.Complete(ctx, req)
	latency := time.Since(start)
	if err != nil {
		kind := provider.KindOf(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, string(kind))
		s.observer.TurnFailed(kind, latency)
		if kind == provider.KindCanceled {
			s.logger.Info("turn abandoned by caller", "op", "chat", "error", err)
		} else {
			s.logger.Error("completion failed", "op", "chat", "kind", kind, "error", err)
		}
		return Reply{}, err
	}

	if err := s.session.AppendExchange(text, resp.Content); err != nil {
		return Reply{}, err
	}

	historyLen := s.session.Len()
	s.observer.TurnCompleted(latency, resp.Usage, historyLen)
	s.logger.Info("generated response",
		"characters", len(resp.Content),
		"latency", latency,
		"history", historyLen,
	)

	return Reply{
		Content:   resp.Content,
		Timestamp: time.Now(),
		Summary:   s.session.Summary(),
		Usage:     resp.Usage,
	}, nil
}
