package anthropic

import (
	"context"

	"github.com/flemzord/parley/internal/provider"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// healthRequest is the smallest request the Messages API accepts.
var healthRequest = provider.CompletionRequest{
	Messages:  []provider.LLMMessage{{Role: provider.MessageRoleUser, Content: "ping"}},
	MaxTokens: 1,
}

// HealthCheck sends a 1-token completion for the configured model. It
// exercises the same credential and request path as Complete; failures map
// onto the provider error taxonomy.
func (a *Anthropic) HealthCheck(ctx context.Context) error {
	ctx, span := a.tracer.Start(ctx, "anthropic.health")
	defer span.End()

	params := convertRequest(healthRequest, &a.config, a.logger)
	span.SetAttributes(attribute.String("llm.model", a.config.Model))

	if _, err := a.client.Messages.New(ctx, params); err != nil {
		err = mapError(err)
		kind := provider.KindOf(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, string(kind))
		a.logger.Warn("anthropic health check failed", "op", "health", "kind", kind, "error", err)
		return err
	}
	return nil
}
