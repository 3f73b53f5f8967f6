package anthropic

import (
	"context"

	"github.com/flemzord/parley/internal/provider"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Complete sends a synchronous completion request to the Anthropic Messages API.
func (a *Anthropic) Complete(ctx context.Context, req provider.CompletionRequest) (provider.CompletionResponse, error) {
	ctx, span := a.tracer.Start(ctx, "anthropic.complete")
	defer span.End()

	params := convertRequest(req, &a.config, a.logger)
	span.SetAttributes(
		attribute.String("llm.model", a.config.Model),
		attribute.Int("llm.messages", len(params.Messages)),
		attribute.Int64("llm.max_tokens", params.MaxTokens),
	)

	msg, err := a.client.Messages.New(ctx, params)
	if err != nil {
		err = mapError(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, string(provider.KindOf(err)))
		a.logger.Debug("anthropic completion failed", "op", "complete", "error", err)
		return provider.CompletionResponse{}, err
	}

	resp := convertResponse(msg)
	span.SetAttributes(
		attribute.Int("llm.usage.prompt_tokens", resp.Usage.PromptTokens),
		attribute.Int("llm.usage.completion_tokens", resp.Usage.CompletionTokens),
	)
	return resp, nil
}
