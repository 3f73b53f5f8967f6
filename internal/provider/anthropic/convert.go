package anthropic

import (
	"log/slog"

	sdkanthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/flemzord/parley/internal/provider"
)

// convertRequest transforms a CompletionRequest into Anthropic SDK parameters.
// Instructions go to the dedicated System field.
func convertRequest(req provider.CompletionRequest, cfg *Config, logger *slog.Logger) sdkanthropic.MessageNewParams {
	params := sdkanthropic.MessageNewParams{
		Model:    sdkanthropic.Model(cfg.Model),
		Messages: convertMessages(req.Messages, logger),
	}

	// The API rejects empty text blocks, so blank instructions are omitted.
	if req.System != "" {
		params.System = []sdkanthropic.TextBlockParam{{Text: req.System}}
	}

	params.MaxTokens = int64(cfg.MaxTokens)
	if req.MaxTokens > 0 {
		params.MaxTokens = int64(req.MaxTokens)
	}

	if req.Temperature != nil {
		params.Temperature = sdkanthropic.Float(*req.Temperature)
	}

	return params
}

// convertMessages maps conversation turns onto SDK message params in order.
// Entries with empty content (a model may legitimately return nothing) are
// dropped because the API refuses empty text blocks.
func convertMessages(msgs []provider.LLMMessage, logger *slog.Logger) []sdkanthropic.MessageParam {
	result := make([]sdkanthropic.MessageParam, 0, len(msgs))

	for i, msg := range msgs {
		if msg.Content == "" {
			if logger != nil {
				logger.Warn("dropping empty message from request", "index", i, "role", msg.Role)
			}
			continue
		}

		switch msg.Role {
		case provider.MessageRoleUser:
			result = append(result, sdkanthropic.NewUserMessage(sdkanthropic.NewTextBlock(msg.Content)))
		case provider.MessageRoleAssistant:
			result = append(result, sdkanthropic.NewAssistantMessage(sdkanthropic.NewTextBlock(msg.Content)))
		default:
			if logger != nil {
				logger.Warn("dropping message with unsupported role", "index", i, "role", msg.Role)
			}
		}
	}

	return result
}

// convertResponse extracts the first text segment of an SDK Message.
func convertResponse(msg *sdkanthropic.Message) provider.CompletionResponse {
	var content string
	for _, block := range msg.Content {
		if v, ok := block.AsAny().(sdkanthropic.TextBlock); ok {
			content = v.Text
			break
		}
	}

	return provider.CompletionResponse{
		Content:      content,
		FinishReason: convertStopReason(msg.StopReason),
		Usage: provider.TokenUsage{
			PromptTokens:     int(msg.Usage.InputTokens),
			CompletionTokens: int(msg.Usage.OutputTokens),
			TotalTokens:      int(msg.Usage.InputTokens + msg.Usage.OutputTokens),
		},
	}
}

// convertStopReason maps an Anthropic stop reason to a FinishReason.
func convertStopReason(reason sdkanthropic.StopReason) provider.FinishReason {
	switch reason {
	case sdkanthropic.StopReasonMaxTokens:
		return provider.FinishReasonLength
	case sdkanthropic.StopReasonRefusal:
		return provider.FinishReasonFiltering
	default:
		return provider.FinishReasonStop
	}
}
