// Package providertest provides test helpers for the provider package.
package providertest

import (
	"context"
	"sync"

	"github.com/flemzord/parley/internal/provider"
)

// MockProvider is a configurable test double for provider.Provider.
// A nil CompleteFunc echoes the last message back. All methods are safe
// for concurrent use.
type MockProvider struct {
	CompleteFunc    func(ctx context.Context, req provider.CompletionRequest) (provider.CompletionResponse, error)
	HealthCheckFunc func(ctx context.Context) error
	Model           string

	mu       sync.Mutex
	requests []provider.CompletionRequest
	health   int
}

// Complete records the request and delegates to CompleteFunc.
func (m *MockProvider) Complete(ctx context.Context, req provider.CompletionRequest) (provider.CompletionResponse, error) {
	m.mu.Lock()
	m.requests = append(m.requests, cloneRequest(req))
	m.mu.Unlock()

	if m.CompleteFunc == nil {
		var last string
		if n := len(req.Messages); n > 0 {
			last = req.Messages[n-1].Content
		}
		return provider.CompletionResponse{Content: "echo: " + last, FinishReason: provider.FinishReasonStop}, nil
	}
	return m.CompleteFunc(ctx, req)
}

// ModelName returns Model, or "mock-model" when unset.
func (m *MockProvider) ModelName() string {
	if m.Model == "" {
		return "mock-model"
	}
	return m.Model
}

// HealthCheck delegates to HealthCheckFunc; nil means healthy.
func (m *MockProvider) HealthCheck(ctx context.Context) error {
	m.mu.Lock()
	m.health++
	m.mu.Unlock()
	if m.HealthCheckFunc == nil {
		return nil
	}
	return m.HealthCheckFunc(ctx)
}

// Requests returns a copy of every request received so far.
func (m *MockProvider) Requests() []provider.CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]provider.CompletionRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// HealthCalls returns the number of HealthCheck invocations.
func (m *MockProvider) HealthCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.health
}

func cloneRequest(req provider.CompletionRequest) provider.CompletionRequest {
	msgs := make([]provider.LLMMessage, len(req.Messages))
	copy(msgs, req.Messages)
	req.Messages = msgs
	return req
}

// Interface guards.
var (
	_ provider.Provider      = (*MockProvider)(nil)
	_ provider.HealthChecker = (*MockProvider)(nil)
)
