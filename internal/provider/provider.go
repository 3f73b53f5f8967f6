// Package provider defines the contract for the remote completion service:
// the request/response types, the Provider interface, and the typed error
// set callers branch on.
package provider

import "context"

// Provider is the interface for communicating with an LLM.
// Implementations perform exactly one blocking call per Complete and keep
// no state between calls.
type Provider interface {
	// Complete sends a completion request and returns the full response.
	// Failures wrap ErrAuth, ErrRateLimit or ErrGateway. Context errors
	// are returned unwrapped.
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)

	// ModelName returns the identifier of the underlying model.
	ModelName() string
}

// HealthChecker is an optional interface that providers may implement
// to support an active connectivity probe.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
