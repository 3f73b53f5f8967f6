package provider

import (
	"context"
	"errors"
)

// Sentinel errors for provider operations. Every failure returned by a
// Provider wraps exactly one of them.
var (
	// ErrAuth indicates the credential was missing or rejected.
	ErrAuth = errors.New("authentication failed, check the API key")

	// ErrRateLimit indicates the provider returned a rate limit response.
	ErrRateLimit = errors.New("rate limit exceeded, wait a moment before trying again")

	// ErrGateway covers every other remote-side failure: malformed
	// request, service error, network failure.
	ErrGateway = errors.New("completion service error")
)

// ErrorKind classifies a provider failure.
type ErrorKind string

// ErrorKind values. KindNone is returned for nil errors.
const (
	KindNone      ErrorKind = ""
	KindAuth      ErrorKind = "auth"
	KindRateLimit ErrorKind = "rate_limit"
	KindGateway   ErrorKind = "gateway"
	KindCanceled  ErrorKind = "canceled"
	KindUnknown   ErrorKind = "unknown"
)

// KindOf reports which taxonomy kind err belongs to.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrAuth):
		return KindAuth
	case errors.Is(err, ErrRateLimit):
		return KindRateLimit
	case errors.Is(err, ErrGateway):
		return KindGateway
	case isContextErr(err):
		return KindCanceled
	default:
		return KindUnknown
	}
}

// isContextErr reports whether err stems from the caller abandoning the call.
func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
