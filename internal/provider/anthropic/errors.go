package anthropic

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	sdkanthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/flemzord/parley/internal/provider"
)

// mapError converts an Anthropic SDK error into the provider error taxonomy.
// Context errors are surfaced unchanged.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	if provider.KindOf(err) == provider.KindCanceled {
		return err
	}

	var apiErr *sdkanthropic.Error
	if !errors.As(err, &apiErr) {
		// Transport failure: DNS, refused connection, TLS, truncated body.
		return fmt.Errorf("%w: %v", provider.ErrGateway, err)
	}

	switch apiErr.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w (HTTP %d)", provider.ErrAuth, apiErr.StatusCode)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w (HTTP %d)", provider.ErrRateLimit, apiErr.StatusCode)
	default:
		return fmt.Errorf("%w (HTTP %d): %s", provider.ErrGateway, apiErr.StatusCode, errorMessage(apiErr))
	}
}

// apiErrorBody is a minimal representation of the Anthropic error JSON.
type apiErrorBody struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// errorMessage extracts the human-readable message from an API error,
// falling back to the SDK's own formatting.
func errorMessage(apiErr *sdkanthropic.Error) string {
	var body apiErrorBody
	if err := json.Unmarshal([]byte(apiErr.RawJSON()), &body); err == nil && body.Error.Message != "" {
		return body.Error.Type + ": " + body.Error.Message
	}
	return apiErr.Error()
}
