package config

import (
	"errors"
	"fmt"
)

// ErrInvalid marks a missing or invalid setting. The process must not
// start when Validate returns an error wrapping it.
var ErrInvalid = errors.New("invalid configuration")

// Validate checks a loaded Config and reports every problem at once.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.APIKey == "" {
		errs = append(errs, fmt.Errorf("%w: ANTHROPIC_API_KEY (or api_key) is required", ErrInvalid))
	}
	if cfg.Model == "" {
		errs = append(errs, fmt.Errorf("%w: model must not be empty", ErrInvalid))
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		errs = append(errs, fmt.Errorf("%w: port %d out of range 1-65535", ErrInvalid, cfg.Port))
	}
	if cfg.MaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("%w: max_tokens must be positive, got %d", ErrInvalid, cfg.MaxTokens))
	}
	if !(cfg.Temperature >= 0 && cfg.Temperature <= 1) {
		errs = append(errs, fmt.Errorf("%w: temperature must be within [0, 1], got %g", ErrInvalid, cfg.Temperature))
	}
	if cfg.HistoryLimit <= 0 {
		errs = append(errs, fmt.Errorf("%w: history_limit must be positive, got %d", ErrInvalid, cfg.HistoryLimit))
	}

	return errors.Join(errs...)
}
