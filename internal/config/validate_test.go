package config

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func validConfig() *Config {
	cfg := Default()
	cfg.APIKey = "sk-ant-test"
	return &cfg
}

func TestValidate_Valid(t *testing.T) {
	t.Parallel()

	if err := Validate(validConfig()); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidate_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"missing api key", func(c *Config) { c.APIKey = "" }, "API_KEY"},
		{"empty model", func(c *Config) { c.Model = "" }, "model"},
		{"port zero", func(c *Config) { c.Port = 0 }, "port"},
		{"port too large", func(c *Config) { c.Port = 70000 }, "port"},
		{"max tokens", func(c *Config) { c.MaxTokens = 0 }, "max_tokens"},
		{"temperature low", func(c *Config) { c.Temperature = -0.1 }, "temperature"},
		{"temperature high", func(c *Config) { c.Temperature = 1.5 }, "temperature"},
		{"nan temperature", func(c *Config) { c.Temperature = math.NaN() }, "temperature"},
		{"history limit", func(c *Config) { c.HistoryLimit = 0 }, "history_limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("err = %v, want ErrInvalid", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestValidate_ReportsAll(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected errors")
	}
	if n := strings.Count(err.Error(), ErrInvalid.Error()); n < 5 {
		t.Errorf("expected every problem reported, got %d in %q", n, err)
	}
}

func TestRedacted(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	red := cfg.Redacted()
	if red.APIKey == cfg.APIKey || cfg.APIKey != "sk-ant-test" {
		t.Errorf("Redacted leaked or mutated the key: %q / %q", red.APIKey, cfg.APIKey)
	}
}
