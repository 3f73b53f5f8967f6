// Package config handles configuration loading for parley: an optional YAML
// file with environment variable expansion, a .env file, environment
// overrides, defaults and validation.
package config

import (
	"net"
	"strconv"
)

// Default values applied before any source is read.
const (
	DefaultModel        = "claude-sonnet-4-5-20250929"
	DefaultHost         = "0.0.0.0"
	DefaultPort         = 5000
	DefaultMaxTokens    = 4000
	DefaultTemperature  = 0.7
	DefaultHistoryLimit = 20
)

// Config is the complete application configuration.
type Config struct {
	// APIKey is the completion-service credential. Required.
	APIKey string `yaml:"api_key" json:"api_key"`

	// Model is the completion model identifier.
	Model string `yaml:"model" json:"model"`

	// BaseURL overrides the completion-service endpoint (proxies, tests).
	BaseURL string `yaml:"base_url,omitempty" json:"base_url,omitempty"`

	// Host and Port are the web server bind address.
	Host string `yaml:"host" json:"host"`
	Port int    `yaml:"port" json:"port"`

	// Debug lowers the log level to debug.
	Debug bool `yaml:"debug" json:"debug"`

	// MaxTokens and Temperature are sent with every completion call.
	MaxTokens   int     `yaml:"max_tokens" json:"max_tokens"`
	Temperature float64 `yaml:"temperature" json:"temperature"`

	// HistoryLimit is the conversation log capacity.
	HistoryLimit int `yaml:"history_limit" json:"history_limit"`

	// SystemPrompt replaces the built-in instructions when set.
	SystemPrompt string `yaml:"system_prompt,omitempty" json:"system_prompt,omitempty"`

	// LogFile, when set, receives a JSON copy of every log record.
	LogFile string `yaml:"log_file,omitempty" json:"log_file,omitempty"`

	// OTLPEndpoint enables trace export over OTLP/HTTP when set.
	OTLPEndpoint string `yaml:"otlp_endpoint,omitempty" json:"otlp_endpoint,omitempty"`

	// CORSOrigins lists allowed browser origins. Default: any.
	CORSOrigins []string `yaml:"cors_origins,omitempty" json:"cors_origins,omitempty"`
}

// Default returns a Config populated with built-in defaults.
func Default() Config {
	return Config{
		Model:        DefaultModel,
		Host:         DefaultHost,
		Port:         DefaultPort,
		MaxTokens:    DefaultMaxTokens,
		Temperature:  DefaultTemperature,
		HistoryLimit: DefaultHistoryLimit,
	}
}

// Addr returns the host:port listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Redacted returns a copy safe for display, with the credential masked.
func (c Config) Redacted() Config {
	if c.APIKey != "" {
		c.APIKey = "***REDACTED***"
	}
	return c
}
