package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func mapLookup(env map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := load("", mapLookup(nil))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := Default()
	if cfg.Model != want.Model || cfg.Port != DefaultPort || cfg.HistoryLimit != DefaultHistoryLimit ||
		cfg.Temperature != DefaultTemperature || cfg.MaxTokens != DefaultMaxTokens || cfg.Host != DefaultHost {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestLoad_FileWithExpansion(t *testing.T) {
	t.Parallel()

	path := writeFile(t, `
api_key: ${SECRET}
model: ${MODEL:-claude-test}
port: 8080
temperature: 0
history_limit: 6
system_prompt: "Be brief."
`)

	cfg, err := load(path, mapLookup(map[string]string{"SECRET": "sk-file"}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIKey != "sk-file" {
		t.Errorf("APIKey = %q, want %q", cfg.APIKey, "sk-file")
	}
	if cfg.Model != "claude-test" {
		t.Errorf("Model = %q, want default from expression", cfg.Model)
	}
	if cfg.Port != 8080 || cfg.HistoryLimit != 6 || cfg.SystemPrompt != "Be brief." {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Temperature != 0 {
		t.Errorf("explicit zero temperature overwritten: %g", cfg.Temperature)
	}
	// Fields absent from the file keep their defaults.
	if cfg.MaxTokens != DefaultMaxTokens {
		t.Errorf("MaxTokens = %d, want default", cfg.MaxTokens)
	}
}

func TestLoad_UnresolvedVariable(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "api_key: ${MISSING}\n")

	_, err := load(path, mapLookup(nil))
	if err == nil || !strings.Contains(err.Error(), "MISSING") {
		t.Fatalf("err = %v, want unresolved variable error", err)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "api_key: from-file\nport: 8080\n")

	cfg, err := load(path, mapLookup(map[string]string{
		"CLAUDE_API_KEY":             "from-env",
		"PORT":                       "9090",
		"DEBUG":                      "true",
		"MAX_TOKENS":                 "512",
		"TEMPERATURE":                "0.2",
		"CONVERSATION_HISTORY_LIMIT": "4",
		"CLAUDE_MODEL":               "claude-x",
		"HOST":                       "127.0.0.1",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIKey != "from-env" || cfg.Port != 9090 || !cfg.Debug || cfg.MaxTokens != 512 ||
		cfg.Temperature != 0.2 || cfg.HistoryLimit != 4 || cfg.Model != "claude-x" {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
	if got := cfg.Addr(); got != "127.0.0.1:9090" {
		t.Errorf("Addr = %q", got)
	}
}

func TestLoad_PrimaryKeyWins(t *testing.T) {
	t.Parallel()

	cfg, err := load("", mapLookup(map[string]string{
		"ANTHROPIC_API_KEY": "primary",
		"CLAUDE_API_KEY":    "alias",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIKey != "primary" {
		t.Errorf("APIKey = %q, want %q", cfg.APIKey, "primary")
	}
}

func TestLoad_BadEnvValues(t *testing.T) {
	t.Parallel()

	_, err := load("", mapLookup(map[string]string{
		"PORT":        "http",
		"TEMPERATURE": "warm",
		"DEBUG":       "sometimes",
	}))
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("err = %v, want ErrInvalid", err)
	}
	for _, key := range []string{"PORT", "TEMPERATURE", "DEBUG"} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("error does not mention %s: %v", key, err)
		}
	}
}

func TestLoad_NonFiniteTemperature(t *testing.T) {
	t.Parallel()

	for _, v := range []string{"NaN", "nan", "Inf", "-Inf"} {
		t.Run(v, func(t *testing.T) {
			t.Parallel()
			_, err := load("", mapLookup(map[string]string{
				"ANTHROPIC_API_KEY": "k",
				"TEMPERATURE":       v,
			}))
			if !errors.Is(err, ErrInvalid) || !strings.Contains(err.Error(), "TEMPERATURE") {
				t.Fatalf("err = %v, want ErrInvalid mentioning TEMPERATURE", err)
			}
		})
	}
}

func TestLoad_FileErrorsAreInvalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{"missing file", func(t *testing.T) string { return filepath.Join(t.TempDir(), "absent.yaml") }},
		{"unresolved variable", func(t *testing.T) string { return writeFile(t, "api_key: ${MISSING}\n") }},
		{"malformed yaml", func(t *testing.T) string { return writeFile(t, "port: [unclosed\n") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := load(tt.path(t), mapLookup(nil))
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("err = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestLoadDotEnv_Missing(t *testing.T) {
	t.Parallel()

	if err := LoadDotEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Errorf("missing .env must not be an error, got %v", err)
	}
}

func TestResolvePath_Explicit(t *testing.T) {
	t.Parallel()

	if got := ResolvePath("custom.yaml"); got != "custom.yaml" {
		t.Errorf("ResolvePath = %q, want explicit path", got)
	}
}
