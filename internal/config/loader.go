package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// envPattern matches ${VAR} and ${VAR:-default} expressions.
var envPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-((?:[^}\\]|\\.)*))?\}`)

// FileName is the configuration file name searched for by ResolvePath.
const FileName = "parley.yaml"

// LookupFunc reads an environment variable. os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// Load builds the configuration from defaults, the YAML file at path (may
// be empty), then the process environment. It does not validate.
func Load(path string) (*Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup LookupFunc) (*Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: reading %s: %w", ErrInvalid, path, err)
		}

		expanded, err := expandEnv(raw, lookup)
		if err != nil {
			return nil, fmt.Errorf("%w: expanding variables in %s: %w", ErrInvalid, path, err)
		}

		if err := yaml.Unmarshal(expanded, &cfg); err != nil {
			return nil, fmt.Errorf("%w: parsing %s: %w", ErrInvalid, path, err)
		}
	}

	if err := applyEnv(&cfg, lookup); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. A missing file is not
// an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("config: loading %s: %w", path, err)
	}
	return nil
}

// ResolvePath returns explicit when set, otherwise the first existing file
// among $XDG_CONFIG_HOME/parley/parley.yaml (or ~/.config/parley/parley.yaml)
// and ./parley.yaml. It returns "" when none exists; a config file is optional.
func ResolvePath(explicit string) string {
	if explicit != "" {
		return explicit
	}

	var candidates []string
	if xdg, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok {
		candidates = append(candidates, filepath.Join(xdg, "parley", FileName))
	} else if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "parley", FileName))
	}
	candidates = append(candidates, FileName)

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// expandEnv replaces ${VAR} and ${VAR:-default} patterns in raw YAML bytes.
// Returns an error listing all unresolved variables (no default, no env value).
func expandEnv(raw []byte, lookup LookupFunc) ([]byte, error) {
	var errs []error

	result := envPattern.ReplaceAllFunc(raw, func(match []byte) []byte {
		subs := envPattern.FindSubmatch(match)
		name := string(subs[1])
		hasDefault := len(subs) > 2 && subs[2] != nil

		if value, ok := lookup(name); ok {
			return []byte(value)
		}
		if hasDefault {
			return subs[2]
		}

		errs = append(errs, fmt.Errorf("unresolved variable: %s", name))
		return match
	})

	return result, errors.Join(errs...)
}

// applyEnv overlays environment variables onto cfg. Values that fail to
// parse are reported rather than silently ignored.
func applyEnv(cfg *Config, lookup LookupFunc) error {
	var errs []error

	str := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v, ok := lookup(k); ok && v != "" {
				*dst = v
				return
			}
		}
	}
	integer := func(dst *int, key string) {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%w: %s=%q is not an integer", ErrInvalid, key, v))
				return
			}
			*dst = n
		}
	}

	str(&cfg.APIKey, "ANTHROPIC_API_KEY", "CLAUDE_API_KEY")
	str(&cfg.Model, "CLAUDE_MODEL")
	str(&cfg.BaseURL, "ANTHROPIC_BASE_URL")
	str(&cfg.Host, "HOST")
	str(&cfg.LogFile, "LOG_FILE")
	str(&cfg.OTLPEndpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
	integer(&cfg.Port, "PORT")
	integer(&cfg.MaxTokens, "MAX_TOKENS")
	integer(&cfg.HistoryLimit, "CONVERSATION_HISTORY_LIMIT")

	if v, ok := lookup("TEMPERATURE"); ok && v != "" {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			errs = append(errs, fmt.Errorf("%w: TEMPERATURE=%q is not a number", ErrInvalid, v))
		} else {
			cfg.Temperature = f
		}
	}

	for _, key := range []string{"DEBUG", "FLASK_DEBUG"} {
		if v, ok := lookup(key); ok && v != "" {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%w: %s=%q is not a boolean", ErrInvalid, key, v))
				continue
			}
			cfg.Debug = b
			break
		}
	}

	return errors.Join(errs...)
}
