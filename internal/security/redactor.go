// Package security keeps credentials out of log output.
package security

import (
	"regexp"
	"strings"
	"sync"
)

// RedactPlaceholder is the replacement string for redacted secrets.
const RedactPlaceholder = "***REDACTED***"

// defaultPatterns match credential shapes that may surface in error
// messages or request dumps.
var defaultPatterns = []*regexp.Regexp{
	// Anthropic API keys.
	regexp.MustCompile(`sk-ant-[a-zA-Z0-9_\-]{20,}`),
	// Header echoes from HTTP client errors.
	regexp.MustCompile(`(?i)(x-api-key:\s*)\S+`),
	regexp.MustCompile(`(?i)(authorization:\s*bearer\s+)\S+`),
}

// Redactor replaces secret values in strings with RedactPlaceholder.
// It matches known key formats and literal values registered at runtime.
// All methods are safe for concurrent use.
type Redactor struct {
	mu       sync.RWMutex
	literals []string
}

// NewRedactor creates a Redactor that also hides each non-empty literal.
func NewRedactor(literals ...string) *Redactor {
	r := &Redactor{}
	for _, l := range literals {
		r.AddLiteral(l)
	}
	return r
}

// AddLiteral registers a secret to hide wherever it appears.
// Empty strings are ignored.
func (r *Redactor) AddLiteral(secret string) {
	if secret == "" {
		return
	}
	r.mu.Lock()
	r.literals = append(r.literals, secret)
	r.mu.Unlock()
}

// Redact returns s with every known secret replaced.
func (r *Redactor) Redact(s string) string {
	if s == "" {
		return s
	}

	for _, p := range defaultPatterns {
		if p.NumSubexp() > 0 {
			s = p.ReplaceAllString(s, "${1}"+RedactPlaceholder)
		} else {
			s = p.ReplaceAllString(s, RedactPlaceholder)
		}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, lit := range r.literals {
		s = strings.ReplaceAll(s, lit, RedactPlaceholder)
	}
	return s
}
