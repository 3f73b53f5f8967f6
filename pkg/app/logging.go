package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/flemzord/parley/internal/config"
	"github.com/flemzord/parley/internal/security"
	slogmulti "github.com/samber/slog-multi"
)

// NewLogger builds the process logger at level (debug when cfg.Debug): a
// text handler on w and, when cfg.LogFile is set, a JSON handler on that file. Every record passes
// through the secret redactor first. The returned closer releases the log
// file and is never nil.
func NewLogger(cfg *config.Config, w io.Writer, level slog.Level) (*slog.Logger, io.Closer, error) {
	if cfg.Debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	redactor := security.NewRedactor(cfg.APIKey)

	var handler slog.Handler = slog.NewTextHandler(w, opts)
	var closer io.Closer = nopCloser{}

	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, nil, fmt.Errorf("app: opening log file: %w", err)
		}
		handler = slogmulti.Fanout(handler, slog.NewJSONHandler(f, opts))
		closer = f
	}

	return slog.New(security.NewRedactingHandler(handler, redactor)), closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
