// Package repl is the terminal adapter: it reads lines, dispatches the
// built-in commands and sends everything else to the chat service.
package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/flemzord/parley/internal/chat"
	"github.com/flemzord/parley/internal/render"
)

const (
	promptPrimary      = "You: "
	promptContinuation = "...  "
	exportLayout       = "conversation_20060102_150405.json"
	previewLength      = 100
)

var (
	assistantStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#AF87FF"))
	infoStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#5FAF5F"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F5F"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#8A8A8A"))
)

// InterruptFunc derives a context that is canceled when the user asks to
// abandon the current reply.
type InterruptFunc func(ctx context.Context) (context.Context, context.CancelFunc)

// Config customizes a REPL.
type Config struct {
	// Width is the column budget for replies. Default: render.DefaultWidth.
	Width int

	// Interrupts defaults to canceling on SIGINT.
	Interrupts InterruptFunc
}

// REPL is an interactive terminal session over a chat service.
type REPL struct {
	chat       *chat.Service
	in         LineReader
	out        io.Writer
	logger     *slog.Logger
	width      int
	interrupts InterruptFunc
	now        func() time.Time
}

// New creates a REPL reading from in and writing to out.
func New(svc *chat.Service, in LineReader, out io.Writer, cfg Config, logger *slog.Logger) *REPL {
	if cfg.Width <= 0 {
		cfg.Width = render.DefaultWidth
	}
	if cfg.Interrupts == nil {
		cfg.Interrupts = func(ctx context.Context) (context.Context, context.CancelFunc) {
			return signal.NotifyContext(ctx, os.Interrupt)
		}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &REPL{
		chat:       svc,
		in:         in,
		out:        out,
		logger:     logger,
		width:      cfg.Width,
		interrupts: cfg.Interrupts,
		now:        time.Now,
	}
}

// Run loops until the user quits, input ends or ctx is canceled.
func (r *REPL) Run(ctx context.Context) error {
	r.banner()

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		line, err := r.readInput()
		if errors.Is(err, io.EOF) {
			r.println("")
			r.println(infoStyle.Render("Goodbye!"))
			return nil
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if quit := r.dispatch(ctx, line); quit {
			r.println(infoStyle.Render("Goodbye!"))
			return nil
		}
	}
}

// readInput reads one logical line. A trailing backslash continues the
// input on the next line.
func (r *REPL) readInput() (string, error) {
	var parts []string
	prompt := promptPrimary
	for {
		line, err := r.in.ReadLine(prompt)
		if err != nil {
			if len(parts) > 0 && errors.Is(err, io.EOF) {
				return strings.Join(parts, "\n"), nil
			}
			return "", err
		}
		if rest, ok := strings.CutSuffix(line, `\`); ok {
			parts = append(parts, rest)
			prompt = promptContinuation
			continue
		}
		parts = append(parts, line)
		return strings.Join(parts, "\n"), nil
	}
}

func (r *REPL) banner() {
	sess := r.chat.Session()
	r.println(assistantStyle.Render("parley") + dimStyle.Render(" · "+r.chat.Model()))
	r.println(dimStyle.Render(fmt.Sprintf("History keeps the last %d messages. Type 'help' for commands, 'quit' to exit.", sess.Capacity())))
	r.println("")
}

// send runs one chat turn. An interrupt abandons the wait; the turn is
// not recorded.
func (r *REPL) send(ctx context.Context, text string) {
	turnCtx, stop := r.interrupts(ctx)
	defer stop()

	reply, err := r.chat.Send(turnCtx, text)
	if err != nil {
		if errors.Is(err, context.Canceled) && ctx.Err() == nil {
			r.println(dimStyle.Render("[Response interrupted]"))
			return
		}
		r.println(errorStyle.Render("Error: " + err.Error()))
		return
	}

	r.println("")
	r.println(assistantStyle.Render("Assistant:"))
	r.println(render.Terminal(reply.Content, r.width))
	r.println("")
}

func (r *REPL) println(s string) {
	_, _ = fmt.Fprintln(r.out, s)
}
