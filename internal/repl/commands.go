package repl

import (
	"context"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"
)

const helpText = `Commands:
  help, ?            Show this help
  clear              Clear the conversation history
  history            Show the conversation history
  export [file]      Save the conversation as JSON
  import <file>      Load a conversation saved with export
  prompt <text>      Replace the system prompt
  show-prompt        Show the current system prompt
  stats              Show conversation statistics
  quit, exit         Leave

Commands may be prefixed with '/'. End a line with '\' to continue on the
next line. Ctrl-C while waiting abandons the reply.`

// dispatch handles one line and reports whether the user asked to quit.
// Lines that are not commands are sent as chat messages.
func (r *REPL) dispatch(ctx context.Context, line string) bool {
	cmdLine := strings.TrimPrefix(line, "/")
	name, arg, _ := strings.Cut(cmdLine, " ")
	name = strings.ToLower(name)
	arg = strings.TrimSpace(arg)

	switch {
	case arg == "" && (name == "quit" || name == "exit"):
		return true
	case arg == "" && (name == "help" || name == "?"):
		r.println(helpText)
	case arg == "" && name == "clear":
		r.chat.Clear()
		r.println(infoStyle.Render("Conversation history cleared."))
	case arg == "" && name == "history":
		r.showHistory()
	case arg == "" && name == "stats":
		r.showStats()
	case arg == "" && name == "show-prompt":
		r.println(dimStyle.Render("Current system prompt:"))
		r.println(r.chat.Session().Instructions())
	case name == "export":
		r.export(arg)
	case name == "import":
		r.importFile(arg)
	case name == "prompt":
		r.setPrompt(arg)
	default:
		if strings.HasPrefix(line, "/") {
			r.println(errorStyle.Render("Unknown command: " + line + " (type 'help')"))
			return false
		}
		r.send(ctx, line)
	}
	return false
}

func (r *REPL) showHistory() {
	sess := r.chat.Session()
	history := sess.History()
	if len(history) == 0 {
		r.println(dimStyle.Render(sess.Summary()))
		return
	}

	r.println(dimStyle.Render(fmt.Sprintf("Conversation history (%d messages):", len(history))))
	for i, msg := range history {
		r.println(fmt.Sprintf("%d. [%s] %s", i+1, msg.Role, msg.Timestamp.Format("15:04:05")))
		r.println("   " + preview(msg.Content))
	}
}

func (r *REPL) showStats() {
	sess := r.chat.Session()
	stats := sess.Stats()
	r.println("Conversation statistics:")
	r.println(fmt.Sprintf("  Total messages:     %d", stats.Total))
	r.println(fmt.Sprintf("  User messages:      %d", stats.User))
	r.println(fmt.Sprintf("  Assistant messages: %d", stats.Assistant))
	r.println(fmt.Sprintf("  Total characters:   %d", stats.Characters))
	r.println(fmt.Sprintf("  Average length:     %d", stats.AverageLength()))
	r.println(fmt.Sprintf("  Capacity:           %d", sess.Capacity()))
	r.println("  " + sess.Summary())
}

func (r *REPL) export(filename string) {
	if filename == "" {
		filename = r.now().Format(exportLayout)
	}
	data, err := r.chat.Session().Export()
	if err != nil {
		r.println(errorStyle.Render("Error: " + err.Error()))
		return
	}
	if err := os.WriteFile(filename, data, 0o600); err != nil {
		r.logger.Error("writing export failed", "op", "export", "path", filename, "error", err)
		r.println(errorStyle.Render("Error: " + err.Error()))
		return
	}
	r.println(infoStyle.Render("Conversation exported to " + filename))
}

func (r *REPL) importFile(filename string) {
	if filename == "" {
		r.println(errorStyle.Render("Usage: import <file>"))
		return
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		r.println(errorStyle.Render("Error: " + err.Error()))
		return
	}
	sess := r.chat.Session()
	if err := r.chat.Import(data); err != nil {
		r.println(errorStyle.Render("Error: " + err.Error()))
		return
	}
	r.println(infoStyle.Render(fmt.Sprintf("Imported %d messages. %s", sess.Len(), sess.Summary())))
}

func (r *REPL) setPrompt(text string) {
	if text == "" {
		r.println(errorStyle.Render("Usage: prompt <text>"))
		return
	}
	r.chat.Session().SetInstructions(text)
	r.println(infoStyle.Render("System prompt updated."))
}

// preview shortens content to its first previewLength characters on one line.
func preview(content string) string {
	content = strings.ReplaceAll(content, "\n", " ")
	if utf8.RuneCountInString(content) <= previewLength {
		return content
	}
	runes := []rune(content)
	return string(runes[:previewLength]) + "..."
}
