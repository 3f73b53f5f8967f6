package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// DefaultWidth is the terminal column budget for formatted replies.
const DefaultWidth = 80

// Terminal styles. lipgloss drops colors when output is not a TTY.
var (
	headingStyle = lipgloss.NewStyle().Bold(true)
	ruleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C6C6C"))
	codeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#5FAFD7"))
)

// Terminal lays out markdown for a plain terminal of the given width:
// headings between rules, fenced code inside box edges, bullets for list
// items, other lines word-wrapped.
func Terminal(text string, width int) string {
	if width < 10 {
		width = DefaultWidth
	}

	var out []string
	inCode := false
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "```"):
			out = append(out, codeFence(line, width, inCode)...)
			inCode = !inCode
		case inCode:
			out = append(out, codeStyle.Render("│ "+line))
		case strings.HasPrefix(line, "# "):
			out = append(out,
				"",
				ruleStyle.Render(strings.Repeat("=", width)),
				headingStyle.Render("  "+strings.ToUpper(line[2:])),
				ruleStyle.Render(strings.Repeat("=", width)),
			)
		case strings.HasPrefix(line, "## "):
			out = append(out,
				"",
				ruleStyle.Render(strings.Repeat("-", width)),
				headingStyle.Render("  "+line[3:]),
				ruleStyle.Render(strings.Repeat("-", width)),
			)
		case strings.HasPrefix(trimmed, "- "):
			out = append(out, bullet(trimmed[2:], width))
		case trimmed == "":
			out = append(out, "")
		default:
			out = append(out, ansi.Wordwrap(line, width, ""))
		}
	}
	return strings.Join(out, "\n")
}

// codeFence draws the opening or closing edge of a code block. An opening
// fence with a language tag shows the tag on its own row.
func codeFence(line string, width int, closing bool) []string {
	if closing {
		return []string{ruleStyle.Render("└" + strings.Repeat("─", width-2) + "┘")}
	}
	edge := []string{ruleStyle.Render("┌" + strings.Repeat("─", width-2) + "┐")}
	if lang := strings.TrimSpace(line[3:]); lang != "" {
		edge = append(edge, ruleStyle.Render("│ "+lang))
	}
	return edge
}

// bullet wraps a list item with a hanging indent.
func bullet(item string, width int) string {
	wrapped := ansi.Wordwrap(item, width-4, "")
	return "  • " + strings.ReplaceAll(wrapped, "\n", "\n    ")
}
