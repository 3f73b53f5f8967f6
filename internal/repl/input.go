package repl

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// LineReader reads one line of user input. It returns io.EOF when the user
// ends input (Ctrl-D, or Ctrl-C at the prompt on a terminal).
type LineReader interface {
	ReadLine(prompt string) (string, error)
}

// NewLineReader picks a line editor when in is a terminal and a plain
// scanner otherwise.
func NewLineReader(in *os.File, out io.Writer) LineReader {
	fd := int(in.Fd())
	if term.IsTerminal(fd) {
		return &termReader{
			fd:   fd,
			term: term.NewTerminal(struct {
				io.Reader
				io.Writer
			}{in, out}, ""),
		}
	}
	return NewScanReader(in, out)
}

// termReader puts the terminal in raw mode only while a line is being
// edited, so signals and output behave normally during a turn.
type termReader struct {
	fd   int
	term *term.Terminal
}

func (r *termReader) ReadLine(prompt string) (string, error) {
	state, err := term.MakeRaw(r.fd)
	if err != nil {
		return "", fmt.Errorf("repl: entering raw mode: %w", err)
	}
	defer func() { _ = term.Restore(r.fd, state) }()

	r.term.SetPrompt(prompt)
	return r.term.ReadLine()
}

// ScanReader reads newline-delimited input from any reader.
type ScanReader struct {
	scanner *bufio.Scanner
	out     io.Writer
}

// NewScanReader returns a LineReader over r that echoes prompts to out.
func NewScanReader(r io.Reader, out io.Writer) *ScanReader {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), 1<<20)
	return &ScanReader{scanner: s, out: out}
}

// ReadLine implements LineReader.
func (r *ScanReader) ReadLine(prompt string) (string, error) {
	if prompt != "" {
		_, _ = io.WriteString(r.out, prompt)
	}
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return r.scanner.Text(), nil
}

// Width returns the column count for formatting replies: the terminal
// width capped at limit, or limit when f is not a terminal.
func Width(f *os.File, limit int) int {
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil || w <= 0 || w > limit {
		return limit
	}
	return w
}
