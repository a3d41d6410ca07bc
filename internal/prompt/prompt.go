// Package prompt runs the interactive questions asked before the pipeline
// starts: account username, what to do with an existing archive, whether to
// clear a leftover working directory, and whether to continue on low disk
// space. Every question has a default that is used in assume-yes mode.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"

	"fonarchive/internal/failures"
)

// Option is one accepted answer to a choice question.
type Option struct {
	Key   string
	Label string
}

// Prompter reads answers line by line from a reader.
type Prompter struct {
	reader    *bufio.Reader
	writer    io.Writer
	assumeYes bool
	input     io.Reader
}

// New returns a prompter over in and out. With assumeYes every question is
// answered with its default without reading input.
func New(in io.Reader, out io.Writer, assumeYes bool) *Prompter {
	if out == nil {
		out = io.Discard
	}
	return &Prompter{reader: bufio.NewReader(in), writer: out, assumeYes: assumeYes, input: in}
}

// AssumeYes reports whether defaults are used without asking.
func (p *Prompter) AssumeYes() bool {
	return p.assumeYes
}

// Interactive reports whether input comes from a terminal.
func (p *Prompter) Interactive() bool {
	file, ok := p.input.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd())) || isatty.IsCygwinTerminal(file.Fd())
}

// Printf writes a message to the prompt output.
func (p *Prompter) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.writer, format, args...)
}

// Ask prints question and returns the trimmed answer, or def when the answer
// is empty. End of input before any answer yields failures.ErrCancelled.
func (p *Prompter) Ask(question, def string) (string, error) {
	if p.assumeYes {
		return def, nil
	}
	label := question
	if def != "" {
		label += fmt.Sprintf(" [default: %s]", def)
	}
	_, _ = fmt.Fprintf(p.writer, "%s: ", label)

	line, err := p.reader.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		_, _ = fmt.Fprintln(p.writer)
		return "", failures.Wrap(failures.ErrCancelled, "prompt", "read input", "no answer given", err)
	}
	answer := strings.TrimSpace(line)
	if answer == "" {
		return def, nil
	}
	return answer, nil
}

// Choose asks until the answer matches one of the option keys (case
// insensitive). An empty answer selects def when def is a valid key.
func (p *Prompter) Choose(question string, options []Option, def string) (string, error) {
	keys := make([]string, 0, len(options))
	for _, opt := range options {
		keys = append(keys, opt.Key)
	}
	label := fmt.Sprintf("%s (%s)", question, strings.Join(keys, "/"))
	for {
		answer, err := p.Ask(label, def)
		if err != nil {
			return "", err
		}
		for _, opt := range options {
			if strings.EqualFold(answer, opt.Key) {
				return opt.Key, nil
			}
		}
		_, _ = fmt.Fprintln(p.writer, "Invalid input. Try again.")
	}
}

// Confirm asks a y/n question.
func (p *Prompter) Confirm(question string, def bool) (bool, error) {
	if p.assumeYes {
		return true, nil
	}
	defKey := "n"
	if def {
		defKey = "y"
	}
	answer, err := p.Choose(question, []Option{{Key: "y", Label: "yes"}, {Key: "n", Label: "no"}}, defKey)
	if err != nil {
		return false, err
	}
	return answer == "y", nil
}
