package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/praveenpotnurii/BifrostLink/pkg/services"
)

// clearAnswer empties a field that already holds a value.
const clearAnswer = "-"

// errInputClosed is returned when the operator closes stdin mid-prompt.
var errInputClosed = errors.New("input closed")

// prompter reads operator input line by line. When the input is a terminal,
// secret fields are read without echo.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
	fd  int
	tty bool
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	p := &prompter{in: bufio.NewReader(in), out: out, fd: -1}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.fd = int(f.Fd())
		p.tty = true
	}
	return p
}

// line prints label and reads one line without its trailing newline.
func (p *prompter) line(label string) (string, error) {
	fmt.Fprint(p.out, label)
	text, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && text != "" {
			return strings.TrimRight(text, "\r\n"), nil
		}
		if errors.Is(err, io.EOF) {
			return "", errInputClosed
		}
		return "", err
	}
	return strings.TrimRight(text, "\r\n"), nil
}

// field asks for a value, keeping current when the answer is empty and
// clearing it when the answer is "-".
func (p *prompter) field(label, current string) (string, error) {
	prompt := label + ": "
	if current != "" {
		prompt = fmt.Sprintf("%s [%s]: ", label, current)
	}
	value, err := p.line(prompt)
	if err != nil {
		return "", err
	}
	switch value = strings.TrimSpace(value); value {
	case "":
		return current, nil
	case clearAnswer:
		return "", nil
	}
	return value, nil
}

// secret asks for a value without echo on a terminal. An empty answer keeps
// current.
func (p *prompter) secret(label, current string) (string, error) {
	prompt := label + ": "
	if current != "" {
		prompt = label + " [unchanged]: "
	}
	if !p.tty {
		value, err := p.line(prompt)
		if err != nil {
			return "", err
		}
		if value == "" {
			return current, nil
		}
		return value, nil
	}

	fmt.Fprint(p.out, prompt)
	raw, err := term.ReadPassword(p.fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
	}
	if len(raw) == 0 {
		return current, nil
	}
	return string(raw), nil
}

// choose lists options and returns the chosen value. The answer may be the
// option's number or its value; an empty answer keeps current.
func (p *prompter) choose(label string, options []services.Option, current string) (string, error) {
	fmt.Fprintf(p.out, "%s:\n", label)
	for i, opt := range options {
		marker := " "
		if opt.Value == current {
			marker = "*"
		}
		fmt.Fprintf(p.out, "  %s %d) %s\n", marker, i+1, opt.Label)
	}

	for {
		answer, err := p.field("Choice", current)
		if err != nil {
			return "", err
		}
		for i, opt := range options {
			if answer == opt.Value || answer == fmt.Sprint(i+1) {
				return opt.Value, nil
			}
		}
		fmt.Fprintf(p.out, "Unknown choice %q\n", answer)
	}
}

// Confirm asks a y/N question. Anything but y or yes declines.
func (p *prompter) Confirm(_ context.Context, question string) (bool, error) {
	answer, err := p.line(question + " [y/N]: ")
	if err != nil {
		if errors.Is(err, errInputClosed) {
			return false, nil
		}
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

var _ services.Confirmer = (*prompter)(nil)
