// Package prompt provides line-based prompts for terminals where the
// interactive forms cannot run.
package prompt

//go:generate mockgen -source=prompt.go -destination=prompt_mock.go -package=prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

var (
	// ErrEmptyInput is returned when the user provides empty input and no default is set.
	ErrEmptyInput = errors.New("empty input")

	// ErrInvalidInput is returned when the user provides invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoOptions is returned by Select when there is nothing to choose from.
	ErrNoOptions = errors.New("no options to choose from")
)

// Prompter defines the interface for interactive prompts.
type Prompter interface {
	// Input prompts for a single line of text input.
	Input(prompt string, defaultValue string) (string, error)

	// Confirm prompts for a yes/no confirmation.
	Confirm(prompt string, defaultValue bool) (bool, error)

	// Select prompts for one of options, by number or by name.
	Select(prompt string, options []string, defaultValue string) (string, error)
}

// StdPrompter is the standard implementation of Prompter using stdin/stdout.
type StdPrompter struct {
	reader *bufio.Reader
	writer io.Writer
}

// NewStdPrompter creates a new StdPrompter.
func NewStdPrompter() *StdPrompter {
	return &StdPrompter{
		reader: bufio.NewReader(os.Stdin),
		writer: os.Stdout,
	}
}

// NewPrompter creates a new Prompter with custom reader and writer (for testing).
func NewPrompter(reader io.Reader, writer io.Writer) *StdPrompter {
	return &StdPrompter{
		reader: bufio.NewReader(reader),
		writer: writer,
	}
}

// Input prompts for a single line of text input.
func (p *StdPrompter) Input(prompt string, defaultValue string) (string, error) {
	if defaultValue != "" {
		if _, err := fmt.Fprintf(p.writer, "%s [%s]: ", prompt, defaultValue); err != nil {
			return "", errors.Wrap(err, "failed to write prompt")
		}
	} else {
		if _, err := fmt.Fprintf(p.writer, "%s: ", prompt); err != nil {
			return "", errors.Wrap(err, "failed to write prompt")
		}
	}

	input, err := p.readLine()
	if err != nil {
		return "", err
	}

	if input == "" {
		if defaultValue == "" {
			return "", ErrEmptyInput
		}

		return defaultValue, nil
	}

	return input, nil
}

// Confirm prompts for a yes/no confirmation.
func (p *StdPrompter) Confirm(prompt string, defaultValue bool) (bool, error) {
	defaultStr := "y/N"
	if defaultValue {
		defaultStr = "Y/n"
	}

	if _, err := fmt.Fprintf(p.writer, "%s [%s]: ", prompt, defaultStr); err != nil {
		return false, errors.Wrap(err, "failed to write prompt")
	}

	input, err := p.readLine()
	if err != nil {
		return false, err
	}

	switch strings.ToLower(input) {
	case "":
		return defaultValue, nil
	case "y", "yes":
		return true, nil
	case "n", "no":
		return false, nil
	default:
		return false, errors.Wrapf(ErrInvalidInput, "expected y/n, got %q", input)
	}
}

// Select lists options with a 1-based index and reads a choice. Names match
// case-insensitively. Empty input picks defaultValue when it is one of options.
func (p *StdPrompter) Select(prompt string, options []string, defaultValue string) (string, error) {
	if len(options) == 0 {
		return "", ErrNoOptions
	}

	if _, err := fmt.Fprintln(p.writer, prompt); err != nil {
		return "", errors.Wrap(err, "failed to write prompt")
	}

	for i, opt := range options {
		marker := " "
		if opt == defaultValue {
			marker = "*"
		}

		if _, err := fmt.Fprintf(p.writer, "%s %2d) %s\n", marker, i+1, opt); err != nil {
			return "", errors.Wrap(err, "failed to write prompt")
		}
	}

	if _, err := fmt.Fprint(p.writer, "Choice: "); err != nil {
		return "", errors.Wrap(err, "failed to write prompt")
	}

	input, err := p.readLine()
	if err != nil {
		return "", err
	}

	if input == "" {
		for _, opt := range options {
			if opt == defaultValue {
				return opt, nil
			}
		}

		return "", ErrEmptyInput
	}

	if n, convErr := strconv.Atoi(input); convErr == nil {
		if n < 1 || n > len(options) {
			return "", errors.Wrapf(ErrInvalidInput, "choice %d out of range 1-%d", n, len(options))
		}

		return options[n-1], nil
	}

	for _, opt := range options {
		if strings.EqualFold(opt, input) {
			return opt, nil
		}
	}

	return "", errors.Wrapf(ErrInvalidInput, "%q is not an option", input)
}

func (p *StdPrompter) readLine() (string, error) {
	input, err := p.reader.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || input == "") {
		return "", errors.Wrap(err, "failed to read input")
	}

	return strings.TrimSpace(input), nil
}
