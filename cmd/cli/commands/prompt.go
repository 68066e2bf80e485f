package commands

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// prompter asks questions on a line-based input, offering a default in brackets
type prompter struct {
	scanner *bufio.Scanner
	out     io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{scanner: bufio.NewScanner(in), out: out}
}

// ask returns the trimmed answer, or def when the answer is empty. Returns io.EOF
// when the input is exhausted.
func (p *prompter) ask(label, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(p.out, "%s: ", label)
	}

	if !p.scanner.Scan() {
		if err := p.scanner.Err(); err != nil {
			return "", fmt.Errorf("error reading input: %w", err)
		}
		return "", io.EOF
	}

	answer := strings.TrimSpace(p.scanner.Text())
	if answer == "" {
		return def, nil
	}
	return answer, nil
}

func (p *prompter) askInt(label string, def int) (int, error) {
	for {
		answer, err := p.ask(label, strconv.Itoa(def))
		if err != nil {
			return 0, err
		}
		if v, err := strconv.Atoi(answer); err == nil {
			return v, nil
		}
		fmt.Fprintf(p.out, "❌ %q is not a whole number\n", answer)
	}
}

func (p *prompter) askFloat(label string, def float64) (float64, error) {
	for {
		answer, err := p.ask(label, strconv.FormatFloat(def, 'g', -1, 64))
		if err != nil {
			return 0, err
		}
		if v, err := strconv.ParseFloat(answer, 64); err == nil {
			return v, nil
		}
		fmt.Fprintf(p.out, "❌ %q is not a number\n", answer)
	}
}

// askChoice lists options numbered from 1 and accepts either a number or an option.
// Returns the index of the chosen option.
func (p *prompter) askChoice(label string, options []string, def int) (int, error) {
	for i, option := range options {
		fmt.Fprintf(p.out, "  %2d. %s\n", i+1, option)
	}

	for {
		answer, err := p.ask(label, options[def])
		if err != nil {
			return 0, err
		}

		if n, err := strconv.Atoi(answer); err == nil && n >= 1 && n <= len(options) {
			return n - 1, nil
		}
		for i, option := range options {
			if strings.EqualFold(answer, option) {
				return i, nil
			}
		}
		fmt.Fprintf(p.out, "❌ Unknown choice %q\n", answer)
	}
}

func (p *prompter) confirm(label string) (bool, error) {
	answer, err := p.ask(label+" (y/n)", "n")
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes", nil
}
