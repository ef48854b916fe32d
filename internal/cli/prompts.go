package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tutu-network/numgen/internal/domain"
)

// ─── Prompts ────────────────────────────────────────────────────────────────
// Line-based questions for interactive mode. Every prompt re-asks on bad
// input and returns io.EOF when stdin closes.

type prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewScanner(in), out: out}
}

// line prints label and returns the trimmed answer.
func (p *prompter) line(label string) (string, error) {
	fmt.Fprint(p.out, label)
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", err
		}
		fmt.Fprintln(p.out)
		return "", io.EOF
	}
	return strings.TrimSpace(p.in.Text()), nil
}

// Int asks for a non-negative integer in [lo, hi]. hi < lo means no upper
// bound.
func (p *prompter) Int(label string, lo, hi int64) (int64, error) {
	for {
		val, err := p.line(label)
		if err != nil {
			return 0, err
		}
		if val == "" {
			fmt.Fprintln(p.out, "Input cannot be empty.")
			continue
		}
		n, err := strconv.ParseInt(val, 10, 64)
		if err != nil || n < 0 {
			fmt.Fprintln(p.out, "Please enter a valid integer.")
			continue
		}
		if n < lo {
			fmt.Fprintf(p.out, "Value must be >= %d.\n", lo)
			continue
		}
		if hi >= lo && n > hi {
			fmt.Fprintf(p.out, "Value must be <= %d.\n", hi)
			continue
		}
		return n, nil
	}
}

// YesNo asks a y/n question. Empty input returns def.
func (p *prompter) YesNo(label string, def bool) (bool, error) {
	for {
		val, err := p.line(label)
		if err != nil {
			return false, err
		}
		switch strings.ToLower(val) {
		case "":
			return def, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(p.out, "Please answer with 'y' or 'n'.")
	}
}

// Choice asks for one of choices, case-insensitively, and returns the
// canonical spelling.
func (p *prompter) Choice(label string, choices []string) (string, error) {
	for {
		val, err := p.line(label)
		if err != nil {
			return "", err
		}
		for _, c := range choices {
			if strings.EqualFold(val, c) {
				return c, nil
			}
		}
		fmt.Fprintf(p.out, "Invalid choice. Allowed: %s\n", strings.Join(choices, ", "))
	}
}

// Choose implements resolver.Chooser: a 1-indexed menu where empty input
// selects the first entry.
func (p *prompter) Choose(callingCode int, options []domain.RegionOption) (int, error) {
	fmt.Fprintf(p.out, "Calling code +%d is shared by multiple regions:\n", callingCode)
	for i, o := range options {
		fmt.Fprintf(p.out, "  %d. %s %s\n", i+1, o.DisplayName, dim("("+o.RegionCode+")"))
	}
	label := fmt.Sprintf("Select region (1-%d) [default 1]: ", len(options))
	for {
		val, err := p.line(label)
		if err == io.EOF {
			return 0, fmt.Errorf("%w: input closed", domain.ErrNoSelection)
		}
		if err != nil {
			return 0, err
		}
		idx := 1
		if val != "" {
			idx, err = strconv.Atoi(val)
			if err != nil {
				fmt.Fprintln(p.out, "Please enter a number.")
				continue
			}
		}
		if idx < 1 || idx > len(options) {
			fmt.Fprintln(p.out, "Invalid choice, try again.")
			continue
		}
		return idx - 1, nil
	}
}
