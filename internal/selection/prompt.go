package selection

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// PromptChooser is a line-oriented Chooser for non-interactive terminals.
// It prints a numbered list and reads either a number or a name.
type PromptChooser struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPromptChooser reads answers from in and writes the menu to out.
func NewPromptChooser(in io.Reader, out io.Writer) *PromptChooser {
	return &PromptChooser{in: bufio.NewReader(in), out: out}
}

// Pick prints candidates and reads one answer: a candidate name, or else a
// menu number. An empty answer, "q" or EOF cancels. Unrecognized answers
// re-prompt.
func (p *PromptChooser) Pick(ctx context.Context, candidates []string) (string, error) {
	for i, c := range candidates {
		_, _ = fmt.Fprintf(p.out, "  %d) %s\n", i+1, c)
	}
	for {
		if err := ctx.Err(); err != nil {
			return "", ErrCancelled
		}
		_, _ = fmt.Fprint(p.out, "Instance: ")

		line, err := p.in.ReadString('\n')
		answer := strings.TrimSpace(line)
		if answer == "" {
			return "", ErrCancelled
		}
		// An exact name wins over a menu number or "q".
		for _, c := range candidates {
			if c == answer {
				return c, nil
			}
		}
		if answer == "q" {
			return "", ErrCancelled
		}
		if n, convErr := strconv.Atoi(answer); convErr == nil && n >= 1 && n <= len(candidates) {
			return candidates[n-1], nil
		}
		if err != nil {
			return "", ErrCancelled
		}
		_, _ = fmt.Fprintf(p.out, "unknown instance %q\n", answer)
	}
}
