package presentation

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"
)

var headerStyle = lipgloss.NewStyle().Bold(true)

// patternWrapWidth is where long pattern columns wrap. Regexes without
// spaces are never broken.
const patternWrapWidth = 60

// Formatter handles output formatting
type Formatter struct {
	writer io.Writer
}

// NewFormatter creates a new formatter
func NewFormatter(writer io.Writer) *Formatter {
	return &Formatter{
		writer: writer,
	}
}

// FormatInstances formats a list of instances as JSON
func (f *Formatter) FormatInstances(instances []InstanceDTO) error {
	return f.encode(instances)
}

// FormatHop formats a hop outcome as JSON
func (f *Formatter) FormatHop(hop HopDTO) error {
	return f.encode(hop)
}

func (f *Formatter) encode(v any) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// WriteInstanceTable writes instances as aligned text columns. The selected
// instance is marked with "*".
func (f *Formatter) WriteInstanceTable(instances []InstanceDTO) error {
	if len(instances) == 0 {
		_, err := fmt.Fprintln(f.writer, "no instances defined")
		return err
	}

	nameWidth := runewidth.StringWidth("NAME")
	for _, in := range instances {
		nameWidth = max(nameWidth, runewidth.StringWidth(in.Name))
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("  %s  %-9s  %-8s  %s",
		runewidth.FillRight("NAME", nameWidth), "PLACEMENT", "KIND", "PATTERN")))
	b.WriteByte('\n')
	indent := strings.Repeat(" ", 2+nameWidth+2+9+2+8+2)
	for _, in := range instances {
		mark := " "
		if in.Selected {
			mark = "*"
		}
		pattern := wordwrap.String(PatternText(in), patternWrapWidth)
		pattern = strings.ReplaceAll(pattern, "\n", "\n"+indent)
		fmt.Fprintf(&b, "%s %s  %-9s  %-8s  %s\n",
			mark, runewidth.FillRight(in.Name, nameWidth), in.Placement, in.Kind, pattern)
	}
	_, err := io.WriteString(f.writer, b.String())
	return err
}

// PatternText renders the pattern column of an instance.
func PatternText(in InstanceDTO) string {
	if in.Kind == "regex" {
		return in.Regex
	}
	quoted := make([]string, len(in.Literals))
	for i, s := range in.Literals {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return strings.Join(quoted, " ")
}

// WriteHop writes the one-line human form of a hop outcome.
func (f *Formatter) WriteHop(hop HopDTO) error {
	_, err := fmt.Fprintf(f.writer, "%s: %s (offset %d, line %d, col %d)\n",
		hop.Instance, hop.Report.Message, hop.Position, hop.Line, hop.Column)
	return err
}
