package chooser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/hopper/internal/log"
	"github.com/zjrosen/hopper/internal/selection"
)

// DefaultTitle is shown above the candidates.
const DefaultTitle = "Select instance"

// Chooser runs the picker as a full bubbletea program and implements
// selection.Chooser.
type Chooser struct {
	title   string
	in      io.Reader
	out     io.Writer
	initial string
}

var zoneOnce sync.Once

// Option configures a Chooser.
type Option func(*Chooser)

// WithInput reads keys from r instead of stdin.
func WithInput(r io.Reader) Option {
	return func(c *Chooser) { c.in = r }
}

// WithOutput renders to w instead of stderr.
func WithOutput(w io.Writer) Option {
	return func(c *Chooser) { c.out = w }
}

// WithTitle overrides DefaultTitle.
func WithTitle(title string) Option {
	return func(c *Chooser) { c.title = title }
}

// WithInitial highlights name when the picker opens.
func WithInitial(name string) Option {
	return func(c *Chooser) { c.initial = name }
}

// NewChooser returns a chooser reading stdin and drawing on stderr, so
// stdout stays clean for --json output.
func NewChooser(opts ...Option) *Chooser {
	zoneOnce.Do(zone.NewGlobal)
	c := &Chooser{title: DefaultTitle, in: os.Stdin, out: os.Stderr}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ selection.Chooser = (*Chooser)(nil)

// Pick shows the picker and blocks until the user selects or cancels.
func (c *Chooser) Pick(ctx context.Context, candidates []string) (string, error) {
	m := New(c.title, candidates).SetSelected(c.initial)

	p := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithInput(c.in),
		tea.WithOutput(c.out),
		tea.WithMouseCellMotion(),
	)
	final, err := p.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) || ctx.Err() != nil {
			log.Debug(log.CatUI, "Chooser aborted", "error", err)
			return "", selection.ErrCancelled
		}
		return "", fmt.Errorf("running chooser: %w", err)
	}

	fm, ok := final.(Model)
	if !ok {
		return "", fmt.Errorf("running chooser: unexpected model %T", final)
	}
	name, ok := fm.Chosen()
	if !ok {
		log.Debug(log.CatUI, "Chooser cancelled")
		return "", selection.ErrCancelled
	}
	log.Debug(log.CatUI, "Chooser picked instance", "name", name)
	return name, nil
}
