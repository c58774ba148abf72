// Package session implements the interactive hop session: a line-oriented
// REPL over one text with the instance registry, selection and engine wired
// together.
package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/zjrosen/hopper/internal/app"
	"github.com/zjrosen/hopper/internal/flags"
	"github.com/zjrosen/hopper/internal/log"
	"github.com/zjrosen/hopper/internal/navigation"
	"github.com/zjrosen/hopper/internal/presentation"
	"github.com/zjrosen/hopper/internal/pubsub"
	"github.com/zjrosen/hopper/internal/selection"
	"github.com/zjrosen/hopper/internal/textbuf"
	"github.com/zjrosen/hopper/internal/watcher"
)

// Prompt is printed before each command.
const Prompt = "hopper> "

// Session owns one buffer and the engine hopping over it. Commands and
// registry reloads are serialized on mu.
type Session struct {
	mu sync.Mutex

	id      string
	name    string
	app     *app.App
	buf     *textbuf.Buffer
	engine  *navigation.Engine
	chooser selection.Chooser

	in     *bufio.Reader
	out    *syncWriter
	format *presentation.Formatter

	echoCancel context.CancelFunc
}

// Option configures a Session.
type Option func(*Session)

// WithInput reads commands from r instead of stdin.
func WithInput(r io.Reader) Option {
	return func(s *Session) { s.in = bufio.NewReader(r) }
}

// WithOutput writes to w instead of stdout.
func WithOutput(w io.Writer) Option {
	return func(s *Session) { s.out = &syncWriter{w: w} }
}

// WithChooser overrides the default numbered prompt chooser.
func WithChooser(c selection.Chooser) Option {
	return func(s *Session) { s.chooser = c }
}

// WithName labels the text, normally with its file path.
func WithName(name string) Option {
	return func(s *Session) { s.name = name }
}

// New creates a session over text.
func New(a *app.App, text string, opts ...Option) *Session {
	s := &Session{
		id:   uuid.NewString(),
		name: "<text>",
		app:  a,
		buf:  a.NewBuffer(text),
		in:   bufio.NewReader(os.Stdin),
		out:  &syncWriter{w: os.Stdout},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.chooser == nil {
		// Shares the session's reader so buffered input is not lost.
		s.chooser = selection.NewPromptChooser(s.in, s.out)
	}
	s.format = presentation.NewFormatter(s.out)
	s.engine = a.Engine(s.chooser)
	return s
}

// ID returns the session's unique id.
func (s *Session) ID() string {
	return s.id
}

// Buffer returns the session's text cursor.
func (s *Session) Buffer() *textbuf.Buffer {
	return s.buf
}

// Run reads and executes commands until quit, EOF or ctx is done.
func (s *Session) Run(ctx context.Context) error {
	log.Info(log.CatSession, "Session started", "id", s.id, "name", s.name, "len", s.buf.Len())
	defer log.Info(log.CatSession, "Session ended", "id", s.id)
	defer s.stopEcho()

	if s.app.Flags().Enabled(flags.FlagWatchRegistry) {
		stop, err := s.watchRegistry(ctx)
		if err != nil {
			log.ErrorErr(log.CatSession, "Registry watch unavailable", err, "path", s.app.RegistryPath())
			s.printf("warning: not watching %s: %v\n", s.app.RegistryPath(), err)
		} else {
			defer stop()
		}
	}

	stopFollow := s.followChanges(ctx)
	defer stopFollow()

	s.printf("hopper session on %s (%d chars, %d instances). Type help for commands.\n",
		s.name, s.buf.Len(), len(s.app.Service().Names()))

	for {
		if ctx.Err() != nil {
			return nil
		}
		s.printf("%s", Prompt)
		line, readErr := s.in.ReadString('\n')
		if strings.TrimSpace(line) != "" {
			quit, err := s.Execute(ctx, line)
			if err != nil {
				s.printf("error: %v\n", err)
			}
			if quit {
				return nil
			}
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				s.printf("\n")
				return nil
			}
			return fmt.Errorf("reading command: %w", readErr)
		}
	}
}

// Reload replaces the registry from its store.
func (s *Session) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reloadLocked(ctx)
}

func (s *Session) reloadLocked(ctx context.Context) error {
	if err := s.app.Service().Reload(ctx); err != nil {
		return err
	}
	s.printf("registry reloaded (%d instances)\n", len(s.app.Service().Names()))
	return nil
}

func (s *Session) watchRegistry(ctx context.Context) (func(), error) {
	w, err := watcher.New(watcher.DefaultConfig(s.app.RegistryPath()))
	if err != nil {
		return nil, err
	}
	changes, err := w.Start()
	if err != nil {
		_ = w.Stop()
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case <-changes:
				if err := s.Reload(ctx); err != nil {
					log.ErrorErr(log.CatSession, "Reload after file change failed", err)
					s.printf("\nerror: reloading registry: %v\n", err)
				}
			}
		}
	}()

	return func() {
		cancel()
		_ = w.Stop()
		wg.Wait()
	}, nil
}

// followChanges reports when the selected instance disappears from the
// registry, whether through a command or a reload.
func (s *Session) followChanges(ctx context.Context) func() {
	ctx, cancel := context.WithCancel(ctx)
	ch := s.app.Service().Subscribe(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range ch {
			log.Debug(log.CatSession, "Registry changed",
				"event", ev.Type, "name", ev.Payload.Name, "old", ev.Payload.OldName)
			selected, ok := s.app.State().Name()
			if !ok {
				continue
			}
			var gone bool
			switch ev.Type {
			case pubsub.DeletedEvent:
				gone = ev.Payload.Name == selected
			case pubsub.UpdatedEvent:
				gone = ev.Payload.OldName == selected && ev.Payload.Name != selected
			case pubsub.ReloadedEvent:
				gone = !s.app.Service().Has(selected)
			}
			if gone {
				s.printf("note: selected instance %s is gone; the next hop will ask for one\n", selected)
			}
		}
	}()
	return func() {
		cancel()
		<-done
	}
}

func (s *Session) startEcho(ctx context.Context) error {
	if s.echoCancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	ch := log.Subscribe(ctx)
	if ch == nil {
		cancel()
		return errors.New("logging is off; restart with --debug")
	}
	s.echoCancel = cancel
	go func() {
		for ev := range ch {
			s.printf("%s", ev.Payload)
		}
	}()
	return nil
}

func (s *Session) stopEcho() {
	if s.echoCancel != nil {
		s.echoCancel()
		s.echoCancel = nil
	}
}

func (s *Session) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(s.out, format, args...)
}

type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (w *syncWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.w.Write(p)
}
