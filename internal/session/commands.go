package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/shlex"
	"github.com/mattn/go-runewidth"

	"github.com/zjrosen/hopper/internal/domain/instance"
	"github.com/zjrosen/hopper/internal/log"
	"github.com/zjrosen/hopper/internal/navigation"
	"github.com/zjrosen/hopper/internal/presentation"
	"github.com/zjrosen/hopper/internal/selection"
)

// Command errors.
var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrUsage          = errors.New("usage")
)

const helpText = `Commands:
  n [N]                          hop to the Nth next match (default 1)
  p [N]                          hop to the Nth previous match
  goto OFFSET                    move the cursor to a character offset
  select [NAME]                  choose the active instance
  list                           show defined instances
  where                          show cursor position and selection
  add NAME regex PLACEMENT EXPR  define a regex instance
  add NAME literals PLACEMENT S...
                                 define a literal-set instance
  delete NAME                    remove an instance
  reload                         re-read the registry file
  log [on|off]                   echo debug log entries
  help                           show this text
  quit                           leave the session
Placement is one of natural, start, end. Quote arguments containing spaces.
`

// Execute runs one command line. quit is true when the session should end.
func (s *Session) Execute(ctx context.Context, line string) (quit bool, err error) {
	args, err := shlex.Split(line)
	if err != nil {
		return false, fmt.Errorf("parsing %q: %w", line, err)
	}
	if len(args) == 0 {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cmd, rest := args[0], args[1:]
	log.Debug(log.CatSession, "Command", "id", s.id, "cmd", cmd, "args", len(rest))

	switch cmd {
	case "n", "next":
		return false, s.hop(ctx, navigation.Forward, rest)
	case "p", "prev", "previous":
		return false, s.hop(ctx, navigation.Backward, rest)
	case "goto":
		return false, s.gotoOffset(rest)
	case "select", "sel":
		return false, s.selectInstance(ctx, rest)
	case "list", "ls":
		return false, s.list()
	case "where":
		s.where()
		return false, nil
	case "add":
		return false, s.add(ctx, rest)
	case "delete", "rm":
		return false, s.delete(ctx, rest)
	case "reload":
		return false, s.reloadLocked(ctx)
	case "log":
		return false, s.toggleLog(ctx, rest)
	case "help", "?":
		s.printf("%s", helpText)
		return false, nil
	case "quit", "q", "exit":
		return true, nil
	default:
		return false, fmt.Errorf("%w %q (try help)", ErrUnknownCommand, cmd)
	}
}

func (s *Session) hop(ctx context.Context, dir navigation.Direction, args []string) error {
	count := 1
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("%w: count must be an integer, got %q", ErrUsage, args[0])
		}
		count = n
	}

	res, err := s.engine.Hop(ctx, s.buf, dir, count)
	switch {
	case errors.Is(err, selection.ErrCancelled):
		s.printf("cancelled\n")
		return nil
	case errors.Is(err, selection.ErrNoInstancesDefined):
		return fmt.Errorf("%w; define one with add", err)
	case err != nil:
		return err
	}

	line, col := s.buf.LineCol(res.Position)
	if err := s.format.WriteHop(presentation.FromHopResult(res, line, col)); err != nil {
		return err
	}
	s.showContext(res.Position)
	return nil
}

// showContext prints the cursor's line with a caret under the cursor.
func (s *Session) showContext(pos int) {
	text, col := s.buf.LineAt(pos)
	if text == "" {
		return
	}
	prefix := []rune(text)
	if col <= len(prefix) {
		prefix = prefix[:col]
	}
	s.printf("  %s\n  %s^\n", text, strings.Repeat(" ", runewidth.StringWidth(string(prefix))))
}

func (s *Session) gotoOffset(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: goto OFFSET", ErrUsage)
	}
	off, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("%w: offset must be an integer, got %q", ErrUsage, args[0])
	}
	s.buf.SetPosition(off)
	s.where()
	return nil
}

func (s *Session) selectInstance(ctx context.Context, args []string) error {
	svc := s.app.Service()
	switch len(args) {
	case 0:
		names := svc.Names()
		if len(names) == 0 {
			return selection.ErrNoInstancesDefined
		}
		name, err := s.chooser.Pick(ctx, names)
		if errors.Is(err, selection.ErrCancelled) {
			s.printf("cancelled\n")
			return nil
		}
		if err != nil {
			return err
		}
		if err := s.app.State().Set(name, svc); err != nil {
			return err
		}
		s.printf("selected %s\n", name)
		return nil
	case 1:
		if err := s.app.State().Set(args[0], svc); err != nil {
			return err
		}
		s.printf("selected %s\n", args[0])
		return nil
	default:
		return fmt.Errorf("%w: select [NAME]", ErrUsage)
	}
}

func (s *Session) list() error {
	selected, _ := s.app.State().Name()
	return s.format.WriteInstanceTable(presentation.FromDomainInstances(s.app.Service().List(), selected))
}

func (s *Session) where() {
	pos := s.buf.Position()
	line, col := s.buf.LineCol(pos)
	selected, ok := s.app.State().Name()
	switch {
	case !ok:
		selected = "(none)"
	case !s.app.Service().Has(selected):
		selected += " (deleted)"
	}
	s.printf("offset %d of %d, line %d, col %d, instance %s\n", pos, s.buf.Len(), line, col, selected)
}

func (s *Session) add(ctx context.Context, args []string) error {
	const usage = "add NAME regex|literals PLACEMENT ARGS..."
	if len(args) < 4 {
		return fmt.Errorf("%w: %s", ErrUsage, usage)
	}
	name, kind, placementArg, rest := args[0], args[1], args[2], args[3:]

	placement, err := instance.ParsePlacement(placementArg)
	if err != nil {
		return err
	}

	var pattern instance.Pattern
	switch kind {
	case "regex", "re":
		pattern = instance.Regex(strings.Join(rest, " "))
	case "literals", "lit":
		pattern = instance.Literals(rest...)
	default:
		return fmt.Errorf("%w: %s", ErrUsage, usage)
	}

	if err := s.app.Service().Add(ctx, name, pattern, placement); err != nil {
		return err
	}
	s.printf("added %s: %s, placement %s\n", name, pattern, placement)
	return nil
}

func (s *Session) delete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: delete NAME", ErrUsage)
	}
	if err := s.app.Service().Delete(ctx, args[0]); err != nil {
		return err
	}
	s.printf("deleted %s\n", args[0])
	return nil
}

func (s *Session) toggleLog(ctx context.Context, args []string) error {
	on := s.echoCancel == nil
	if len(args) == 1 {
		switch args[0] {
		case "on":
			on = true
		case "off":
			on = false
		default:
			return fmt.Errorf("%w: log [on|off]", ErrUsage)
		}
	}
	if !on {
		s.stopEcho()
		s.printf("log echo off\n")
		return nil
	}
	if err := s.startEcho(ctx); err != nil {
		return err
	}
	s.printf("log echo on\n")
	return nil
}
