package navigation

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/hopper/internal/domain/instance"
	"github.com/zjrosen/hopper/internal/log"
	"github.com/zjrosen/hopper/internal/selection"
	"github.com/zjrosen/hopper/internal/tracing"
)

// DefaultLookbackWindow bounds how far back MatchEndingAt may look for the
// start of a match ending at the cursor.
const DefaultLookbackWindow = 100

// Engine performs hops. It keeps no state between calls; the active instance
// lives in the selection state.
type Engine struct {
	provider instance.Provider
	state    *selection.State
	chooser  selection.Chooser
	lookback int
	tracer   trace.Tracer
}

// Option configures an Engine.
type Option func(*Engine)

// WithLookbackWindow overrides DefaultLookbackWindow. Values <= 0 are ignored.
func WithLookbackWindow(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.lookback = n
		}
	}
}

// WithTracer records a span per hop.
func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) {
		if t != nil {
			e.tracer = t
		}
	}
}

// NewEngine creates an engine over provider. chooser is consulted whenever
// state holds no valid selection.
func NewEngine(provider instance.Provider, state *selection.State, chooser selection.Chooser, opts ...Option) *Engine {
	e := &Engine{
		provider: provider,
		state:    state,
		chooser:  chooser,
		lookback: DefaultLookbackWindow,
		tracer:   tracing.Noop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Hop moves cursor count occurrences in dir. A negative count reverses the
// direction and 0 counts as 1. Running out of matches is not an error: the
// report says so and the cursor stays put. Errors come from selection
// (selection.ErrCancelled, selection.ErrNoInstancesDefined,
// instance.ErrNotFound) or from the cursor, wrapped in
// instance.ErrInvalidPattern.
func (e *Engine) Hop(ctx context.Context, cursor TextCursor, dir Direction, count int) (HopResult, error) {
	if count == 0 {
		count = 1
	}
	if dir == Backward {
		count = -count
	}
	return e.hop(ctx, cursor, count)
}

// hop handles both directions; the sign of count picks the direction.
func (e *Engine) hop(ctx context.Context, cursor TextCursor, count int) (result HopResult, err error) {
	dir, n := Forward, count
	if count < 0 {
		dir, n = Backward, -count
	}

	ctx, span := e.tracer.Start(ctx, tracing.SpanHop, trace.WithAttributes(
		attribute.String(tracing.AttrDirection, dir.String()),
		attribute.Int(tracing.AttrCount, n),
		attribute.Int(tracing.AttrFromPosition, cursor.Position()),
	))
	defer func() {
		tracing.RecordError(span, err)
		span.End()
	}()

	name, err := e.state.Resolve(ctx, e.provider, e.chooser)
	if err != nil {
		return HopResult{}, err
	}
	inst, err := e.provider.Get(name)
	if err != nil {
		return HopResult{}, fmt.Errorf("active instance %q: %w", name, err)
	}
	span.AddEvent(tracing.EventSelectionResolved, trace.WithAttributes(
		attribute.String(tracing.AttrInstanceName, name),
		attribute.String(tracing.AttrPatternKind, inst.Pattern().Kind().String()),
		attribute.String(tracing.AttrPlacement, inst.Placement().String()),
	))

	pattern := SearchPattern(inst.Pattern())
	placement := inst.Placement()
	m := matcher{cursor: cursor, pattern: pattern, lookback: e.lookback, name: name}

	effective := n
	if placement.Adjust && startsSearchOnMatch(placement, dir) {
		var onMatch bool
		if dir == Forward {
			onMatch, err = m.at()
		} else {
			onMatch, err = m.endingAt()
		}
		if err != nil {
			return HopResult{}, err
		}
		if onMatch {
			effective++
			span.AddEvent(tracing.EventAdjustedCount)
		}
	}
	span.SetAttributes(attribute.Int(tracing.AttrEffectiveCount, effective))

	origin := cursor.Position()
	rng, ok, err := cursor.AdvanceToNth(pattern, dir, effective)
	if err != nil {
		return HopResult{}, m.wrap(err)
	}

	var report Report
	if ok {
		place(cursor, placement, rng)
		report, err = m.found(dir)
	} else {
		cursor.SetPosition(origin)
		report, err = m.exhausted(dir, placement)
	}
	if err != nil {
		return HopResult{}, err
	}

	result = HopResult{Instance: name, Position: cursor.Position(), Report: report}
	span.SetAttributes(
		attribute.Int(tracing.AttrToPosition, result.Position),
		attribute.String(tracing.AttrReportKind, report.Kind.String()),
		attribute.Int(tracing.AttrMatchIndex, report.Index),
		attribute.Int(tracing.AttrMatchTotal, report.Total),
	)
	log.Debug(log.CatNav, "Hop",
		"instance", name,
		"direction", dir,
		"count", n,
		"effective", effective,
		"from", origin,
		"to", result.Position,
		"report", report.Message())
	return result, nil
}

// startsSearchOnMatch reports whether placement leaves the cursor where a
// search in dir would find the same match again: match start going forward,
// match end going backward.
func startsSearchOnMatch(p instance.Placement, dir Direction) bool {
	if dir == Forward {
		return !p.AtEnd
	}
	return p.AtEnd
}

func place(cursor TextCursor, p instance.Placement, rng MatchRange) {
	if !p.Adjust {
		return
	}
	if p.AtEnd {
		cursor.SetPosition(rng.End)
	} else {
		cursor.SetPosition(rng.Start)
	}
}

// matcher binds a cursor to one search expression.
type matcher struct {
	cursor   TextCursor
	pattern  string
	lookback int
	name     string
}

func (m matcher) wrap(err error) error {
	return fmt.Errorf("instance %q: %w: %w", m.name, instance.ErrInvalidPattern, err)
}

func (m matcher) at() (bool, error) {
	ok, err := m.cursor.MatchAt(m.pattern)
	if err != nil {
		return false, m.wrap(err)
	}
	return ok, nil
}

func (m matcher) endingAt() (bool, error) {
	limit := max(0, m.cursor.Position()-m.lookback)
	ok, err := m.cursor.MatchEndingAt(m.pattern, limit)
	if err != nil {
		return false, m.wrap(err)
	}
	return ok, nil
}

func (m matcher) count(from, to int) (int, error) {
	n, err := m.cursor.CountMatches(m.pattern, from, to)
	if err != nil {
		return 0, m.wrap(err)
	}
	return n, nil
}

func (m matcher) found(dir Direction) (Report, error) {
	total, err := m.count(0, m.cursor.Len())
	if err != nil {
		return Report{}, err
	}
	before, err := m.count(0, m.cursor.Position())
	if err != nil {
		return Report{}, err
	}
	onMatch, err := m.at()
	if err != nil {
		return Report{}, err
	}
	index := before
	if onMatch {
		index++
	}
	return Report{Kind: Found, Index: index, Total: total, Direction: dir}, nil
}

func (m matcher) exhausted(dir Direction, p instance.Placement) (Report, error) {
	total, err := m.count(0, m.cursor.Len())
	if err != nil {
		return Report{}, err
	}

	var atBoundary bool
	if dir == Forward {
		if !p.Adjust || p.AtEnd {
			atBoundary, err = m.endingAt()
		} else {
			atBoundary, err = m.at()
		}
	} else {
		if !p.Adjust || !p.AtEnd {
			atBoundary, err = m.at()
		} else {
			atBoundary, err = m.endingAt()
		}
	}
	if err != nil {
		return Report{}, err
	}

	if atBoundary {
		which := Last
		if dir == Backward {
			which = First
		}
		return Report{Kind: AtBoundary, Total: total, Which: which, Direction: dir}, nil
	}
	return Report{Kind: NoMatch, Total: total, Direction: dir}, nil
}
