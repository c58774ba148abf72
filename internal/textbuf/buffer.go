// Package textbuf is an in-memory text substrate for navigation. It holds the
// text as runes, tracks a cursor and matches with regexp2, so positions are
// rune offsets and patterns use the .NET regex dialect.
package textbuf

import (
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/zjrosen/hopper/internal/navigation"
)

// Buffer implements navigation.TextCursor.
type Buffer struct {
	runes    []rune
	pos      int
	compiler *Compiler
}

var _ navigation.TextCursor = (*Buffer)(nil)

// Option configures a Buffer.
type Option func(*Buffer)

// WithCompiler shares a pattern cache between buffers.
func WithCompiler(c *Compiler) Option {
	return func(b *Buffer) {
		if c != nil {
			b.compiler = c
		}
	}
}

// New returns a buffer over text with the cursor at 0.
func New(text string, opts ...Option) *Buffer {
	b := &Buffer{runes: []rune(text)}
	for _, opt := range opts {
		opt(b)
	}
	if b.compiler == nil {
		b.compiler = NewCompiler(0, 0)
	}
	return b
}

// Text returns the buffer contents.
func (b *Buffer) Text() string {
	return string(b.runes)
}

// Position returns the cursor offset in runes.
func (b *Buffer) Position() int {
	return b.pos
}

// SetPosition moves the cursor, clamped to [0, Len()].
func (b *Buffer) SetPosition(pos int) {
	b.pos = b.clamp(pos)
}

// Len returns the length in runes.
func (b *Buffer) Len() int {
	return len(b.runes)
}

func (b *Buffer) clamp(pos int) int {
	return min(max(pos, 0), len(b.runes))
}

// LineCol returns the 1-based line and column of pos.
func (b *Buffer) LineCol(pos int) (line, col int) {
	pos = b.clamp(pos)
	line, col = 1, 1
	for _, r := range b.runes[:pos] {
		if r == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}

// LineAt returns the text of the line containing pos, without its newline,
// and the offset of pos within it.
func (b *Buffer) LineAt(pos int) (string, int) {
	pos = b.clamp(pos)
	start := pos
	for start > 0 && b.runes[start-1] != '\n' {
		start--
	}
	end := pos
	for end < len(b.runes) && b.runes[end] != '\n' {
		end++
	}
	return strings.TrimSuffix(string(b.runes[start:end]), "\r"), pos - start
}

// MatchAt implements navigation.TextCursor.
func (b *Buffer) MatchAt(pattern string) (bool, error) {
	re, err := b.compiler.compile(pattern, anchorStart)
	if err != nil {
		return false, err
	}
	m, err := re.FindRunesMatchStartingAt(b.runes, b.pos)
	if err != nil {
		return false, err
	}
	return m != nil && m.Index == b.pos && m.Length > 0, nil
}

// MatchEndingAt implements navigation.TextCursor. The match must start at or
// after limit and end exactly at the cursor.
func (b *Buffer) MatchEndingAt(pattern string, limit int) (bool, error) {
	limit = b.clamp(limit)
	if limit >= b.pos {
		return false, nil
	}
	re, err := b.compiler.compileTail(pattern, endExactly, len(b.runes)-b.pos)
	if err != nil {
		return false, err
	}
	m, err := re.FindRunesMatchStartingAt(b.runes, limit)
	if err != nil {
		return false, err
	}
	return m != nil && m.Index < b.pos, nil
}

// AdvanceToNth implements navigation.TextCursor. Empty matches are skipped.
func (b *Buffer) AdvanceToNth(pattern string, dir navigation.Direction, n int) (navigation.MatchRange, bool, error) {
	if n < 1 {
		n = 1
	}

	var (
		re  *regexp2.Regexp
		err error
	)
	if dir == navigation.Forward {
		if re, err = b.compiler.compile(pattern, plain); err != nil {
			return navigation.MatchRange{}, false, err
		}
	}

	pos := b.pos
	var last navigation.MatchRange
	for i := 0; i < n; i++ {
		var (
			rng   navigation.MatchRange
			found bool
		)
		if dir == navigation.Forward {
			rng, found, err = b.nextFrom(re, pos)
		} else {
			rng, found, err = b.prevBefore(pattern, pos)
		}
		if err != nil || !found {
			return navigation.MatchRange{}, false, err
		}
		last = rng
		if dir == navigation.Forward {
			pos = rng.End
		} else {
			pos = rng.Start
		}
	}

	b.pos = pos
	return last, true, nil
}

// nextFrom finds the first non-empty match starting at or after pos.
func (b *Buffer) nextFrom(re *regexp2.Regexp, pos int) (navigation.MatchRange, bool, error) {
	m, err := re.FindRunesMatchStartingAt(b.runes, pos)
	for err == nil && m != nil && m.Length == 0 {
		m, err = re.FindNextMatch(m)
	}
	if err != nil || m == nil {
		return navigation.MatchRange{}, false, err
	}
	return navigation.MatchRange{Start: m.Index, End: m.Index + m.Length}, true, nil
}

// prevBefore finds the non-empty match with the greatest start before pos
// that does not extend past pos.
func (b *Buffer) prevBefore(pattern string, pos int) (navigation.MatchRange, bool, error) {
	re, err := b.compiler.compileTail(pattern, startWithin, len(b.runes)-pos)
	if err != nil {
		return navigation.MatchRange{}, false, err
	}
	for start := pos - 1; start >= 0; start-- {
		m, err := re.FindRunesMatchStartingAt(b.runes, start)
		if err != nil {
			return navigation.MatchRange{}, false, err
		}
		if m != nil && m.Index == start && m.Length > 0 {
			return navigation.MatchRange{Start: start, End: start + m.Length}, true, nil
		}
	}
	return navigation.MatchRange{}, false, nil
}

// CountMatches implements navigation.TextCursor. Matches must lie within
// [from, to] but may look at the text on either side.
func (b *Buffer) CountMatches(pattern string, from, to int) (int, error) {
	from, to = b.clamp(from), b.clamp(to)
	if from >= to {
		return 0, nil
	}
	re, err := b.compiler.compileTail(pattern, endWithin, len(b.runes)-to)
	if err != nil {
		return 0, err
	}

	count := 0
	m, err := re.FindRunesMatchStartingAt(b.runes, from)
	for err == nil && m != nil && m.Index < to {
		if m.Length > 0 {
			count++
		}
		m, err = re.FindNextMatch(m)
	}
	if err != nil {
		return 0, err
	}
	return count, nil
}
