package textbuf

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/hopper/internal/navigation"
)

const sample = "a foo b bar c foo d"

func TestBuffer_Basics(t *testing.T) {
	b := New(sample)

	require.Equal(t, 19, b.Len())
	require.Equal(t, 0, b.Position())
	require.Equal(t, sample, b.Text())

	b.SetPosition(-5)
	require.Equal(t, 0, b.Position())
	b.SetPosition(500)
	require.Equal(t, 19, b.Position())
}

func TestBuffer_RuneOffsets(t *testing.T) {
	b := New("héllo wörld wörld")

	require.Equal(t, 17, b.Len())
	rng, ok, err := b.AdvanceToNth("wörld", navigation.Forward, 1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, navigation.MatchRange{Start: 6, End: 11}, rng)
	require.Equal(t, 11, b.Position())
}

func TestBuffer_MatchAt(t *testing.T) {
	b := New(sample)

	b.SetPosition(2)
	ok, err := b.MatchAt("foo")
	require.NoError(t, err)
	require.True(t, ok)

	b.SetPosition(3)
	ok, err = b.MatchAt("foo")
	require.NoError(t, err)
	require.False(t, ok, "a later match does not count")
}

func TestBuffer_MatchAt_SeesLookbehind(t *testing.T) {
	b := New("xfoo foo")
	b.SetPosition(5)

	ok, err := b.MatchAt(`(?<= )foo`)
	require.NoError(t, err)
	require.True(t, ok)

	b.SetPosition(1)
	ok, err = b.MatchAt(`(?<= )foo`)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestBuffer_MatchEndingAt(t *testing.T) {
	b := New(sample)
	b.SetPosition(5)

	ok, err := b.MatchEndingAt("foo", 0)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = b.MatchEndingAt("foo", 3)
	require.NoError(t, err)
	require.False(t, ok, "match starts before the limit")

	b.SetPosition(4)
	ok, err = b.MatchEndingAt("foo", 0)
	require.NoError(t, err)
	require.False(t, ok)

	b.SetPosition(0)
	ok, err = b.MatchEndingAt("foo", 0)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestBuffer_AdvanceForward(t *testing.T) {
	b := New(sample)

	rng, ok, err := b.AdvanceToNth("foo|bar", navigation.Forward, 2)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, navigation.MatchRange{Start: 8, End: 11}, rng)
	require.Equal(t, 11, b.Position())
}

func TestBuffer_AdvanceForward_AdjacentMatches(t *testing.T) {
	b := New("foofoo")

	_, ok, err := b.AdvanceToNth("foo", navigation.Forward, 2)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 6, b.Position())
}

func TestBuffer_AdvanceBackward(t *testing.T) {
	b := New(sample)
	b.SetPosition(b.Len())

	rng, ok, err := b.AdvanceToNth("foo", navigation.Backward, 1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, navigation.MatchRange{Start: 14, End: 17}, rng)
	require.Equal(t, 14, b.Position())

	rng, ok, err = b.AdvanceToNth("foo", navigation.Backward, 1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, navigation.MatchRange{Start: 2, End: 5}, rng)
}

func TestBuffer_AdvanceBackward_MatchMayNotCrossCursor(t *testing.T) {
	b := New("foo")
	b.SetPosition(2)

	_, ok, err := b.AdvanceToNth("foo", navigation.Backward, 1)
	require.NoError(t, err)
	require.False(t, ok)

	_, ok, err = b.AdvanceToNth("fo", navigation.Backward, 1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 0, b.Position())
}

func TestBuffer_AdvanceFailureLeavesCursor(t *testing.T) {
	b := New(sample)
	b.SetPosition(6)

	_, ok, err := b.AdvanceToNth("foo", navigation.Forward, 2)
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, 6, b.Position())

	_, ok, err = b.AdvanceToNth("foo", navigation.Backward, 2)
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, 6, b.Position())
}

func TestBuffer_EmptyMatchesSkipped(t *testing.T) {
	b := New("ab ab")

	rng, ok, err := b.AdvanceToNth("x*", navigation.Forward, 1)
	require.NoError(t, err)
	require.False(t, ok, "only empty matches: %v", rng)

	n, err := b.CountMatches("b?", 0, b.Len())
	require.NoError(t, err)
	require.Equal(t, 2, n)
}

func TestBuffer_CountMatches(t *testing.T) {
	b := New(sample)

	tests := []struct {
		from, to int
		want     int
	}{
		{0, 19, 2},
		{0, 5, 1},
		{0, 4, 0},
		{3, 19, 1},
		{5, 14, 0},
		{10, 3, 0},
		{-3, 99, 2},
	}
	for _, tt := range tests {
		got, err := b.CountMatches("foo", tt.from, tt.to)
		require.NoError(t, err)
		require.Equal(t, tt.want, got, "[%d,%d)", tt.from, tt.to)
	}
}

func TestBuffer_CountMatches_NonOverlapping(t *testing.T) {
	b := New("aaaa")

	n, err := b.CountMatches("aa", 0, b.Len())
	require.NoError(t, err)
	require.Equal(t, 2, n)
}

func TestBuffer_CountMatches_BoundSeesContext(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		pattern  string
		from, to int
		want     int
	}{
		{name: "word boundary after bound", text: "foobar foo", pattern: `foo\b`, from: 0, to: 3, want: 0},
		{name: "word boundary whole text", text: "foobar foo", pattern: `foo\b`, from: 0, to: 10, want: 1},
		{name: "end anchor inside text", text: "foo foo", pattern: `foo$`, from: 0, to: 3, want: 0},
		{name: "end anchor at end", text: "foo foo", pattern: `foo$`, from: 0, to: 7, want: 1},
		{name: "lookahead past bound", text: "foobar", pattern: `foo(?=bar)`, from: 0, to: 3, want: 1},
		{name: "lookbehind before from", text: "xfoo foo", pattern: `(?<=x)foo`, from: 1, to: 8, want: 1},
		{name: "match may not cross bound", text: "foobar", pattern: `foob`, from: 0, to: 3, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := New(tt.text).CountMatches(tt.pattern, tt.from, tt.to)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestBuffer_MatchEndingAt_SeesContext(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		pattern string
		pos     int
		want    bool
	}{
		{name: "word boundary fails inside word", text: "foobar", pattern: `\bfoo\b`, pos: 3, want: false},
		{name: "word boundary before space", text: "foo bar", pattern: `\bfoo\b`, pos: 3, want: true},
		{name: "lookahead past cursor", text: "foobar", pattern: `foo(?=bar)`, pos: 3, want: true},
		{name: "end anchor before more text", text: "foo foo", pattern: `foo$`, pos: 3, want: false},
		{name: "shorter alternative ends at cursor", text: "fooo", pattern: `fo+`, pos: 3, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New(tt.text)
			b.SetPosition(tt.pos)

			got, err := b.MatchEndingAt(tt.pattern, 0)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestBuffer_AdvanceBackward_SeesContext(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		pattern string
		from    int
		want    navigation.MatchRange
		found   bool
	}{
		{name: "foo inside foobar is not a word", text: "foobar", pattern: `\bfoo\b`, from: 3},
		{name: "skips to earlier word", text: "foo foobar", pattern: `\bfoo\b`, from: 7, want: navigation.MatchRange{Start: 0, End: 3}, found: true},
		{name: "lookahead past cursor", text: "foobar", pattern: `foo(?=bar)`, from: 3, want: navigation.MatchRange{Start: 0, End: 3}, found: true},
		{name: "greedy match backtracks to fit", text: "fooo", pattern: `o+`, from: 3, want: navigation.MatchRange{Start: 2, End: 3}, found: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New(tt.text)
			b.SetPosition(tt.from)

			rng, ok, err := b.AdvanceToNth(tt.pattern, navigation.Backward, 1)
			require.NoError(t, err)
			require.Equal(t, tt.found, ok)
			if !tt.found {
				require.Equal(t, tt.from, b.Position())
				return
			}
			require.Equal(t, tt.want, rng)
			require.Equal(t, tt.want.Start, b.Position())
		})
	}
}

func TestBuffer_InvalidPattern(t *testing.T) {
	b := New(sample)

	_, err := b.MatchAt("(")
	require.Error(t, err)
	_, _, err = b.AdvanceToNth("(", navigation.Forward, 1)
	require.Error(t, err)
	_, err = b.CountMatches("[", 0, 3)
	require.Error(t, err)
	b.SetPosition(4)
	_, err = b.MatchEndingAt("(", 0)
	require.Error(t, err)
}

func TestBuffer_LineCol(t *testing.T) {
	b := New("one\ntwo\nthree")

	line, col := b.LineCol(0)
	require.Equal(t, []int{1, 1}, []int{line, col})
	line, col = b.LineCol(5)
	require.Equal(t, []int{2, 2}, []int{line, col})
	line, col = b.LineCol(b.Len())
	require.Equal(t, []int{3, 6}, []int{line, col})
}

func TestBuffer_LineAt(t *testing.T) {
	b := New("one\r\ntwo\nthree")

	text, off := b.LineAt(6)
	require.Equal(t, "two", text)
	require.Equal(t, 1, off)

	text, off = b.LineAt(1)
	require.Equal(t, "one", text)
	require.Equal(t, 1, off)
}
