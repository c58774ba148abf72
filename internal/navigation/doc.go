// Package navigation moves a cursor to the next or previous occurrence of the
// selected instance's pattern and reports where it landed.
//
// The engine does no matching itself. It drives a TextCursor supplied by the
// host, which owns the text, the cursor position and the regex dialect.
// Positions are whatever unit the host uses; textbuf.Buffer uses rune
// offsets.
//
// A hop runs in four steps: resolve the active instance through the selection
// state (asking the chooser when nothing valid is selected), turn its pattern
// into a single search expression, bump the count when the cursor already sits
// on a match whose placement would otherwise find it again, then advance and
// classify the outcome as Found, AtBoundary or NoMatch.
package navigation
