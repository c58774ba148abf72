package navigation

// Direction of a hop.
type Direction int

const (
	Forward Direction = iota
	Backward
)

// Reverse returns the opposite direction.
func (d Direction) Reverse() Direction {
	if d == Forward {
		return Backward
	}
	return Forward
}

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// MatchRange is the half-open span [Start, End) of a match.
type MatchRange struct {
	Start int
	End   int
}

// TextCursor is the text substrate the engine navigates. pattern is always a
// regular expression in the host's dialect.
type TextCursor interface {
	Position() int
	SetPosition(pos int)
	Len() int

	// MatchAt reports whether pattern matches starting exactly at the cursor.
	MatchAt(pattern string) (bool, error)

	// MatchEndingAt reports whether some match of pattern ends exactly at
	// the cursor and starts no earlier than limit.
	MatchEndingAt(pattern string, limit int) (bool, error)

	// AdvanceToNth searches n successive times in dir. On success the cursor
	// rests at the natural boundary of the last match (its end going
	// forward, its start going backward) and that match is returned. When
	// fewer than n matches exist the cursor is left untouched.
	AdvanceToNth(pattern string, dir Direction, n int) (MatchRange, bool, error)

	// CountMatches counts non-overlapping, non-empty matches lying entirely
	// within [from, to).
	CountMatches(pattern string, from, to int) (int, error)
}
