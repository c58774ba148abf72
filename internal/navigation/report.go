package navigation

import "fmt"

// ReportKind classifies the outcome of a hop.
type ReportKind int

const (
	// Found means the cursor moved onto a match.
	Found ReportKind = iota
	// AtBoundary means no further match exists and the cursor already rests
	// on the first or last one.
	AtBoundary
	// NoMatch means no further match exists and the cursor is not on one.
	NoMatch
)

func (k ReportKind) String() string {
	switch k {
	case Found:
		return "found"
	case AtBoundary:
		return "at_boundary"
	default:
		return "no_match"
	}
}

// Boundary names which end of the occurrence list a cursor rests on.
type Boundary int

const (
	First Boundary = iota
	Last
)

func (b Boundary) String() string {
	if b == Last {
		return "last"
	}
	return "first"
}

// Report describes where a hop ended up.
type Report struct {
	Kind ReportKind
	// Index is the 1-based occurrence the cursor is on. Found only.
	Index int
	// Total is the number of occurrences in the whole text.
	Total int
	// Which is set for AtBoundary.
	Which Boundary
	// Direction is the direction that was searched.
	Direction Direction
}

// Message renders the report the way it is shown in the echo area.
func (r Report) Message() string {
	switch r.Kind {
	case Found:
		return fmt.Sprintf("match %d of %d", r.Index, r.Total)
	case AtBoundary:
		return fmt.Sprintf("this is the %s instance (%d/%d)", r.Which, r.Total, r.Total)
	default:
		which := "next"
		if r.Direction == Backward {
			which = "previous"
		}
		return fmt.Sprintf("no %s instance (%d total)", which, r.Total)
	}
}

// HopResult is the outcome of Engine.Hop.
type HopResult struct {
	Instance string
	Position int
	Report   Report
}
