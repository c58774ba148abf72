package instance

import (
	"fmt"
	"slices"
	"strings"
)

// PatternKind distinguishes the two pattern variants.
type PatternKind int

const (
	// KindRegex is a single regular expression.
	KindRegex PatternKind = iota
	// KindLiterals is a set of literal strings matched as an alternation.
	KindLiterals
)

// String returns the name used in configuration files.
func (k PatternKind) String() string {
	switch k {
	case KindRegex:
		return "regex"
	case KindLiterals:
		return "literals"
	default:
		return "unknown"
	}
}

// Pattern is either a regular expression or an ordered set of literals.
type Pattern struct {
	kind     PatternKind
	regex    string
	literals []string
}

// Regex returns a pattern holding a single regular expression.
func Regex(expr string) Pattern {
	return Pattern{kind: KindRegex, regex: expr}
}

// Literals returns a literal-set pattern. Empty strings are dropped and
// duplicates removed, keeping the first occurrence.
func Literals(strs ...string) Pattern {
	seen := make(map[string]bool, len(strs))
	lits := make([]string, 0, len(strs))
	for _, s := range strs {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		lits = append(lits, s)
	}
	return Pattern{kind: KindLiterals, literals: lits}
}

// Kind returns the pattern variant.
func (p Pattern) Kind() PatternKind {
	return p.kind
}

// Expr returns the regular expression of a Regex pattern, "" otherwise.
func (p Pattern) Expr() string {
	if p.kind != KindRegex {
		return ""
	}
	return p.regex
}

// Strings returns a copy of the literals of a Literals pattern, nil otherwise.
func (p Pattern) Strings() []string {
	if p.kind != KindLiterals {
		return nil
	}
	return slices.Clone(p.literals)
}

// Validate reports ErrInvalidPattern for an empty regex or a literal set
// with no strings.
func (p Pattern) Validate() error {
	switch p.kind {
	case KindRegex:
		if p.regex == "" {
			return fmt.Errorf("%w: regular expression is empty", ErrInvalidPattern)
		}
	case KindLiterals:
		if len(p.literals) == 0 {
			return fmt.Errorf("%w: literal set has no non-empty strings", ErrInvalidPattern)
		}
	default:
		return fmt.Errorf("%w: unknown pattern kind %d", ErrInvalidPattern, p.kind)
	}
	return nil
}

// Equal reports whether two patterns have the same kind and content.
func (p Pattern) Equal(o Pattern) bool {
	return p.kind == o.kind && p.regex == o.regex && slices.Equal(p.literals, o.literals)
}

// String renders the pattern for listings.
func (p Pattern) String() string {
	if p.kind == KindLiterals {
		quoted := make([]string, len(p.literals))
		for i, l := range p.literals {
			quoted[i] = fmt.Sprintf("%q", l)
		}
		return "literals[" + strings.Join(quoted, ", ") + "]"
	}
	return "regex " + fmt.Sprintf("%q", p.regex)
}

// Placement controls where the cursor rests after a match.
type Placement struct {
	// Adjust false follows the natural direction convention.
	Adjust bool
	// AtEnd selects the match end when Adjust is set; ignored otherwise.
	AtEnd bool
}

var (
	// PlacementNatural leaves the cursor where the search stops: match end
	// when moving forward, match start when moving backward.
	PlacementNatural = Placement{}
	// PlacementStart always rests on the match start.
	PlacementStart = Placement{Adjust: true}
	// PlacementEnd always rests on the match end.
	PlacementEnd = Placement{Adjust: true, AtEnd: true}
)

// ParsePlacement parses "natural", "start" or "end". The empty string is
// treated as natural.
func ParsePlacement(s string) (Placement, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "natural":
		return PlacementNatural, nil
	case "start":
		return PlacementStart, nil
	case "end":
		return PlacementEnd, nil
	default:
		return Placement{}, fmt.Errorf("invalid placement %q (must be natural, start or end)", s)
	}
}

// String returns "natural", "start" or "end".
func (p Placement) String() string {
	switch {
	case !p.Adjust:
		return "natural"
	case p.AtEnd:
		return "end"
	default:
		return "start"
	}
}

// Instance is a named pattern with a placement rule.
type Instance struct {
	name      string
	pattern   Pattern
	placement Placement
}

func newInstance(name string, pattern Pattern, placement Placement) *Instance {
	if !placement.Adjust {
		placement.AtEnd = false
	}
	return &Instance{
		name:      name,
		pattern:   pattern,
		placement: placement,
	}
}

// Name returns the unique registry key.
func (i *Instance) Name() string {
	return i.name
}

// Pattern returns the search pattern.
func (i *Instance) Pattern() Pattern {
	return i.pattern
}

// Placement returns the cursor placement rule.
func (i *Instance) Placement() Placement {
	return i.placement
}

// Equal reports whether two instances hold the same definition.
func (i *Instance) Equal(o *Instance) bool {
	if i == nil || o == nil {
		return i == o
	}
	return i.name == o.name && i.pattern.Equal(o.pattern) && i.placement == o.placement
}
