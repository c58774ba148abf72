package navigation

import (
	"cmp"
	"slices"
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/zjrosen/hopper/internal/domain/instance"
)

// SearchPattern turns an instance pattern into one regular expression.
// Literal sets become an alternation of escaped literals, longest first, so
// that of two overlapping literals the longer one wins at a given position.
func SearchPattern(p instance.Pattern) string {
	if p.Kind() == instance.KindRegex {
		return p.Expr()
	}

	lits := p.Strings()
	slices.SortStableFunc(lits, func(a, b string) int {
		return cmp.Compare(len(b), len(a))
	})
	for i, l := range lits {
		lits[i] = regexp2.Escape(l)
	}
	return strings.Join(lits, "|")
}
