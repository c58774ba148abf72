// Package instance implements the domain layer for named search instances.
//
// An Instance pairs a unique name with a Pattern (a regular expression or an
// ordered set of literal strings) and a Placement rule describing where the
// cursor rests after a match. The package is pure Go with no knowledge of
// persistence, prompting or the text substrate.
//
// # Core Types
//
// Pattern is a tagged value built with Regex or Literals. Literal sets drop
// empty strings and duplicates while keeping first-seen order.
//
// Placement is the {Adjust, AtEnd} pair. PlacementNatural leaves the cursor
// where the search naturally stops (match end going forward, match start going
// backward); PlacementStart and PlacementEnd pin it to one side regardless of
// direction.
//
// Instance is immutable once built. Use Builder for construction so name and
// pattern validation always run.
//
// # Registry Collection
//
// Registry holds instances in insertion order and enforces exact,
// case-sensitive name uniqueness. Edit replaces an entry in place, so a
// rename never reorders the listing. Provider is the read-only view consumed
// by selection and navigation.
package instance
