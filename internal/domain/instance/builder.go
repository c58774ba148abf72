package instance

import (
	"errors"
	"fmt"
)

// Validation errors
var (
	ErrInvalidPattern = errors.New("invalid pattern")
	ErrEmptyName      = fmt.Errorf("%w: instance name cannot be empty", ErrInvalidPattern)
	ErrMissingPattern = fmt.Errorf("%w: instance must have a pattern", ErrInvalidPattern)
)

// Builder provides a fluent API for creating instances
type Builder struct {
	name       string
	pattern    Pattern
	hasPattern bool
	placement  Placement
}

// NewBuilder creates a new instance builder
func NewBuilder(name string) *Builder {
	return &Builder{name: name}
}

// Regex sets a regular expression pattern
func (b *Builder) Regex(expr string) *Builder {
	return b.Pattern(Regex(expr))
}

// Literals sets a literal-set pattern
func (b *Builder) Literals(strs ...string) *Builder {
	return b.Pattern(Literals(strs...))
}

// Pattern sets the pattern directly
func (b *Builder) Pattern(p Pattern) *Builder {
	b.pattern = p
	b.hasPattern = true
	return b
}

// Placement sets the placement rule (default natural)
func (b *Builder) Placement(p Placement) *Builder {
	b.placement = p
	return b
}

// Build creates the instance, validating name and pattern
func (b *Builder) Build() (*Instance, error) {
	if b.name == "" {
		return nil, ErrEmptyName
	}
	if !b.hasPattern {
		return nil, ErrMissingPattern
	}
	if err := b.pattern.Validate(); err != nil {
		return nil, fmt.Errorf("instance %q: %w", b.name, err)
	}
	return newInstance(b.name, b.pattern, b.placement), nil
}
