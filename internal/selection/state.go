// Package selection tracks which instance is active for navigation.
package selection

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/zjrosen/hopper/internal/domain/instance"
	"github.com/zjrosen/hopper/internal/log"
)

var (
	// ErrCancelled is returned by a Chooser when the user aborts.
	ErrCancelled = errors.New("selection cancelled")
	// ErrNoInstancesDefined is returned when there is nothing to choose from.
	ErrNoInstancesDefined = errors.New("no instances defined")
)

// Chooser asks the user to pick one name from candidates.
type Chooser interface {
	Pick(ctx context.Context, candidates []string) (string, error)
}

// ChooserFunc adapts a function to Chooser.
type ChooserFunc func(ctx context.Context, candidates []string) (string, error)

// Pick calls f.
func (f ChooserFunc) Pick(ctx context.Context, candidates []string) (string, error) {
	return f(ctx, candidates)
}

// State holds the name of the active instance. The name is validated lazily:
// it may refer to an instance that has since been deleted or renamed, in
// which case Resolve falls back to the chooser.
type State struct {
	mu   sync.Mutex
	name string
	set  bool
}

// NewState returns an empty selection.
func NewState() *State {
	return &State{}
}

// Name returns the held name, which may be stale.
func (s *State) Name() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name, s.set
}

// Clear forgets the held name.
func (s *State) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name, s.set = "", false
}

// Set selects name, which must be present in provider.
func (s *State) Set(name string, provider instance.Provider) error {
	if !provider.Has(name) {
		return fmt.Errorf("select %q: %w", name, instance.ErrNotFound)
	}
	s.mu.Lock()
	s.name, s.set = name, true
	s.mu.Unlock()
	log.Debug(log.CatSelect, "Selected instance", "name", name)
	return nil
}

// Resolve returns the active instance name. When no valid name is held the
// chooser is asked; on any failure the held name is left as it was.
func (s *State) Resolve(ctx context.Context, provider instance.Provider, chooser Chooser) (string, error) {
	name, ok := s.Name()
	if ok && provider.Has(name) {
		return name, nil
	}
	if ok {
		log.Debug(log.CatSelect, "Held selection is stale", "name", name)
	}

	candidates := provider.Names()
	if len(candidates) == 0 {
		return "", ErrNoInstancesDefined
	}
	if chooser == nil {
		return "", ErrCancelled
	}

	picked, err := chooser.Pick(ctx, candidates)
	if err != nil {
		return "", err
	}
	if !slices.Contains(candidates, picked) || !provider.Has(picked) {
		return "", fmt.Errorf("chosen instance %q: %w", picked, instance.ErrNotFound)
	}

	s.mu.Lock()
	s.name, s.set = picked, true
	s.mu.Unlock()
	log.Debug(log.CatSelect, "Chooser selected instance", "name", picked)
	return picked, nil
}
