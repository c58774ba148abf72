package instance

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/hopper/internal/domain/instance"
	"github.com/zjrosen/hopper/internal/log"
	"github.com/zjrosen/hopper/internal/pubsub"
	"github.com/zjrosen/hopper/internal/tracing"
)

// ErrPersistenceFailed wraps a Store error after the mutation was rolled back.
var ErrPersistenceFailed = errors.New("persisting registry failed")

// Store loads and saves the ordered instance list.
type Store interface {
	Load(ctx context.Context) ([]*instance.Instance, error)
	Save(ctx context.Context, instances []*instance.Instance) error
}

// PatternValidator checks a pattern beyond the domain's structural rules,
// typically by compiling it.
type PatternValidator func(instance.Pattern) error

// Change is the payload of registry events. OldName is set on renames.
type Change struct {
	Name    string
	OldName string
}

// Service is the registry with persistence. It implements instance.Provider.
type Service struct {
	mu       sync.RWMutex
	registry *instance.Registry
	store    Store
	validate PatternValidator
	broker   *pubsub.Broker[Change]
	tracer   trace.Tracer
}

var _ instance.Provider = (*Service)(nil)

// Option configures a Service.
type Option func(*Service)

// WithPatternValidator runs v on every pattern before Add and Edit.
func WithPatternValidator(v PatternValidator) Option {
	return func(s *Service) {
		s.validate = v
	}
}

// WithTracer records a span per mutation.
func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// NewService loads store into a fresh registry.
func NewService(ctx context.Context, store Store, opts ...Option) (*Service, error) {
	s := &Service{
		store:  store,
		broker: pubsub.NewBroker[Change](),
		tracer: tracing.Noop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	reg, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	s.registry = reg
	log.Info(log.CatRegistry, "Registry loaded", "instances", reg.Len())
	return s, nil
}

func (s *Service) load(ctx context.Context) (*instance.Registry, error) {
	list, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load registry: %w", err)
	}
	reg, err := instance.NewRegistryFrom(list)
	if err != nil {
		return nil, fmt.Errorf("load registry: %w", err)
	}
	return reg, nil
}

var _ pubsub.Subscriber[Change] = (*Service)(nil)

// Subscribe streams registry changes until ctx is cancelled.
func (s *Service) Subscribe(ctx context.Context) <-chan pubsub.Event[Change] {
	return s.broker.Subscribe(ctx)
}

// Close stops event delivery.
func (s *Service) Close() {
	s.broker.Close()
}

// Add creates an instance and persists the registry.
func (s *Service) Add(ctx context.Context, name string, pattern instance.Pattern, placement instance.Placement) (err error) {
	ctx, span := s.tracer.Start(ctx, tracing.SpanRegistryAdd, trace.WithAttributes(
		attribute.String(tracing.AttrInstanceName, name),
	))
	defer func() {
		tracing.RecordError(span, err)
		span.End()
	}()

	inst, err := s.build(name, pattern, placement)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.mutate(ctx, func(r *instance.Registry) error { return r.Add(inst) }); err != nil {
		return fmt.Errorf("add %q: %w", name, err)
	}
	log.Info(log.CatRegistry, "Instance added", "name", name, "pattern", pattern, "placement", placement)
	s.broker.Publish(pubsub.CreatedEvent, Change{Name: name})
	return nil
}

// Edit replaces oldName with a new definition, possibly renamed. The
// instance keeps its position in the listing.
func (s *Service) Edit(ctx context.Context, oldName, newName string, pattern instance.Pattern, placement instance.Placement) (err error) {
	ctx, span := s.tracer.Start(ctx, tracing.SpanRegistryEdit, trace.WithAttributes(
		attribute.String(tracing.AttrInstanceOldName, oldName),
		attribute.String(tracing.AttrInstanceName, newName),
	))
	defer func() {
		tracing.RecordError(span, err)
		span.End()
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	// A missing target is reported before any problem with the new values.
	if !s.registry.Has(oldName) {
		return fmt.Errorf("edit %q: %w", oldName, instance.ErrNotFound)
	}
	inst, err := s.build(newName, pattern, placement)
	if err != nil {
		return err
	}

	if err := s.mutate(ctx, func(r *instance.Registry) error { return r.Edit(oldName, inst) }); err != nil {
		return fmt.Errorf("edit %q: %w", oldName, err)
	}
	change := Change{Name: newName}
	if newName != oldName {
		change.OldName = oldName
	}
	log.Info(log.CatRegistry, "Instance edited", "name", newName, "old_name", oldName)
	s.broker.Publish(pubsub.UpdatedEvent, change)
	return nil
}

// Delete removes name and persists the registry.
func (s *Service) Delete(ctx context.Context, name string) (err error) {
	ctx, span := s.tracer.Start(ctx, tracing.SpanRegistryDelete, trace.WithAttributes(
		attribute.String(tracing.AttrInstanceName, name),
	))
	defer func() {
		tracing.RecordError(span, err)
		span.End()
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.mutate(ctx, func(r *instance.Registry) error { return r.Delete(name) }); err != nil {
		return fmt.Errorf("delete %q: %w", name, err)
	}
	log.Info(log.CatRegistry, "Instance deleted", "name", name)
	s.broker.Publish(pubsub.DeletedEvent, Change{Name: name})
	return nil
}

// Reload replaces the registry with the store's contents. On failure the
// current registry is kept.
func (s *Service) Reload(ctx context.Context) (err error) {
	ctx, span := s.tracer.Start(ctx, tracing.SpanRegistryReload)
	defer func() {
		tracing.RecordError(span, err)
		span.End()
	}()

	reg, err := s.load(ctx)
	if err != nil {
		log.ErrorErr(log.CatRegistry, "Reload failed, keeping current registry", err)
		return err
	}

	s.mu.Lock()
	s.registry = reg
	s.mu.Unlock()

	log.Info(log.CatRegistry, "Registry reloaded", "instances", reg.Len())
	s.broker.Publish(pubsub.ReloadedEvent, Change{})
	return nil
}

func (s *Service) build(name string, pattern instance.Pattern, placement instance.Placement) (*instance.Instance, error) {
	inst, err := instance.NewBuilder(name).Pattern(pattern).Placement(placement).Build()
	if err != nil {
		return nil, err
	}
	if s.validate != nil {
		if err := s.validate(pattern); err != nil {
			return nil, fmt.Errorf("instance %q: %w: %w", name, instance.ErrInvalidPattern, err)
		}
	}
	return inst, nil
}

// mutate applies fn and saves. Callers hold s.mu.
func (s *Service) mutate(ctx context.Context, fn func(*instance.Registry) error) error {
	snapshot := s.registry.Snapshot()
	if err := fn(s.registry); err != nil {
		return err
	}
	if err := s.store.Save(ctx, s.registry.List()); err != nil {
		s.registry.Restore(snapshot)
		trace.SpanFromContext(ctx).AddEvent(tracing.EventRolledBack)
		log.ErrorErr(log.CatStore, "Save failed, registry rolled back", err)
		return fmt.Errorf("%w: %w", ErrPersistenceFailed, err)
	}
	return nil
}

// Get returns the named instance or instance.ErrNotFound.
func (s *Service) Get(name string) (*instance.Instance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry.Get(name)
}

// Has reports whether name is registered.
func (s *Service) Has(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry.Has(name)
}

// Names returns names in insertion order.
func (s *Service) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry.Names()
}

// List returns instances in insertion order.
func (s *Service) List() []*instance.Instance {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry.List()
}
