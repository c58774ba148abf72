package instance

import (
	"errors"
	"slices"
)

// Registry errors
var (
	ErrNotFound      = errors.New("instance not found")
	ErrDuplicateName = errors.New("instance name already exists")
	ErrNilInstance   = errors.New("instance cannot be nil")
)

// Registry holds instances in insertion order.
type Registry struct {
	instances []*Instance
}

// NewRegistry creates a new empty registry
func NewRegistry() *Registry {
	return &Registry{
		instances: make([]*Instance, 0),
	}
}

// NewRegistryFrom builds a registry from an ordered list, rejecting nil
// entries and duplicate names.
func NewRegistryFrom(list []*Instance) (*Registry, error) {
	r := NewRegistry()
	for _, inst := range list {
		if err := r.Add(inst); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) indexOf(name string) int {
	for i, inst := range r.instances {
		if inst.Name() == name {
			return i
		}
	}
	return -1
}

// Add appends an instance. Names are compared by exact string equality.
func (r *Registry) Add(inst *Instance) error {
	if inst == nil {
		return ErrNilInstance
	}
	if r.indexOf(inst.Name()) >= 0 {
		return ErrDuplicateName
	}
	r.instances = append(r.instances, inst)
	return nil
}

// Edit replaces the instance named oldName with inst, keeping its position.
// inst may carry a different name as long as that name is free.
func (r *Registry) Edit(oldName string, inst *Instance) error {
	if inst == nil {
		return ErrNilInstance
	}
	idx := r.indexOf(oldName)
	if idx < 0 {
		return ErrNotFound
	}
	if inst.Name() != oldName && r.indexOf(inst.Name()) >= 0 {
		return ErrDuplicateName
	}
	r.instances[idx] = inst
	return nil
}

// Delete removes the named instance, preserving the order of the rest.
func (r *Registry) Delete(name string) error {
	idx := r.indexOf(name)
	if idx < 0 {
		return ErrNotFound
	}
	r.instances = slices.Delete(r.instances, idx, idx+1)
	return nil
}

// Get returns the named instance
func (r *Registry) Get(name string) (*Instance, error) {
	idx := r.indexOf(name)
	if idx < 0 {
		return nil, ErrNotFound
	}
	return r.instances[idx], nil
}

// Has reports whether name is registered
func (r *Registry) Has(name string) bool {
	return r.indexOf(name) >= 0
}

// List returns all instances in insertion order. The slice is a copy.
func (r *Registry) List() []*Instance {
	return slices.Clone(r.instances)
}

// Names returns all instance names in insertion order
func (r *Registry) Names() []string {
	names := make([]string, len(r.instances))
	for i, inst := range r.instances {
		names[i] = inst.Name()
	}
	return names
}

// Len returns the number of instances
func (r *Registry) Len() int {
	return len(r.instances)
}

// Snapshot captures the current contents for a later Restore.
// Instances are immutable, so sharing the pointers is safe.
func (r *Registry) Snapshot() []*Instance {
	return slices.Clone(r.instances)
}

// Restore replaces the contents with a snapshot taken earlier.
func (r *Registry) Restore(snapshot []*Instance) {
	r.instances = slices.Clone(snapshot)
}
