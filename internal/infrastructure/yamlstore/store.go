// Package yamlstore persists the instance registry in the instances section
// of a YAML file, normally the hopper config file.
package yamlstore

import (
	"context"
	"fmt"

	"github.com/zjrosen/hopper/internal/config"
	"github.com/zjrosen/hopper/internal/domain/instance"
	"github.com/zjrosen/hopper/internal/log"
)

// Store implements appinstance.Store over a YAML file.
type Store struct {
	path string
}

// New returns a store for path. The file need not exist yet.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

// Load reads and converts the instances section.
func (s *Store) Load(_ context.Context) ([]*instance.Instance, error) {
	entries, err := config.LoadInstances(s.path)
	if err != nil {
		return nil, err
	}
	if err := config.ValidateInstances(entries); err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}

	list := make([]*instance.Instance, 0, len(entries))
	for _, e := range entries {
		inst, err := FromConfig(e)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.path, err)
		}
		list = append(list, inst)
	}
	log.Debug(log.CatStore, "Loaded instances from yaml", "path", s.path, "count", len(list))
	return list, nil
}

// Save rewrites the instances section, leaving the rest of the file intact.
func (s *Store) Save(_ context.Context, list []*instance.Instance) error {
	entries := make([]config.InstanceConfig, len(list))
	for i, inst := range list {
		entries[i] = ToConfig(inst)
	}
	if err := config.SaveInstances(s.path, entries); err != nil {
		return err
	}
	log.Debug(log.CatStore, "Saved instances to yaml", "path", s.path, "count", len(list))
	return nil
}

// FromConfig builds a domain instance from its persisted form.
func FromConfig(c config.InstanceConfig) (*instance.Instance, error) {
	placement, err := instance.ParsePlacement(c.Placement)
	if err != nil {
		return nil, fmt.Errorf("instance %q: %w", c.Name, err)
	}
	b := instance.NewBuilder(c.Name).Placement(placement)
	if c.Regex != "" {
		b.Regex(c.Regex)
	} else {
		b.Literals(c.Literals...)
	}
	return b.Build()
}

// ToConfig converts a domain instance to its persisted form. Natural
// placement is written as the empty default.
func ToConfig(inst *instance.Instance) config.InstanceConfig {
	c := config.InstanceConfig{Name: inst.Name()}
	if p := inst.Placement(); p != instance.PlacementNatural {
		c.Placement = p.String()
	}
	if inst.Pattern().Kind() == instance.KindRegex {
		c.Regex = inst.Pattern().Expr()
	} else {
		c.Literals = inst.Pattern().Strings()
	}
	return c
}
