package sqlite

import (
	"encoding/json"
	"fmt"

	"github.com/zjrosen/hopper/internal/domain/instance"
)

// InstanceModel is a row of the instances table.
type InstanceModel struct {
	ID        int64
	Position  int
	Name      string
	Kind      string
	Regex     *string // nullable, set for regex patterns
	Literals  *string // nullable, JSON encoded
	Adjust    bool
	AtEnd     bool
	CreatedAt int64 // Unix timestamp
	UpdatedAt int64 // Unix timestamp
}

func toInstanceModel(inst *instance.Instance, position int, now int64) (*InstanceModel, error) {
	p := inst.Pattern()
	m := &InstanceModel{
		Position:  position,
		Name:      inst.Name(),
		Kind:      p.Kind().String(),
		Adjust:    inst.Placement().Adjust,
		AtEnd:     inst.Placement().AtEnd,
		CreatedAt: now,
		UpdatedAt: now,
	}

	switch p.Kind() {
	case instance.KindRegex:
		expr := p.Expr()
		m.Regex = &expr
	case instance.KindLiterals:
		data, err := json.Marshal(p.Strings())
		if err != nil {
			return nil, fmt.Errorf("encoding literals for %q: %w", inst.Name(), err)
		}
		literals := string(data)
		m.Literals = &literals
	}
	return m, nil
}

func (m *InstanceModel) toDomain() (*instance.Instance, error) {
	b := instance.NewBuilder(m.Name).
		Placement(instance.Placement{Adjust: m.Adjust, AtEnd: m.AtEnd})

	switch m.Kind {
	case instance.KindRegex.String():
		if m.Regex == nil {
			return nil, fmt.Errorf("instance %q: regex column is null", m.Name)
		}
		b.Regex(*m.Regex)
	case instance.KindLiterals.String():
		if m.Literals == nil {
			return nil, fmt.Errorf("instance %q: literals column is null", m.Name)
		}
		var strs []string
		if err := json.Unmarshal([]byte(*m.Literals), &strs); err != nil {
			return nil, fmt.Errorf("instance %q: decoding literals: %w", m.Name, err)
		}
		b.Literals(strs...)
	default:
		return nil, fmt.Errorf("instance %q: unknown pattern kind %q", m.Name, m.Kind)
	}

	return b.Build()
}
