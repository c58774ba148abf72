package presentation

import (
	"github.com/zjrosen/hopper/internal/domain/instance"
	"github.com/zjrosen/hopper/internal/navigation"
)

// InstanceDTO represents an instance definition for presentation
type InstanceDTO struct {
	Name      string   `json:"name"`
	Kind      string   `json:"kind"`
	Regex     string   `json:"regex,omitempty"`
	Literals  []string `json:"literals,omitempty"`
	Placement string   `json:"placement"`
	Selected  bool     `json:"selected,omitempty"`
}

// FromDomainInstance converts a domain instance to a DTO.
func FromDomainInstance(inst *instance.Instance) InstanceDTO {
	p := inst.Pattern()
	dto := InstanceDTO{
		Name:      inst.Name(),
		Kind:      p.Kind().String(),
		Placement: inst.Placement().String(),
	}
	if p.Kind() == instance.KindRegex {
		dto.Regex = p.Expr()
	} else {
		dto.Literals = p.Strings()
	}
	return dto
}

// FromDomainInstances converts a registry listing, flagging the selected name.
func FromDomainInstances(list []*instance.Instance, selected string) []InstanceDTO {
	out := make([]InstanceDTO, 0, len(list))
	for _, inst := range list {
		dto := FromDomainInstance(inst)
		dto.Selected = selected != "" && inst.Name() == selected
		out = append(out, dto)
	}
	return out
}

// ReportDTO is the machine-readable form of navigation.Report
type ReportDTO struct {
	Kind      string `json:"kind"`
	Index     int    `json:"index,omitempty"`
	Total     int    `json:"total"`
	Boundary  string `json:"boundary,omitempty"`
	Direction string `json:"direction"`
	Message   string `json:"message"`
}

// HopDTO represents a hop outcome with the cursor's line/column
type HopDTO struct {
	Instance string    `json:"instance"`
	Position int       `json:"position"`
	Line     int       `json:"line"`
	Column   int       `json:"column"`
	Report   ReportDTO `json:"report"`
}

// FromHopResult converts an engine result. line and col are 1-based.
func FromHopResult(res navigation.HopResult, line, col int) HopDTO {
	r := res.Report
	dto := HopDTO{
		Instance: res.Instance,
		Position: res.Position,
		Line:     line,
		Column:   col,
		Report: ReportDTO{
			Kind:      r.Kind.String(),
			Total:     r.Total,
			Direction: r.Direction.String(),
			Message:   r.Message(),
		},
	}
	switch r.Kind {
	case navigation.Found:
		dto.Report.Index = r.Index
	case navigation.AtBoundary:
		dto.Report.Boundary = r.Which.String()
	}
	return dto
}
