// Package policy provides declarative task policies that can be described in
// configuration files instead of code.
package policy

import (
	"slices"

	"github.com/aretw0/taskflow/pkg/domain"
)

// Branch activates Then once every task in IfCompleted has been completed.
type Branch struct {
	IfCompleted []string `json:"if_completed,omitempty" yaml:"if_completed,omitempty"`
	Then        []string `json:"then" yaml:"then"`
}

// Rules is a data-only domain.TaskPolicy.
//
// A task governed by Rules may complete when every task in Requires has been
// completed and no task in WaitFor is still active. On completion it activates
// Next followed by the Then list of every matching Branch, in declaration order.
type Rules struct {
	Requires []string `json:"requires,omitempty" yaml:"requires,omitempty"`
	WaitFor  []string `json:"wait_for,omitempty" yaml:"wait_for,omitempty"`
	Next     []string `json:"next,omitempty" yaml:"next,omitempty"`
	Branches []Branch `json:"branches,omitempty" yaml:"branches,omitempty"`
}

var _ domain.TaskPolicy = Rules{}

// CanComplete implements domain.TaskPolicy.
func (r Rules) CanComplete(p *domain.Process) (bool, error) {
	for _, t := range r.Requires {
		if !p.IsCompleted(t) {
			return false, nil
		}
	}
	for _, t := range r.WaitFor {
		if p.IsActive(t) {
			return false, nil
		}
	}
	return true, nil
}

// NextTasks implements domain.TaskPolicy.
func (r Rules) NextTasks(p *domain.Process) ([]string, error) {
	next := slices.Clone(r.Next)
	for _, b := range r.Branches {
		if allCompleted(p, b.IfCompleted) {
			next = append(next, b.Then...)
		}
	}
	return next, nil
}

// Targets lists every task name the rules may ever activate, without duplicates.
func (r Rules) Targets() []string {
	var out []string
	add := func(names []string) {
		for _, n := range names {
			if !slices.Contains(out, n) {
				out = append(out, n)
			}
		}
	}
	add(r.Next)
	for _, b := range r.Branches {
		add(b.Then)
	}
	return out
}

// IsZero reports whether the rules neither constrain nor activate anything.
func (r Rules) IsZero() bool {
	return len(r.Requires) == 0 && len(r.WaitFor) == 0 && len(r.Next) == 0 && len(r.Branches) == 0
}

func allCompleted(p *domain.Process, tasks []string) bool {
	for _, t := range tasks {
		if !p.IsCompleted(t) {
			return false
		}
	}
	return true
}

// Targeter is implemented by policies that can enumerate their follow-on tasks statically.
type Targeter interface {
	Targets() []string
}

// TargetsOf returns the statically known follow-ons of a definition, if its policy exposes them.
func TargetsOf(def domain.TaskDefinition) ([]string, bool) {
	t, ok := def.Policy.(Targeter)
	if !ok {
		return nil, false
	}
	return t.Targets(), true
}
