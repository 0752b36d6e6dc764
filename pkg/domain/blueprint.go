package domain

import (
	"errors"
	"fmt"
)

// Blueprint is a named process definition: the initial tasks and the task definitions.
// It is shared read-only by every process created from it.
type Blueprint struct {
	Name         string
	InitialTasks []string
	Definitions  []TaskDefinition
}

// NewProcess creates an unstarted process governed by the blueprint.
func (b *Blueprint) NewProcess() *Process {
	return NewProcess(b.InitialTasks, b.Definitions)
}

// Restore creates a process governed by the blueprint and loads the snapshot into it.
func (b *Blueprint) Restore(s *Snapshot) *Process {
	p := b.NewProcess()
	if s != nil {
		p.Restore(*s)
	}
	return p
}

// Definition looks up the first definition with the given name.
func (b *Blueprint) Definition(name string) (TaskDefinition, bool) {
	return findDefinition(b.Definitions, name)
}

// TaskNames returns the names of all defined tasks in declaration order.
func (b *Blueprint) TaskNames() []string {
	names := make([]string, 0, len(b.Definitions))
	for _, d := range b.Definitions {
		names = append(names, d.Name)
	}
	return names
}

// Validate checks the structural requirements a blueprint must meet before use.
// It does not inspect reachability or cycles.
func (b *Blueprint) Validate() error {
	var errs []error
	for i, d := range b.Definitions {
		if d.Name == "" {
			errs = append(errs, fmt.Errorf("task definition at index %d has no name", i))
		}
	}
	for _, t := range b.InitialTasks {
		if t == "" {
			errs = append(errs, errors.New("initial tasks contain an empty name"))
			break
		}
	}
	return errors.Join(errs...)
}
