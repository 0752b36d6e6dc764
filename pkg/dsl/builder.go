package dsl

import (
	"errors"
	"fmt"

	"github.com/aretw0/taskflow/pkg/domain"
)

// Builder manages the process definition construction.
type Builder struct {
	name    string
	initial []string
	order   []string
	tasks   map[string]*TaskBuilder
}

// New creates a new process builder.
func New(name string) *Builder {
	return &Builder{
		name:  name,
		tasks: make(map[string]*TaskBuilder),
	}
}

// Initial appends tasks to the set seeded when the process starts.
func (b *Builder) Initial(tasks ...string) *Builder {
	b.initial = append(b.initial, tasks...)
	return b
}

// Task declares a task in the process.
// If the task already exists, it returns the existing builder.
func (b *Builder) Task(name string) *TaskBuilder {
	if tb, ok := b.tasks[name]; ok {
		return tb
	}
	tb := &TaskBuilder{
		name:    name,
		kind:    domain.UserTask,
		builder: b,
	}
	b.tasks[name] = tb
	b.order = append(b.order, name)
	return tb
}

// Build compiles the declared tasks into a Blueprint, in declaration order.
func (b *Builder) Build() (*domain.Blueprint, error) {
	var errs []error
	defs := make([]domain.TaskDefinition, 0, len(b.order))
	for _, name := range b.order {
		def, err := b.tasks[name].definition()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		defs = append(defs, def)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("failed to build process %q: %w", b.name, err)
	}

	bp := &domain.Blueprint{
		Name:         b.name,
		InitialTasks: append([]string{}, b.initial...),
		Definitions:  defs,
	}
	if err := bp.Validate(); err != nil {
		return nil, fmt.Errorf("failed to build process %q: %w", b.name, err)
	}
	return bp, nil
}

// MustBuild is like Build but panics on error. Intended for tests and static definitions.
func (b *Builder) MustBuild() *domain.Blueprint {
	bp, err := b.Build()
	if err != nil {
		panic(err)
	}
	return bp
}
