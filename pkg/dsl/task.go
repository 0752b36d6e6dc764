package dsl

import (
	"fmt"

	"github.com/aretw0/taskflow/pkg/domain"
	"github.com/aretw0/taskflow/pkg/policy"
)

// TaskBuilder provides a fluent API for configuring a task.
type TaskBuilder struct {
	name    string
	kind    domain.TaskKind
	rules   policy.Rules
	custom  domain.TaskPolicy
	builder *Builder
}

// User marks the task as completed by a person.
func (t *TaskBuilder) User() *TaskBuilder {
	t.kind = domain.UserTask
	return t
}

// Service marks the task as completed by a system.
func (t *TaskBuilder) Service() *TaskBuilder {
	t.kind = domain.ServiceTask
	return t
}

// Then adds unconditional follow-on tasks.
func (t *TaskBuilder) Then(tasks ...string) *TaskBuilder {
	t.rules.Next = append(t.rules.Next, tasks...)
	return t
}

// When adds follow-on tasks activated only if every task in ifCompleted is completed.
func (t *TaskBuilder) When(ifCompleted []string, then ...string) *TaskBuilder {
	t.rules.Branches = append(t.rules.Branches, policy.Branch{
		IfCompleted: append([]string(nil), ifCompleted...),
		Then:        then,
	})
	return t
}

// Requires forbids completion until the given tasks are completed.
func (t *TaskBuilder) Requires(tasks ...string) *TaskBuilder {
	t.rules.Requires = append(t.rules.Requires, tasks...)
	return t
}

// WaitFor forbids completion while any of the given tasks is active.
func (t *TaskBuilder) WaitFor(tasks ...string) *TaskBuilder {
	t.rules.WaitFor = append(t.rules.WaitFor, tasks...)
	return t
}

// Policy sets a custom policy. It cannot be combined with the declarative helpers.
func (t *TaskBuilder) Policy(p domain.TaskPolicy) *TaskBuilder {
	t.custom = p
	return t
}

// Task returns to the parent builder to declare another task.
func (t *TaskBuilder) Task(name string) *TaskBuilder {
	return t.builder.Task(name)
}

// Build returns the underlying domain.TaskDefinition.
// This is primarily used by the Builder, but exposed for advanced usage.
func (t *TaskBuilder) Build() (domain.TaskDefinition, error) {
	return t.definition()
}

func (t *TaskBuilder) definition() (domain.TaskDefinition, error) {
	if t.name == "" {
		return domain.TaskDefinition{}, fmt.Errorf("task name cannot be empty")
	}
	switch {
	case t.custom != nil && !t.rules.IsZero():
		return domain.TaskDefinition{}, fmt.Errorf("task %q mixes a custom policy with declarative rules", t.name)
	case t.custom != nil:
		return domain.NewTask(t.name, t.kind, t.custom), nil
	case t.rules.IsZero():
		return domain.NewTask(t.name, t.kind, nil), nil
	}
	return domain.NewTask(t.name, t.kind, t.rules), nil
}
