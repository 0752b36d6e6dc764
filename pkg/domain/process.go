package domain

import (
	"fmt"
	"slices"
)

// Process is the mutable runtime state of one workflow execution.
// It is not safe for concurrent use; see session.Manager for serialized access.
type Process struct {
	initial     []string
	definitions []TaskDefinition // shared, never mutated

	active    []string
	completed []string
}

// NewProcess creates an unstarted process. Active and completed tasks begin empty.
func NewProcess(initialTasks []string, definitions []TaskDefinition) *Process {
	return &Process{
		initial:     cloneTasks(initialTasks),
		definitions: definitions,
		active:      []string{},
		completed:   []string{},
	}
}

// Start seeds the active set with a copy of the initial tasks, discarding any progress.
func (p *Process) Start() {
	p.active = cloneTasks(p.initial)
	p.completed = []string{}
}

// InitialTasks returns a copy of the tasks seeded by Start.
func (p *Process) InitialTasks() []string { return cloneTasks(p.initial) }

// ActiveTasks returns a copy of the active tasks in insertion order.
func (p *Process) ActiveTasks() []string { return cloneTasks(p.active) }

// CompletedTasks returns a copy of the completed tasks in completion order.
func (p *Process) CompletedTasks() []string { return cloneTasks(p.completed) }

// Definitions returns the task definitions governing the process.
func (p *Process) Definitions() []TaskDefinition { return slices.Clone(p.definitions) }

// IsActive reports whether the task is currently active.
func (p *Process) IsActive(name string) bool { return slices.Contains(p.active, name) }

// IsCompleted reports whether the task has been completed at least once.
func (p *Process) IsCompleted(name string) bool { return slices.Contains(p.completed, name) }

// IsFinished reports whether no task is active. The engine never enforces it.
func (p *Process) IsFinished() bool { return len(p.active) == 0 }

// Definition looks up the first definition with the given name.
func (p *Process) Definition(name string) (TaskDefinition, bool) {
	return findDefinition(p.definitions, name)
}

func findDefinition(defs []TaskDefinition, name string) (TaskDefinition, bool) {
	for _, d := range defs {
		if d.Name == name {
			return d, true
		}
	}
	return TaskDefinition{}, false
}

// CanComplete reports whether the task may complete now. It never mutates the process.
// Undefined tasks are always completable; a policy error counts as "cannot complete".
func (p *Process) CanComplete(name string) bool {
	if !p.IsActive(name) {
		return false
	}
	def, ok := p.Definition(name)
	if !ok {
		return true
	}
	allowed, err := def.policy().CanComplete(p)
	if err != nil {
		return false
	}
	return allowed
}

// Complete advances the process by completing the task.
// On failure the process is left untouched and the error is a *TaskError
// or wraps ErrPolicyFailed.
func (p *Process) Complete(name string) error {
	return p.Attempt(name).Err
}

// Resolve completes the task and reports whether it succeeded.
func (p *Process) Resolve(name string) bool {
	return p.Attempt(name).OK()
}

// Attempt completes the task and describes the outcome as a Result.
func (p *Process) Attempt(name string) Result {
	if !p.IsActive(name) {
		return Result{Task: name, Outcome: OutcomeNotActive, Err: errNotActive(name)}
	}

	def, ok := p.Definition(name)
	if !ok {
		p.advance(name, nil)
		return Result{Task: name, Outcome: OutcomeCompleted, Activated: []string{}}
	}

	policy := def.policy()
	allowed, err := policy.CanComplete(p)
	if err != nil {
		return Result{
			Task:    name,
			Outcome: OutcomePolicyFailed,
			Err:     fmt.Errorf("%w: constraint of task %q: %w", ErrPolicyFailed, name, err),
		}
	}
	if !allowed {
		return Result{Task: name, Outcome: OutcomeConstraintFailed, Err: errConstraintFailed(name)}
	}

	// Follow-ons are computed before any mutation so a failure leaves no partial state.
	next, err := policy.NextTasks(p)
	if err != nil {
		return Result{
			Task:    name,
			Outcome: OutcomePolicyFailed,
			Err:     fmt.Errorf("%w: next tasks of task %q: %w", ErrPolicyFailed, name, err),
		}
	}

	p.advance(name, next)
	return Result{Task: name, Outcome: OutcomeCompleted, Activated: cloneTasks(next)}
}

// advance appends next to the active tasks, drops every occurrence of name
// from them and records name as completed.
func (p *Process) advance(name string, next []string) {
	active := make([]string, 0, len(p.active)+len(next))
	for _, t := range p.active {
		if t != name {
			active = append(active, t)
		}
	}
	for _, t := range next {
		if t != name {
			active = append(active, t)
		}
	}
	p.active = active
	p.completed = append(p.completed, name)
}

// Load replaces the active and completed tasks with copies of other's.
// Initial tasks and definitions are left untouched.
func (p *Process) Load(other *Process) {
	p.active = cloneTasks(other.active)
	p.completed = cloneTasks(other.completed)
}

// Snapshot captures the mutable state of the process.
func (p *Process) Snapshot() Snapshot {
	return Snapshot{
		Active:    cloneTasks(p.active),
		Completed: cloneTasks(p.completed),
	}
}

// Restore replaces the mutable state with the contents of a snapshot.
func (p *Process) Restore(s Snapshot) {
	p.active = cloneTasks(s.Active)
	p.completed = cloneTasks(s.Completed)
}

func cloneTasks(tasks []string) []string {
	out := make([]string, len(tasks))
	copy(out, tasks)
	return out
}
