package domain

import "fmt"

// TaskKind classifies a task. The engine never branches on it.
type TaskKind string

const (
	UserTask    TaskKind = "UserTask"    // Completed by a person (approval, form, review)
	ServiceTask TaskKind = "ServiceTask" // Completed by a system (job, webhook, integration)
)

// ParseTaskKind converts a raw kind string. An empty string yields UserTask.
func ParseTaskKind(raw string) (TaskKind, error) {
	switch TaskKind(raw) {
	case "":
		return UserTask, nil
	case UserTask, ServiceTask:
		return TaskKind(raw), nil
	default:
		return "", fmt.Errorf("unknown task kind %q", raw)
	}
}

// TaskPolicy decides how a task behaves on completion.
// Implementations read the process through its accessors and must not mutate it.
type TaskPolicy interface {
	// NextTasks returns the task names activated once the task completes.
	NextTasks(p *Process) ([]string, error)

	// CanComplete reports whether the task may complete given the current process state.
	CanComplete(p *Process) (bool, error)
}

// DefaultPolicy activates nothing and always permits completion.
type DefaultPolicy struct{}

func (DefaultPolicy) NextTasks(*Process) ([]string, error) { return nil, nil }
func (DefaultPolicy) CanComplete(*Process) (bool, error)   { return true, nil }

// PolicyFuncs adapts plain functions to a TaskPolicy.
// A nil field falls back to DefaultPolicy behavior.
type PolicyFuncs struct {
	Next  func(p *Process) ([]string, error)
	Allow func(p *Process) (bool, error)
}

// NextTasks implements TaskPolicy.
func (f PolicyFuncs) NextTasks(p *Process) ([]string, error) {
	if f.Next == nil {
		return nil, nil
	}
	return f.Next(p)
}

// CanComplete implements TaskPolicy.
func (f PolicyFuncs) CanComplete(p *Process) (bool, error) {
	if f.Allow == nil {
		return true, nil
	}
	return f.Allow(p)
}

// Static returns a policy that always activates the given tasks.
func Static(next ...string) TaskPolicy {
	tasks := append([]string(nil), next...)
	return PolicyFuncs{
		Next: func(*Process) ([]string, error) {
			return append([]string(nil), tasks...), nil
		},
	}
}

// Deny returns a policy that never permits completion.
func Deny() TaskPolicy {
	return PolicyFuncs{
		Allow: func(*Process) (bool, error) { return false, nil },
	}
}

// TaskDefinition is the immutable description of a single task.
type TaskDefinition struct {
	Name   string
	Kind   TaskKind
	Policy TaskPolicy
}

// NewTask creates a definition. A nil policy behaves as DefaultPolicy.
func NewTask(name string, kind TaskKind, policy TaskPolicy) TaskDefinition {
	return TaskDefinition{Name: name, Kind: kind, Policy: policy}
}

func (d TaskDefinition) policy() TaskPolicy {
	if d.Policy == nil {
		return DefaultPolicy{}
	}
	return d.Policy
}
