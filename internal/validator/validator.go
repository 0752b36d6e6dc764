package validator

import (
	"fmt"
	"slices"
	"strings"

	"github.com/aretw0/taskflow/pkg/domain"
	"github.com/aretw0/taskflow/pkg/policy"
)

// Severity ranks a finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Finding is a single well-formedness observation about a blueprint.
type Finding struct {
	Severity Severity
	Task     string
	Message  string
}

func (f Finding) String() string {
	if f.Task == "" {
		return fmt.Sprintf("[%s] %s", f.Severity, f.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", f.Severity, f.Task, f.Message)
}

// ValidateBlueprint inspects a blueprint for authoring mistakes the engine tolerates at runtime:
// duplicate names, follow-ons without a definition and defined tasks nothing can activate.
// Undefined tasks are legal for the engine, so those findings are warnings.
func ValidateBlueprint(bp *domain.Blueprint) []Finding {
	var findings []Finding

	if len(bp.InitialTasks) == 0 {
		findings = append(findings, Finding{Severity: SeverityError, Message: "no initial tasks"})
	}

	defined := make(map[string]int)
	for _, d := range bp.Definitions {
		defined[d.Name]++
	}
	for _, name := range bp.TaskNames() {
		if defined[name] > 1 {
			findings = append(findings, Finding{
				Severity: SeverityError,
				Task:     name,
				Message:  fmt.Sprintf("defined %d times; only the first definition is used", defined[name]),
			})
			defined[name] = 1
		}
	}

	reachable := slices.Clone(bp.InitialTasks)
	for _, t := range bp.InitialTasks {
		if _, ok := defined[t]; !ok {
			findings = append(findings, Finding{Severity: SeverityWarning, Task: t, Message: "initial task has no definition"})
		}
	}

	for _, d := range bp.Definitions {
		targets, ok := policy.TargetsOf(d)
		if !ok {
			continue
		}
		for _, target := range targets {
			reachable = append(reachable, target)
			if _, ok := defined[target]; !ok {
				findings = append(findings, Finding{
					Severity: SeverityWarning,
					Task:     d.Name,
					Message:  fmt.Sprintf("activates %q which has no definition", target),
				})
			}
		}
	}

	// Custom policies hide their targets, so reachability is only checked for fully declarative blueprints.
	if declarative(bp) {
		for _, name := range bp.TaskNames() {
			if !slices.Contains(reachable, name) {
				findings = append(findings, Finding{Severity: SeverityWarning, Task: name, Message: "is never activated"})
				reachable = append(reachable, name)
			}
		}
	}

	return findings
}

// HasErrors reports whether any finding is an error.
func HasErrors(findings []Finding) bool {
	return slices.ContainsFunc(findings, func(f Finding) bool { return f.Severity == SeverityError })
}

// Err folds error findings into a single error, or nil.
func Err(findings []Finding) error {
	var lines []string
	for _, f := range findings {
		if f.Severity == SeverityError {
			lines = append(lines, f.String())
		}
	}
	if len(lines) == 0 {
		return nil
	}
	return fmt.Errorf("found %d errors:\n- %s", len(lines), strings.Join(lines, "\n- "))
}

func declarative(bp *domain.Blueprint) bool {
	for _, d := range bp.Definitions {
		if d.Policy == nil {
			continue
		}
		if _, ok := policy.TargetsOf(d); !ok {
			return false
		}
	}
	return true
}
