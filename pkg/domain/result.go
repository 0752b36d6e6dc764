package domain

// Outcome classifies the result of a completion attempt.
type Outcome string

const (
	OutcomeCompleted        Outcome = "completed"
	OutcomeNotActive        Outcome = "not_active"
	OutcomeConstraintFailed Outcome = "constraint_failed"
	OutcomePolicyFailed     Outcome = "policy_failed"
)

// Result describes what happened when a task completion was attempted.
type Result struct {
	Task    string  `json:"task"`
	Outcome Outcome `json:"outcome"`

	// Activated holds the follow-on tasks appended to the active set.
	Activated []string `json:"activated,omitempty"`

	// Err is nil exactly when Outcome is OutcomeCompleted.
	Err error `json:"-"`
}

// OK reports whether the task was completed.
func (r Result) OK() bool {
	return r.Err == nil
}

// Code returns the machine-readable code of the failure, if any.
func (r Result) Code() ErrorCode {
	code, _ := CodeOf(r.Err)
	return code
}
