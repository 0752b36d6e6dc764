package domain

import (
	"errors"
	"fmt"
)

// ErrorCode is the machine-readable code carried by a TaskError.
type ErrorCode string

const (
	CodeTaskNotActive        ErrorCode = "TASK_NOT_ACTIVE"
	CodeTaskConstraintFailed ErrorCode = "TASK_CONSTRAINT_FAILED"
)

var (
	// ErrTaskNotActive matches any TaskError with CodeTaskNotActive.
	ErrTaskNotActive = errors.New("task not active")

	// ErrTaskConstraintFailed matches any TaskError with CodeTaskConstraintFailed.
	ErrTaskConstraintFailed = errors.New("task constraint failed")

	// ErrPolicyFailed wraps an error raised by a TaskPolicy while completing a task.
	ErrPolicyFailed = errors.New("task policy failed")

	// ErrSessionNotFound is returned when a session ID cannot be found in the store.
	ErrSessionNotFound = errors.New("session not found")

	// ErrDefinitionNotFound is returned when a loader has no process definition to offer.
	ErrDefinitionNotFound = errors.New("process definition not found")
)

// TaskError is the typed failure returned by Process.Complete.
type TaskError struct {
	Code    ErrorCode
	Task    string
	Message string
}

func (e *TaskError) Error() string {
	return e.Message
}

// Is lets errors.Is match a TaskError against the sentinel for its code.
func (e *TaskError) Is(target error) bool {
	switch e.Code {
	case CodeTaskNotActive:
		return target == ErrTaskNotActive
	case CodeTaskConstraintFailed:
		return target == ErrTaskConstraintFailed
	}
	return false
}

func errNotActive(task string) *TaskError {
	return &TaskError{
		Code:    CodeTaskNotActive,
		Task:    task,
		Message: fmt.Sprintf("task %q not in current active tasks of the process", task),
	}
}

func errConstraintFailed(task string) *TaskError {
	return &TaskError{
		Code:    CodeTaskConstraintFailed,
		Task:    task,
		Message: fmt.Sprintf("task %q transition constraint failed", task),
	}
}

// CodeOf extracts the ErrorCode from err, if it carries one.
func CodeOf(err error) (ErrorCode, bool) {
	var te *TaskError
	if errors.As(err, &te) {
		return te.Code, true
	}
	return "", false
}
