package domain

import "time"

// Snapshot is the persistable form of a process's mutable state.
type Snapshot struct {
	// SessionID identifies the process execution the snapshot belongs to.
	SessionID string `json:"session_id,omitempty" yaml:"session_id,omitempty"`

	Active    []string `json:"active" yaml:"active"`
	Completed []string `json:"completed" yaml:"completed"`

	// UpdatedAt is set by the session manager on every save.
	UpdatedAt time.Time `json:"updated_at,omitzero" yaml:"updated_at,omitempty"`

	// Sealed carries the encrypted form of the snapshot when a store middleware
	// hides the task lists. Active and Completed are empty in that case.
	Sealed string `json:"sealed,omitempty" yaml:"sealed,omitempty"`
}

// NewSnapshot creates an empty snapshot for a session.
func NewSnapshot(sessionID string) *Snapshot {
	return &Snapshot{
		SessionID: sessionID,
		Active:    []string{},
		Completed: []string{},
	}
}

// Clone returns a deep copy of the snapshot.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	c := *s
	c.Active = cloneTasks(s.Active)
	c.Completed = cloneTasks(s.Completed)
	return &c
}
