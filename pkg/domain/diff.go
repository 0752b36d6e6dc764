package domain

// SnapshotDiff represents the changes between two snapshots of the same process.
// It is designed to be serialized to JSON for partial updates on the client.
type SnapshotDiff struct {
	// SessionID is always present to identify the target.
	SessionID string `json:"session_id"`

	// Activated lists task names that entered the active set.
	Activated []string `json:"activated,omitempty"`

	// Deactivated lists task names that left the active set.
	Deactivated []string `json:"deactivated,omitempty"`

	// Completed contains the tasks appended to the completion log.
	Completed []string `json:"completed,omitempty"`

	// Reset is true when the completion log was rewritten rather than appended to
	// (e.g. the process was restarted).
	Reset bool `json:"reset,omitempty"`
}

// Diff calculates the difference between oldSnap and newSnap.
// If oldSnap is nil, it returns a diff representing the entire newSnap (initial load).
// Active tasks are compared as multisets, so duplicate names are counted.
func Diff(oldSnap, newSnap *Snapshot) *SnapshotDiff {
	if newSnap == nil {
		return nil
	}

	diff := &SnapshotDiff{SessionID: newSnap.SessionID}

	var oldActive, oldCompleted []string
	if oldSnap != nil {
		oldActive = oldSnap.Active
		oldCompleted = oldSnap.Completed
	}

	diff.Activated = subtract(newSnap.Active, oldActive)
	diff.Deactivated = subtract(oldActive, newSnap.Active)
	diff.Completed, diff.Reset = diffCompleted(oldCompleted, newSnap.Completed)

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

// subtract returns the elements of a that are not matched by an element of b,
// preserving the order of a.
func subtract(a, b []string) []string {
	counts := make(map[string]int, len(b))
	for _, t := range b {
		counts[t]++
	}
	var out []string
	for _, t := range a {
		if counts[t] > 0 {
			counts[t]--
			continue
		}
		out = append(out, t)
	}
	return out
}

// diffCompleted assumes append-only behavior for the completion log.
func diffCompleted(old, new []string) ([]string, bool) {
	if len(new) < len(old) {
		return cloneTasks(new), true
	}
	for i := range old {
		if old[i] != new[i] {
			return cloneTasks(new), true
		}
	}
	if len(new) == len(old) {
		return nil, false
	}
	return cloneTasks(new[len(old):]), false
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *SnapshotDiff) IsEmpty() bool {
	return len(d.Activated) == 0 &&
		len(d.Deactivated) == 0 &&
		len(d.Completed) == 0 &&
		!d.Reset
}

// Rewrite describes newSnap replacing oldSnap wholesale, as happens on restore.
// Completed carries the full new log and Reset is always set, even when nothing changed.
func Rewrite(oldSnap, newSnap *Snapshot) *SnapshotDiff {
	if newSnap == nil {
		return nil
	}
	diff := Diff(oldSnap, newSnap)
	if diff == nil {
		diff = &SnapshotDiff{SessionID: newSnap.SessionID}
	}
	diff.Completed = cloneTasks(newSnap.Completed)
	diff.Reset = true
	return diff
}
