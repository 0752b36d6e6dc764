package domain

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestDiff(t *testing.T) {
	tests := []struct {
		name     string
		old      *Snapshot
		new      *Snapshot
		wantDiff *SnapshotDiff // nil means we expect no diff
	}{
		{
			name: "Initial Load (Old is Nil)",
			old:  nil,
			new:  &Snapshot{SessionID: "sess-1", Active: []string{"A"}, Completed: []string{}},
			wantDiff: &SnapshotDiff{
				SessionID: "sess-1",
				Activated: []string{"A"},
			},
		},
		{
			name:     "No Changes",
			old:      &Snapshot{SessionID: "sess-1", Active: []string{"B", "C"}, Completed: []string{"A"}},
			new:      &Snapshot{SessionID: "sess-1", Active: []string{"B", "C"}, Completed: []string{"A"}},
			wantDiff: nil,
		},
		{
			name: "Completion With Follow-ons",
			old:  &Snapshot{SessionID: "sess-1", Active: []string{"A"}, Completed: []string{}},
			new:  &Snapshot{SessionID: "sess-1", Active: []string{"B", "C"}, Completed: []string{"A"}},
			wantDiff: &SnapshotDiff{
				SessionID:   "sess-1",
				Activated:   []string{"B", "C"},
				Deactivated: []string{"A"},
				Completed:   []string{"A"},
			},
		},
		{
			name: "Duplicate Activation Counted",
			old:  &Snapshot{SessionID: "s", Active: []string{"join", "right"}, Completed: []string{"left"}},
			new:  &Snapshot{SessionID: "s", Active: []string{"join", "join"}, Completed: []string{"left", "right"}},
			wantDiff: &SnapshotDiff{
				SessionID:   "s",
				Activated:   []string{"join"},
				Deactivated: []string{"right"},
				Completed:   []string{"right"},
			},
		},
		{
			name: "Restart Rewrites Log",
			old:  &Snapshot{SessionID: "s", Active: []string{"B"}, Completed: []string{"A"}},
			new:  &Snapshot{SessionID: "s", Active: []string{"A"}, Completed: []string{}},
			wantDiff: &SnapshotDiff{
				SessionID:   "s",
				Activated:   []string{"A"},
				Deactivated: []string{"B"},
				Completed:   []string{},
				Reset:       true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Diff(tt.old, tt.new)
			if !reflect.DeepEqual(got, tt.wantDiff) {
				gotJSON, _ := json.Marshal(got)
				wantJSON, _ := json.Marshal(tt.wantDiff)
				t.Errorf("Diff() = %s, want %s", gotJSON, wantJSON)
			}
		})
	}
}

func TestDiff_NilNew(t *testing.T) {
	if d := Diff(&Snapshot{}, nil); d != nil {
		t.Errorf("expected nil diff, got %+v", d)
	}
}

func TestRewrite(t *testing.T) {
	old := &Snapshot{SessionID: "s", Active: []string{"B", "C"}, Completed: []string{"A"}}

	got := Rewrite(old, &Snapshot{SessionID: "s", Active: []string{"B", "C"}, Completed: []string{"A"}})
	want := &SnapshotDiff{SessionID: "s", Completed: []string{"A"}, Reset: true}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("identical restore: got %+v, want %+v", got, want)
	}

	got = Rewrite(old, &Snapshot{SessionID: "s", Active: []string{"D"}, Completed: []string{"A", "B", "C"}})
	want = &SnapshotDiff{
		SessionID:   "s",
		Activated:   []string{"D"},
		Deactivated: []string{"B", "C"},
		Completed:   []string{"A", "B", "C"},
		Reset:       true,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("forward restore: got %+v, want %+v", got, want)
	}

	if d := Rewrite(old, nil); d != nil {
		t.Errorf("expected nil diff, got %+v", d)
	}
}
