package dto

// ProcessDocument is the raw shape of a process definition file.
// It uses "mapstructure" tags so the same DTO serves YAML and JSON sources.
type ProcessDocument struct {
	Name    string         `json:"name" mapstructure:"name"`
	Initial []string       `json:"initial" mapstructure:"initial"`
	Tasks   []TaskMetadata `json:"tasks" mapstructure:"tasks"`
}

// TaskMetadata describes one task and its declarative policy.
type TaskMetadata struct {
	Name     string           `json:"name" mapstructure:"name"`
	Kind     string           `json:"kind" mapstructure:"kind"`
	Next     []string         `json:"next,omitempty" mapstructure:"next"`
	Requires []string         `json:"requires,omitempty" mapstructure:"requires"`
	WaitFor  []string         `json:"wait_for,omitempty" mapstructure:"wait_for"`
	Branches []BranchMetadata `json:"branches,omitempty" mapstructure:"branches"`

	// Description is free text for humans; the engine ignores it.
	Description string `json:"description,omitempty" mapstructure:"description"`

	// Custom is set when describing a task whose policy is Go code and cannot be shown.
	Custom bool `json:"custom,omitempty" mapstructure:"-"`
}

// BranchMetadata activates Then once every task in IfCompleted is completed.
type BranchMetadata struct {
	IfCompleted []string `json:"if_completed" mapstructure:"if_completed"`
	Then        []string `json:"then" mapstructure:"then"`
}
