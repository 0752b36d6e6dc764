package domain_test

import (
	"testing"

	"github.com/aretw0/taskflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTaskKind(t *testing.T) {
	kind, err := domain.ParseTaskKind("")
	require.NoError(t, err)
	assert.Equal(t, domain.UserTask, kind)

	kind, err = domain.ParseTaskKind("ServiceTask")
	require.NoError(t, err)
	assert.Equal(t, domain.ServiceTask, kind)

	_, err = domain.ParseTaskKind("ScriptTask")
	assert.Error(t, err)
}

func TestPolicyDefaults(t *testing.T) {
	p := domain.NewProcess(nil, nil)

	for name, policy := range map[string]domain.TaskPolicy{
		"default": domain.DefaultPolicy{},
		"funcs":   domain.PolicyFuncs{},
	} {
		next, err := policy.NextTasks(p)
		assert.NoError(t, err, name)
		assert.Empty(t, next, name)

		ok, err := policy.CanComplete(p)
		assert.NoError(t, err, name)
		assert.True(t, ok, name)
	}
}

func TestStatic_ReturnsFreshSlices(t *testing.T) {
	policy := domain.Static("A", "B")
	p := domain.NewProcess(nil, nil)

	first, _ := policy.NextTasks(p)
	first[0] = "Z"

	second, _ := policy.NextTasks(p)
	assert.Equal(t, []string{"A", "B"}, second)
}

func TestBlueprint(t *testing.T) {
	bp := &domain.Blueprint{
		Name:         "approval",
		InitialTasks: []string{"A"},
		Definitions: []domain.TaskDefinition{
			domain.NewTask("A", domain.UserTask, domain.Static("B")),
			domain.NewTask("B", domain.ServiceTask, nil),
		},
	}
	require.NoError(t, bp.Validate())
	assert.Equal(t, []string{"A", "B"}, bp.TaskNames())

	p := bp.Restore(&domain.Snapshot{Active: []string{"B"}, Completed: []string{"A"}})
	assert.Equal(t, []string{"B"}, p.ActiveTasks())
	assert.Equal(t, []string{"A"}, p.CompletedTasks())

	t.Run("Validate rejects empty names", func(t *testing.T) {
		bad := &domain.Blueprint{
			InitialTasks: []string{""},
			Definitions:  []domain.TaskDefinition{{}},
		}
		err := bad.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "index 0")
		assert.Contains(t, err.Error(), "empty name")
	})
}

func TestResult_Code(t *testing.T) {
	p := domain.NewProcess([]string{"A"}, []domain.TaskDefinition{
		domain.NewTask("A", domain.UserTask, domain.Deny()),
	})
	p.Start()

	assert.Equal(t, domain.CodeTaskNotActive, p.Attempt("B").Code())
	assert.Equal(t, domain.CodeTaskConstraintFailed, p.Attempt("A").Code())

	p.Restore(domain.Snapshot{Active: []string{"free"}})
	assert.Equal(t, domain.ErrorCode(""), p.Attempt("free").Code())
}
