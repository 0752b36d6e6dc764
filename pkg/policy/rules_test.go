package policy_test

import (
	"testing"

	"github.com/aretw0/taskflow/pkg/domain"
	"github.com/aretw0/taskflow/pkg/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRules_Flow(t *testing.T) {
	defs := []domain.TaskDefinition{
		domain.NewTask("submit", domain.UserTask, policy.Rules{Next: []string{"review", "audit"}}),
		domain.NewTask("audit", domain.ServiceTask, nil),
		domain.NewTask("review", domain.UserTask, policy.Rules{
			Requires: []string{"submit"},
			WaitFor:  []string{"audit"},
			Branches: []policy.Branch{
				{IfCompleted: []string{"audit"}, Then: []string{"publish"}},
				{IfCompleted: []string{"never"}, Then: []string{"escalate"}},
			},
		}),
	}
	p := domain.NewProcess([]string{"submit"}, defs)
	p.Start()

	require.NoError(t, p.Complete("submit"))
	assert.Equal(t, []string{"review", "audit"}, p.ActiveTasks())

	// audit is still active
	assert.False(t, p.CanComplete("review"))
	assert.ErrorIs(t, p.Complete("review"), domain.ErrTaskConstraintFailed)

	require.NoError(t, p.Complete("audit"))
	require.NoError(t, p.Complete("review"))
	assert.Equal(t, []string{"publish"}, p.ActiveTasks())
	assert.Equal(t, []string{"submit", "audit", "review"}, p.CompletedTasks())
}

func TestRules_Targets(t *testing.T) {
	r := policy.Rules{
		Next: []string{"a", "b"},
		Branches: []policy.Branch{
			{IfCompleted: []string{"x"}, Then: []string{"b", "c"}},
		},
	}
	assert.Equal(t, []string{"a", "b", "c"}, r.Targets())
	assert.False(t, r.IsZero())
	assert.True(t, policy.Rules{}.IsZero())

	targets, ok := policy.TargetsOf(domain.NewTask("t", domain.UserTask, r))
	assert.True(t, ok)
	assert.Equal(t, []string{"a", "b", "c"}, targets)

	_, ok = policy.TargetsOf(domain.NewTask("t", domain.UserTask, domain.Deny()))
	assert.False(t, ok)
}

func TestRules_NextDoesNotAlias(t *testing.T) {
	r := policy.Rules{Next: []string{"a"}}
	p := domain.NewProcess(nil, nil)

	next, err := r.NextTasks(p)
	require.NoError(t, err)
	next[0] = "z"
	assert.Equal(t, []string{"a"}, r.Next)
}
