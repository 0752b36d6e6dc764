package dsl_test

import (
	"testing"

	"github.com/aretw0/taskflow/pkg/domain"
	"github.com/aretw0/taskflow/pkg/dsl"
	"github.com/aretw0/taskflow/pkg/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_Scenario(t *testing.T) {
	b := dsl.New("scenario").Initial("A")
	b.Task("A").Then("B", "C").
		Task("B").Service().
		Task("C").Policy(domain.Deny())

	bp, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, "scenario", bp.Name)
	assert.Equal(t, []string{"A"}, bp.InitialTasks)
	assert.Equal(t, []string{"A", "B", "C"}, bp.TaskNames())
	assert.Equal(t, domain.ServiceTask, bp.Definitions[1].Kind)
	assert.Nil(t, bp.Definitions[1].Policy)

	p := bp.NewProcess()
	p.Start()
	require.NoError(t, p.Complete("A"))
	assert.Equal(t, []string{"B", "C"}, p.ActiveTasks())
	assert.ErrorIs(t, p.Complete("C"), domain.ErrTaskConstraintFailed)
	require.NoError(t, p.Complete("B"))
	assert.Equal(t, []string{"C"}, p.ActiveTasks())
	assert.Equal(t, []string{"A", "B"}, p.CompletedTasks())
}

func TestBuilder_DeclarativeRules(t *testing.T) {
	b := dsl.New("rules").Initial("submit")
	b.Task("review").Requires("submit").WaitFor("audit").When([]string{"audit"}, "payout")

	def, err := b.Task("review").Build()
	require.NoError(t, err)

	rules, ok := def.Policy.(policy.Rules)
	require.True(t, ok)
	assert.Equal(t, []string{"submit"}, rules.Requires)
	assert.Equal(t, []string{"audit"}, rules.WaitFor)
	assert.Equal(t, []policy.Branch{{IfCompleted: []string{"audit"}, Then: []string{"payout"}}}, rules.Branches)
}

func TestBuilder_TaskIsIdempotent(t *testing.T) {
	b := dsl.New("dup")
	b.Task("A").Then("B")
	b.Task("A").Then("C")

	bp := b.MustBuild()
	require.Len(t, bp.Definitions, 1)
	targets, ok := policy.TargetsOf(bp.Definitions[0])
	require.True(t, ok)
	assert.Equal(t, []string{"B", "C"}, targets)
}

func TestBuilder_Errors(t *testing.T) {
	t.Run("Empty name", func(t *testing.T) {
		b := dsl.New("bad")
		b.Task("")
		_, err := b.Build()
		assert.ErrorContains(t, err, "task name cannot be empty")
	})

	t.Run("Mixed policy", func(t *testing.T) {
		b := dsl.New("bad")
		b.Task("A").Then("B").Policy(domain.Deny())
		_, err := b.Build()
		assert.ErrorContains(t, err, "mixes a custom policy")
	})

	t.Run("Empty initial", func(t *testing.T) {
		assert.Panics(t, func() {
			dsl.New("bad").Initial("").MustBuild()
		})
	})
}
