package validator

import (
	"testing"

	"github.com/aretw0/taskflow/pkg/domain"
	"github.com/aretw0/taskflow/pkg/dsl"
	"github.com/stretchr/testify/assert"
)

func TestValidateBlueprint(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		b := dsl.New("ok").Initial("A")
		b.Task("A").Then("B")
		b.Task("B")

		findings := ValidateBlueprint(b.MustBuild())
		assert.Empty(t, findings)
		assert.NoError(t, Err(findings))
	})

	t.Run("Broken link and orphan", func(t *testing.T) {
		b := dsl.New("broken").Initial("A")
		b.Task("A").Then("ghost")
		b.Task("orphan")

		findings := ValidateBlueprint(b.MustBuild())
		assert.False(t, HasErrors(findings))
		assert.Contains(t, findings, Finding{Severity: SeverityWarning, Task: "A", Message: `activates "ghost" which has no definition`})
		assert.Contains(t, findings, Finding{Severity: SeverityWarning, Task: "orphan", Message: "is never activated"})
	})

	t.Run("Duplicates and no initial tasks", func(t *testing.T) {
		bp := &domain.Blueprint{
			Definitions: []domain.TaskDefinition{
				domain.NewTask("A", domain.UserTask, nil),
				domain.NewTask("A", domain.ServiceTask, nil),
			},
		}
		findings := ValidateBlueprint(bp)
		assert.True(t, HasErrors(findings))
		err := Err(findings)
		assert.ErrorContains(t, err, "found 2 errors")
		assert.ErrorContains(t, err, "defined 2 times")
		assert.ErrorContains(t, err, "no initial tasks")
	})

	t.Run("Custom policies skip reachability", func(t *testing.T) {
		b := dsl.New("custom").Initial("A")
		b.Task("A").Policy(domain.Static("B"))
		b.Task("B")

		assert.Empty(t, ValidateBlueprint(b.MustBuild()))
	})
}
