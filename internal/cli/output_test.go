package cli_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aretw0/taskflow/internal/cli"
	"github.com/aretw0/taskflow/internal/validator"
	"github.com/aretw0/taskflow/pkg/domain"
	"github.com/aretw0/taskflow/pkg/dsl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintSnapshot(t *testing.T) {
	b := dsl.New("review").Initial("draft")
	b.Task("draft").Then("review")
	bp := b.MustBuild()
	snap := &domain.Snapshot{SessionID: "s1", Active: []string{"review"}, Completed: []string{"draft"}}

	t.Run("Text", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, cli.PrintSnapshot(&buf, bp, snap, cli.FormatText))
		assert.Equal(t, "session:   s1\nactive:    review\ncompleted: draft\n", buf.String())
	})

	t.Run("JSON", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, cli.PrintSnapshot(&buf, bp, snap, cli.FormatJSON))

		var got domain.Snapshot
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, snap.Active, got.Active)
		assert.Equal(t, snap.Completed, got.Completed)
	})

	t.Run("Pretty", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, cli.PrintSnapshot(&buf, bp, snap, cli.FormatPretty))
		assert.Contains(t, buf.String(), "review")
	})

	t.Run("Empty lists", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, cli.PrintSnapshot(&buf, bp, domain.NewSnapshot("s2"), ""))
		assert.Contains(t, buf.String(), "active:    -\n")
	})

	t.Run("Unknown format", func(t *testing.T) {
		err := cli.PrintSnapshot(&bytes.Buffer{}, bp, snap, "xml")
		assert.ErrorContains(t, err, "unknown output format")
	})
}

func TestPrintResult(t *testing.T) {
	snap := &domain.Snapshot{Active: []string{"B", "C"}}

	t.Run("Completed", func(t *testing.T) {
		var buf bytes.Buffer
		res := domain.Result{Task: "A", Outcome: domain.OutcomeCompleted, Activated: []string{"B", "C"}}
		require.NoError(t, cli.PrintResult(&buf, res, snap, cli.FormatText))
		assert.Equal(t, "✔ A completed → B, C\nactive: B, C\n", buf.String())
	})

	t.Run("Refused as JSON", func(t *testing.T) {
		p := domain.NewProcess([]string{"B"}, nil)
		p.Start()
		res := p.Attempt("A")

		var buf bytes.Buffer
		require.NoError(t, cli.PrintResult(&buf, res, snap, cli.FormatJSON))

		var got map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, "not_active", got["outcome"])
		assert.Equal(t, "TASK_NOT_ACTIVE", got["code"])
		assert.Contains(t, got["error"], "not in current active tasks")
	})

	t.Run("Refused as text", func(t *testing.T) {
		var buf bytes.Buffer
		res := domain.Result{Task: "C", Outcome: domain.OutcomeConstraintFailed, Err: errors.New("nope")}
		require.NoError(t, cli.PrintResult(&buf, res, snap, cli.FormatText))
		assert.Equal(t, "✘ C: nope\nactive: B, C\n", buf.String())
	})
}

func TestPrintFindings(t *testing.T) {
	b := dsl.New("broken").Initial("A")
	b.Task("A").Then("ghost")
	bp := b.MustBuild()

	var buf bytes.Buffer
	require.NoError(t, cli.PrintFindings(&buf, validator.ValidateBlueprint(bp)), "warnings alone pass")
	assert.Contains(t, buf.String(), `[warning] A: activates "ghost" which has no definition`)

	buf.Reset()
	err := cli.PrintFindings(&buf, validator.ValidateBlueprint(&domain.Blueprint{Name: "empty"}))
	require.Error(t, err)
	assert.Contains(t, buf.String(), "[error] no initial tasks")
}
