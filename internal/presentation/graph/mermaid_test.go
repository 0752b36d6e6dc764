package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/taskflow/internal/presentation/graph"
	"github.com/aretw0/taskflow/pkg/domain"
	"github.com/aretw0/taskflow/pkg/dsl"
	"github.com/stretchr/testify/assert"
)

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		build    func(b *dsl.Builder)
		contains []string
	}{
		{
			name: "Shapes by kind",
			build: func(b *dsl.Builder) {
				b.Initial("ask")
				b.Task("ask").User()
				b.Task("job").Service()
				b.Task("gate").Policy(domain.Deny())
			},
			contains: []string{
				`__start__(("start"))`,
				"__start__ --> ask",
				`ask[/"ask"/]`,
				`job[["job"]]`,
				`gate{{"gate"}}`,
			},
		},
		{
			name: "Rules as edges",
			build: func(b *dsl.Builder) {
				b.Initial("submit")
				b.Task("submit").Then("review")
				b.Task("review").Requires("submit").WaitFor("audit").When([]string{"audit"}, "publish")
			},
			contains: []string{
				"submit --> review",
				`review -- "if audit" --> publish`,
				"submit -. requires .-> review",
				"audit -. waits for .-> review",
				`publish["publish"]`,
				`audit["audit"]`,
			},
		},
		{
			name: "ID Sanitization",
			build: func(b *dsl.Builder) {
				b.Initial("legal/review-v1.2")
			},
			contains: []string{
				"__start__ --> legal_review_v1_2",
				`legal_review_v1_2["legal/review-v1.2"]`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := dsl.New(tt.name)
			tt.build(b)
			got := graph.GenerateMermaid(b.MustBuild(), nil)

			assert.True(t, strings.HasPrefix(got, "graph TD\n"))
			for _, want := range tt.contains {
				assert.Contains(t, got, want)
			}
			assert.NotContains(t, got, "classDef")
		})
	}
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	b := dsl.New("overlay").Initial("A")
	b.Task("A").Then("B", "B")

	got := graph.GenerateMermaid(b.MustBuild(), graph.OverlayOf(&domain.Snapshot{
		Active:    []string{"B", "B"},
		Completed: []string{"A"},
	}))

	assert.Contains(t, got, "classDef active")
	assert.Contains(t, got, "class A completed;")
	assert.Equal(t, 1, strings.Count(got, "class B active;"), "duplicates are styled once")
	assert.Nil(t, graph.OverlayOf(nil))
}
