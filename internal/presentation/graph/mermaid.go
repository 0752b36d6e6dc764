package graph

import (
	"fmt"
	"slices"
	"strings"

	"github.com/aretw0/taskflow/pkg/domain"
	"github.com/aretw0/taskflow/pkg/policy"
)

// startID is the pseudo-node pointing at the initial tasks.
const startID = "__start__"

// GraphOverlay contains dynamic state data to visualize on the graph.
type GraphOverlay struct {
	Active    []string
	Completed []string
}

// OverlayOf builds an overlay from a session snapshot.
func OverlayOf(snap *domain.Snapshot) *GraphOverlay {
	if snap == nil {
		return nil
	}
	return &GraphOverlay{Active: snap.Active, Completed: snap.Completed}
}

// GenerateMermaid produces a Mermaid flowchart syntax string from a blueprint.
// It applies semantic styling:
// - UserTask: [/Parallelogram/]
// - ServiceTask: [[Subroutine]]
// - Custom (code) policy: {{Hexagon}}
// - Undefined follow-on: [Rectangle]
// Declarative rules are drawn as edges: next (solid), branches (labelled),
// requires and wait_for (dotted, pointing at the constrained task).
func GenerateMermaid(bp *domain.Blueprint, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	sb.WriteString(fmt.Sprintf("    %s((\"start\"))\n", startID))

	declared := make(map[string]bool, len(bp.Definitions))
	var undefined []string
	noteTarget := func(name string) {
		if !declared[name] && !slices.Contains(undefined, name) {
			undefined = append(undefined, name)
		}
	}
	for _, def := range bp.Definitions {
		declared[def.Name] = true
	}

	for _, t := range bp.InitialTasks {
		sb.WriteString(fmt.Sprintf("    %s --> %s\n", startID, sanitizeMermaidID(t)))
		noteTarget(t)
	}

	for _, def := range bp.Definitions {
		safeID := sanitizeMermaidID(def.Name)

		opener, closer := "[/", "/]"
		if def.Kind == domain.ServiceTask {
			opener, closer = "[[", "]]"
		}
		rules, declarative := def.Policy.(policy.Rules)
		if def.Policy != nil && !declarative {
			opener, closer = "{{", "}}"
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, escapeLabel(def.Name), closer))

		if !declarative {
			continue
		}
		for _, n := range rules.Next {
			sb.WriteString(fmt.Sprintf("    %s --> %s\n", safeID, sanitizeMermaidID(n)))
			noteTarget(n)
		}
		for _, b := range rules.Branches {
			label := "if " + strings.Join(b.IfCompleted, ", ")
			for _, n := range b.Then {
				sb.WriteString(fmt.Sprintf("    %s -- \"%s\" --> %s\n", safeID, escapeLabel(label), sanitizeMermaidID(n)))
				noteTarget(n)
			}
		}
		for _, r := range rules.Requires {
			sb.WriteString(fmt.Sprintf("    %s -. requires .-> %s\n", sanitizeMermaidID(r), safeID))
			noteTarget(r)
		}
		for _, w := range rules.WaitFor {
			sb.WriteString(fmt.Sprintf("    %s -. waits for .-> %s\n", sanitizeMermaidID(w), safeID))
			noteTarget(w)
		}
	}

	for _, name := range undefined {
		sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", sanitizeMermaidID(name), escapeLabel(name)))
	}

	// Apply Overlay Styles
	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef completed fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef active fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		writeClass(&sb, overlay.Completed, "completed")
		writeClass(&sb, overlay.Active, "active")
	}

	return sb.String()
}

// writeClass styles each distinct task once. Later classes win in Mermaid,
// so a completed task that was reactivated shows as active.
func writeClass(sb *strings.Builder, tasks []string, class string) {
	seen := make(map[string]bool)
	for _, id := range tasks {
		safeID := sanitizeMermaidID(id)
		if safeID == "" || seen[safeID] {
			continue
		}
		seen[safeID] = true
		sb.WriteString(fmt.Sprintf("    class %s %s;\n", safeID, class))
	}
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
