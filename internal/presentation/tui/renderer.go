package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/taskflow/pkg/domain"
	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// NewRenderer returns a function that renders markdown using glamour.
// Outside a terminal the markdown is returned unchanged.
func NewRenderer() func(string) (string, error) {
	if !IsTerminal(os.Stdout) {
		return func(markdown string) (string, error) { return markdown, nil }
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
		glamour.WithWordWrap(terminalWidth(os.Stdout)),
	)
	if err != nil {
		return func(markdown string) (string, error) { return markdown, nil }
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func terminalWidth(f *os.File) int {
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// SnapshotMarkdown describes a session as a markdown document.
// Active tasks are annotated with their kind and whether they may complete now.
func SnapshotMarkdown(bp *domain.Blueprint, snap *domain.Snapshot) string {
	var sb strings.Builder

	title := snap.SessionID
	if bp.Name != "" {
		title = fmt.Sprintf("%s · %s", bp.Name, snap.SessionID)
	}
	fmt.Fprintf(&sb, "# %s\n\n", title)

	p := bp.Restore(snap)
	sb.WriteString("## Active\n\n")
	if len(snap.Active) == 0 {
		sb.WriteString("_No active tasks: the process is finished._\n")
	}
	for _, t := range snap.Active {
		kind := "undefined"
		if def, ok := bp.Definition(t); ok {
			kind = string(def.Kind)
		}
		state := "blocked"
		if p.CanComplete(t) {
			state = "ready"
		}
		fmt.Fprintf(&sb, "- **%s** (%s, %s)\n", t, kind, state)
	}

	sb.WriteString("\n## Completed\n\n")
	if len(snap.Completed) == 0 {
		sb.WriteString("_Nothing completed yet._\n")
	}
	for i, t := range snap.Completed {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, t)
	}

	if !snap.UpdatedAt.IsZero() {
		fmt.Fprintf(&sb, "\n_Updated %s_\n", snap.UpdatedAt.Format("2006-01-02 15:04:05 MST"))
	}
	return sb.String()
}
