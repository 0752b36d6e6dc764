package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/taskflow/internal/presentation/tui"
	"github.com/aretw0/taskflow/internal/validator"
	"github.com/aretw0/taskflow/pkg/domain"
)

// Output formats accepted by --output.
const (
	FormatText   = "text"
	FormatJSON   = "json"
	FormatPretty = "pretty"
)

// PrintSnapshot writes a session snapshot in the requested format.
func PrintSnapshot(w io.Writer, bp *domain.Blueprint, snap *domain.Snapshot, format string) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, snap)
	case FormatPretty:
		out, err := tui.NewRenderer()(tui.SnapshotMarkdown(bp, snap))
		if err != nil {
			return fmt.Errorf("failed to render snapshot: %w", err)
		}
		_, err = io.WriteString(w, out)
		return err
	case "", FormatText:
		fmt.Fprintf(w, "session:   %s\n", snap.SessionID)
		fmt.Fprintf(w, "active:    %s\n", joinOrDash(snap.Active))
		fmt.Fprintf(w, "completed: %s\n", joinOrDash(snap.Completed))
		return nil
	}
	return fmt.Errorf("unknown output format %q (supported: text, json, pretty)", format)
}

// PrintResult writes the outcome of a completion attempt.
func PrintResult(w io.Writer, res domain.Result, snap *domain.Snapshot, format string) error {
	if format == FormatJSON {
		return writeJSON(w, struct {
			domain.Result
			Code     domain.ErrorCode `json:"code,omitempty"`
			Error    string           `json:"error,omitempty"`
			Snapshot *domain.Snapshot `json:"snapshot"`
		}{res, res.Code(), errString(res.Err), snap})
	}

	if res.OK() {
		fmt.Fprintf(w, "✔ %s completed", res.Task)
		if len(res.Activated) > 0 {
			fmt.Fprintf(w, " → %s", strings.Join(res.Activated, ", "))
		}
		fmt.Fprintln(w)
	} else {
		fmt.Fprintf(w, "✘ %s: %v\n", res.Task, res.Err)
	}
	fmt.Fprintf(w, "active: %s\n", joinOrDash(snap.Active))
	return nil
}

// PrintFindings writes validation findings and returns an error if any is an error.
func PrintFindings(w io.Writer, findings []validator.Finding) error {
	for _, f := range findings {
		fmt.Fprintln(w, f.String())
	}
	return validator.Err(findings)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func joinOrDash(tasks []string) string {
	if len(tasks) == 0 {
		return "-"
	}
	return strings.Join(tasks, ", ")
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
