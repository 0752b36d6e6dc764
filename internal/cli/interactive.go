package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/aretw0/taskflow/pkg/ports"
)

// RunInteractive drives one session from a line-oriented prompt until the process
// finishes, the input ends or the user quits. Existing sessions are resumed.
//
// Commands: a task name or its number completes it, "r" restarts, "q" quits.
func RunInteractive(ctx context.Context, eng ports.ProcessEngine, sessionID string, in io.Reader, out io.Writer) error {
	snap, created, err := eng.LoadOrStart(ctx, sessionID)
	if err != nil {
		return err
	}
	if created {
		printSystemMessage(out, "Session '%s' started.", sessionID)
	} else {
		printSystemMessage(out, "Resuming session '%s'.", sessionID)
	}

	scanner := bufio.NewScanner(in)
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if len(snap.Active) == 0 {
			printSystemMessage(out, "Process finished. Completed: %s", joinOrDash(snap.Completed))
			return nil
		}
		if err := printMenu(ctx, eng, out, sessionID, snap.Active); err != nil {
			return err
		}

		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		input, err := SanitizeInput(scanner.Text())
		if err != nil {
			printSystemMessage(out, "Invalid input: %v", err)
			continue
		}

		switch input {
		case "":
			continue
		case "q", "quit", "exit":
			printSystemMessage(out, "Bye! Session '%s' is saved.", sessionID)
			return nil
		case "r", "restart":
			if snap, err = eng.Start(ctx, sessionID); err != nil {
				return err
			}
			printSystemMessage(out, "Session restarted.")
			continue
		}

		task := input
		if n, err := strconv.Atoi(input); err == nil && n >= 1 && n <= len(snap.Active) {
			task = snap.Active[n-1]
		}

		res, next, err := eng.Complete(ctx, sessionID, task)
		if err != nil {
			return err
		}
		if err := PrintResult(out, res, next, FormatText); err != nil {
			return err
		}
		snap = next
	}
}

func printMenu(ctx context.Context, eng ports.ProcessEngine, out io.Writer, sessionID string, active []string) error {
	fmt.Fprintln(out, "Active tasks:")
	for i, t := range active {
		ok, err := eng.CanComplete(ctx, sessionID, t)
		if err != nil {
			return err
		}
		mark := " "
		if !ok {
			mark = "⏸"
		}
		fmt.Fprintf(out, "  %d) %s %s\n", i+1, mark, t)
	}
	return nil
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}
