package main

import (
	"fmt"

	"github.com/aretw0/taskflow/internal/cli"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start [session-id]",
	Short: "Start (or restart) a session with the initial tasks",
	Long:  `Seeds the session with the initial tasks. Without an ID, a new random session ID is generated.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, closeFn, err := openEngine(cmd, nil)
		if err != nil {
			return err
		}
		defer closeFn()

		sessionID := uuid.NewString()
		if len(args) > 0 {
			sessionID = args[0]
		}

		snap, err := eng.Start(cmd.Context(), sessionID)
		if err != nil {
			return err
		}
		return cli.PrintSnapshot(cmd.OutOrStdout(), eng.Blueprint(), snap, outputFormat(cmd))
	},
}

var completeCmd = &cobra.Command{
	Use:   "complete <session-id> <task>",
	Short: "Complete an active task",
	Long:  `Completes the task and activates its follow-on tasks. Exits non-zero if the task is refused.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, closeFn, err := openEngine(cmd, nil)
		if err != nil {
			return err
		}
		defer closeFn()

		res, snap, err := eng.Complete(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		if err := cli.PrintResult(cmd.OutOrStdout(), res, snap, outputFormat(cmd)); err != nil {
			return err
		}
		return res.Err
	},
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <session-id> <task>",
	Short: "Try to complete a task and print whether it succeeded",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, closeFn, err := openEngine(cmd, nil)
		if err != nil {
			return err
		}
		defer closeFn()

		ok, err := eng.Resolve(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ok)
		return nil
	},
}

var canCmd = &cobra.Command{
	Use:   "can <session-id> <task>",
	Short: "Report whether a task may be completed now",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, closeFn, err := openEngine(cmd, nil)
		if err != nil {
			return err
		}
		defer closeFn()

		ok, err := eng.CanComplete(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ok)
		return nil
	},
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <session-id>",
	Short: "Show the active and completed tasks of a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, closeFn, err := openEngine(cmd, nil)
		if err != nil {
			return err
		}
		defer closeFn()

		snap, err := eng.Inspect(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("error loading session '%s': %w", args[0], err)
		}
		return cli.PrintSnapshot(cmd.OutOrStdout(), eng.Blueprint(), snap, outputFormat(cmd))
	},
}

func outputFormat(cmd *cobra.Command) string {
	format, _ := cmd.Flags().GetString("output")
	return format
}

func init() {
	for _, c := range []*cobra.Command{startCmd, completeCmd, inspectCmd} {
		c.Flags().StringP("output", "o", cli.FormatText, "Output format: text, json or pretty")
		rootCmd.AddCommand(c)
	}
	rootCmd.AddCommand(resolveCmd, canCmd)
}
