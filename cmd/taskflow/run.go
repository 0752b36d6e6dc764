package main

import (
	"os"

	"github.com/aretw0/taskflow"
	"github.com/aretw0/taskflow/internal/cli"
	"github.com/aretw0/taskflow/internal/presentation/tui"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [session-id]",
	Short: "Work through a session interactively",
	Long: `Resumes (or starts) a session and prompts for the next task to complete
until no task is active. Type a task name or its number, 'r' to restart or 'q' to quit.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID, _ := cmd.Flags().GetString("session")
		if len(args) > 0 {
			sessionID = args[0]
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		eng, closeFn, err := openEngine(cmd, nil)
		if err != nil {
			return err
		}
		defer closeFn()

		out := cmd.OutOrStdout()
		if tui.IsTerminal(os.Stdout) {
			tui.PrintBanner(out, taskflow.Version)
		}
		return cli.RunInteractive(ctx, eng, sessionID, cmd.InOrStdin(), out)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().String("session", "default", "Session to resume or start")
}
