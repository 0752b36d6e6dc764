package main

import (
	"fmt"
	"os"

	"github.com/aretw0/taskflow"
	"github.com/aretw0/taskflow/internal/cli"
	"github.com/aretw0/taskflow/pkg/domain"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "taskflow",
	Short: "Taskflow is a lightweight task-driven process engine",
	Long: `Taskflow runs processes described as tasks that activate other tasks.
Definitions live in a process.yaml file; sessions are persisted in a file, Redis or memory store.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	cli.RegisterFlags(rootCmd)
}

// openEngine builds the engine configured by the persistent flags.
// A positional directory argument is honored when --dir was not given.
func openEngine(cmd *cobra.Command, dirArg []string, hooks ...domain.LifecycleHooks) (*taskflow.Engine, func() error, error) {
	opts, err := cli.OptionsFromFlags(cmd)
	if err != nil {
		return nil, nil, err
	}
	if !cmd.Flags().Changed("dir") && len(dirArg) > 0 {
		opts.Dir = dirArg[0]
	}
	return cli.NewEngine(opts, cli.NewLogger(opts.Debug), hooks...)
}
