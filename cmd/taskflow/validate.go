package main

import (
	"fmt"

	"github.com/aretw0/taskflow/internal/cli"
	"github.com/aretw0/taskflow/internal/validator"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [dir]",
	Short: "Check the process definition for authoring mistakes",
	Long: `Loads the process definition and reports duplicate task names, follow-on tasks
without a definition and tasks that can never be activated.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, closeFn, err := openEngine(cmd, args)
		if err != nil {
			return err
		}
		defer closeFn()

		out := cmd.OutOrStdout()
		if err := cli.PrintFindings(out, validator.ValidateBlueprint(eng.Blueprint())); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Fprintln(out, "Process is valid! ✅")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
