package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/taskflow"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of taskflow",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "taskflow version %s\n", strings.TrimSpace(taskflow.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
