package main

import (
	"fmt"

	"github.com/aretw0/taskflow/internal/presentation/graph"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph [dir]",
	Short: "Export the process graph visualization",
	Long: `Outputs a Mermaid diagram (graph TD) of the process definition.
With --session, active and completed tasks of that session are highlighted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, closeFn, err := openEngine(cmd, args)
		if err != nil {
			return err
		}
		defer closeFn()

		var overlay *graph.GraphOverlay
		if sessionID, _ := cmd.Flags().GetString("session"); sessionID != "" {
			snap, err := eng.Inspect(cmd.Context(), sessionID)
			if err != nil {
				return fmt.Errorf("error loading session '%s': %w", sessionID, err)
			}
			overlay = graph.OverlayOf(snap)
		}

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(eng.Blueprint(), overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("session", "", "Highlight the state of this session")
}
