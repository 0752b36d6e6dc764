package main

import (
	"fmt"

	"github.com/aretw0/taskflow/internal/cli"
	httpAdapter "github.com/aretw0/taskflow/pkg/adapters/http"
	"github.com/aretw0/taskflow/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Exposes the engine as a JSON API over HTTP, with Server-Sent Events per session
and Prometheus metrics on /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetString("port")

		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		metrics, err := observability.NewMetrics(reg)
		if err != nil {
			return fmt.Errorf("failed to register metrics: %w", err)
		}
		opts, err := cli.OptionsFromFlags(cmd)
		if err != nil {
			return err
		}
		logger := cli.NewLogger(opts.Debug)
		streams := httpAdapter.NewStreamManager(httpAdapter.WithStreamLogger(logger))

		eng, closeFn, err := openEngine(cmd, nil, metrics.Hooks(), streams.Hooks())
		if err != nil {
			return err
		}
		defer closeFn()

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		handler := cli.NewServeHandler(eng, streams, reg, logger)
		fmt.Fprintf(cmd.OutOrStdout(), "Serving process %q on :%s\n", eng.Name, port)
		if err := cli.Serve(ctx, ":"+port, handler, logger); err != nil {
			return err
		}
		if sig := ctx.Signal(); sig != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "Stopped gracefully (signal: %v)\n", sig)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
}
