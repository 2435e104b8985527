package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"mercator-hq/tabula/pkg/artifact"
	"mercator-hq/tabula/pkg/cli"
	"mercator-hq/tabula/pkg/mcpserver"
	"mercator-hq/tabula/pkg/telemetry/health"
)

var serveFlags struct {
	listenAddress string
	noRetention   bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the export tools over MCP stdio",
	Long: `Serve export_query_result, list_saved_files and read_artifact to an MCP
client over stdin/stdout. Logs go to stderr.

When telemetry.metrics.listen_address is set, an HTTP listener serves
Prometheus metrics, /health, /ready and /version. When retention is
enabled, old versions are pruned on the configured schedule.

Examples:
  # Serve with the default config
  tabula serve

  # Serve metrics and health on port 9090
  tabula serve --listen 127.0.0.1:9090`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveFlags.listenAddress, "listen", "l", "", "override the metrics and health listen address")
	serveCmd.Flags().BoolVar(&serveFlags.noRetention, "no-retention", false, "do not start the retention scheduler")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	if serveFlags.listenAddress != "" {
		a.cfg.Telemetry.Metrics.ListenAddress = serveFlags.listenAddress
	}

	if a.cfg.Retention.Enabled && !serveFlags.noRetention {
		pruner, err := a.pruner(retentionConfig(&a.cfg.Retention))
		if err != nil {
			a.logger.Warn("retention disabled", "error", err)
		} else if err := pruner.Start(ctx); err != nil {
			a.logger.Warn("failed to start retention scheduler", "error", err)
		} else {
			defer pruner.Stop()
			if next := pruner.NextPruning(); next != nil {
				a.logger.Info("retention scheduler started", "next_pruning", next)
			}
		}
	}

	errChan := make(chan error, 2)

	var httpServer *http.Server
	if addr := a.cfg.Telemetry.Metrics.ListenAddress; addr != "" {
		httpServer = &http.Server{
			Addr:              addr,
			Handler:           a.telemetryMux(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			a.logger.Info("starting telemetry listener", "address", addr)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- fmt.Errorf("telemetry listener: %w", err)
			}
		}()
	}

	server := mcpserver.New(
		mcpserver.Config{Name: a.cfg.MCP.Name, Version: Version},
		a.exporter,
		artifact.NewStoreFetcher(a.store),
	)
	go func() {
		errChan <- server.Run(ctx, &mcp.StdioTransport{})
	}()

	var runErr error
	select {
	case runErr = <-errChan:
	case <-ctx.Done():
		a.logger.Info("shutting down", "reason", context.Cause(ctx))
	}
	cancel()

	if httpServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("telemetry listener shutdown failed", "error", err)
		}
	}

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return cli.NewCommandError("serve", runErr)
	}
	return nil
}

// telemetryMux serves metrics and the health endpoints. Readiness pings the
// store when the backend supports it.
func (a *app) telemetryMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle(a.cfg.Telemetry.Metrics.Path, a.metrics.Handler())

	checker := health.New(0)
	if pinger, ok := a.store.(artifact.Pinger); ok {
		checker.RegisterCheck("store", pinger.Ping)
	}
	health.Register(mux, checker, Version, GitCommit, BuildDate)
	return mux
}
