package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/jonwraymond/docscache/health"
	"github.com/jonwraymond/docscache/observe"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve health and metrics endpoints",
		Long: `Serve /healthz, /readyz, /health, /health/{name} and /metrics.

/metrics exposes the Prometheus registry; set METRICS_EXPORTER=prometheus
for the cache counters to appear there.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("listen") {
				a.settings.ListenAddr = addr
			}
			srv := &http.Server{
				Addr:              a.settings.ListenAddr,
				Handler:           newServeMux(a),
				ReadHeaderTimeout: 5 * time.Second,
			}
			return runServer(cmd.Context(), srv, a.logger)
		},
	}

	cmd.Flags().StringVar(&addr, "listen", "", "listen address (overrides LISTEN_ADDR)")
	return cmd
}

func newServeMux(a *app) *http.ServeMux {
	mux := http.NewServeMux()
	health.RegisterHandlers(mux, newAggregator(a))
	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}

// runServer serves until ctx is done, then shuts down gracefully.
func runServer(ctx context.Context, srv *http.Server, logger observe.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "listening", observe.Field{Key: "addr", Value: srv.Addr})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info(context.Background(), "server stopped")
	return nil
}
