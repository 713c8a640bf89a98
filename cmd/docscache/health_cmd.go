package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/docscache/health"
)

func newAggregator(a *app) *health.Aggregator {
	agg := health.NewAggregator()
	agg.Register("cache", health.NewCacheRootChecker(a.cache))
	return agg
}

func newHealthCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Run the health checks once and print the report",
		Long: `Run every health check once and print the report as JSON.

Exits non-zero when the overall status is unhealthy, for example when the
cache directory is not mounted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rep := newAggregator(a).Report(cmd.Context())

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(rep); err != nil {
				return err
			}
			if rep.Status == health.StatusUnhealthy {
				return fmt.Errorf("status %s", rep.Status)
			}
			return nil
		},
	}
}
