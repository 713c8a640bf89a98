// Package health reports whether the documentation cache can do its job.
//
// A Checker reports one component's Status: Healthy, Degraded or Unhealthy.
// An Aggregator runs every registered checker in parallel under a deadline
// and folds the results into a Report, which the HTTP handlers and the CLI
// both render.
//
// The cache itself never fails a lookup; an unusable cache directory only
// turns caching off. CacheRootChecker makes that state visible:
//
//	agg := health.NewAggregator()
//	agg.Register("cache", health.NewCacheRootChecker(diskCache))
//
//	mux := http.NewServeMux()
//	health.RegisterHandlers(mux, agg)
//
// Endpoints: /healthz (liveness), /readyz (readiness), /health (full report)
// and /health/{name} (one checker).
package health
