// Package config resolves process settings for the documentation cache.
//
// Settings are read once at process start from, in increasing precedence:
// built-in defaults, an optional YAML file, an optional .env file and the
// process environment. The resolved Settings are passed to the cache and the
// observer at construction time; nothing re-reads configuration afterwards.
//
// Recognized environment variables:
//
//	CACHE_DIR          cache root directory (default /cache)
//	CACHE_TTL          entry lifetime in whole days (default 1)
//	CACHE_ERRORS       also cache results flagged isError (default false)
//	LOG_LEVEL          debug|info|warn|error (default info)
//	OTEL_SERVICE_NAME  service name on telemetry (default docscache)
//	TRACING_EXPORTER   otlp|stdout|none (default none)
//	METRICS_EXPORTER   otlp|prometheus|stdout|none (default none)
//	LISTEN_ADDR        address for the serve command (default :8080)
package config
