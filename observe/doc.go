// Package observe provides the logging, metrics and tracing used around
// cached tool calls.
//
// The cache reports every lookup outcome (hit, miss, stale, corrupt,
// disabled), every write and every clear through Metrics, and announces
// degradations such as an unmounted cache directory through Logger. None of
// these calls gate control flow: telemetry is observational only.
package observe
