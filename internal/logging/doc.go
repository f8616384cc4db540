// Package logging assembles structured slog loggers and formatting helpers used
// across tscribe.
//
// It owns the console/JSON handlers, centralizes level and output plumbing,
// and exposes context-aware helpers so the request executor and caches can
// tag log lines with correlation IDs and operation names. The package also
// provides a no-op logger for tests and wiring code that cannot fail.
package logging
