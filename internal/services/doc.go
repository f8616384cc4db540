// Package services defines shared utilities consumed by the request executor,
// the entity caches, and the orchestration layer.
//
// Key responsibilities:
//   - Context helpers that stamp correlation identifiers and operation names
//     for logging and tracing.
//   - Structured error markers plus the Wrap helper that classify failures
//     (transport vs server vs validation vs cache consistency) so callers can
//     branch with errors.Is instead of string matching.
//
// Use these helpers when wiring new client operations so error semantics and
// observability stay uniform across every call site.
package services
