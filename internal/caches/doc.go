// Package caches defines the per-domain entity caches: queries and mutations
// over the transcripts, prompts, projects, and settings key families.
//
// Every mutation declares its invalidations through the Invalidations table so
// the full dependency graph between writes and cached reads lives in one
// place. Caches never talk to HTTP directly; they hand api.Request values to a
// Doer (the transport executor).
package caches
