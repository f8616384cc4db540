// Package preflight provides readiness checks for the backend and the local
// paths tscribe writes to.
//
// The CLI "tscribe doctor" command runs RunAll and renders each Result.
// Checks never notify: a failed check is reported in its Detail.
package preflight
