// Package drafts persists unsaved form input.
//
// Drafts are client-only state: they never come from the backend and no
// server mutation invalidates them. The SQLite store keeps them across CLI
// invocations; Memory serves tests and the drafts.enabled = false setting.
// Cache layers either backend under the querycache "drafts" key family with
// the 24h-fresh, never-collected client state policy.
package drafts
