// Package api defines the backend's wire-format types and the request
// descriptors for every backend operation.
//
// Each operation is a pure function returning a Request{Method, Path, Query,
// Body, Download}. Functions never perform I/O and never branch on anything
// but their arguments; executing a request, normalizing its errors, and
// notifying the user belong to the transport package.
//
// # Key Types
//
// Request: method, path relative to the configured base URL, optional body.
// Download requests point at non-JSON endpoints and are fetched out-of-band.
//
// Transcript, Prompt, Project, ModelOption: list payloads.
//
// PromptData: the five structured prompt fields shared by processing and
// prompt templates.
//
// # Design Notes
//
// DTOs use the backend's camelCase JSON tags, except prompt list entries which
// the backend emits in snake_case. Identifiers interpolated into paths are
// escaped with url.PathEscape.
package api
