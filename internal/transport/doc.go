// Package transport performs every backend HTTP call.
//
// Client owns the single configured *http.Client, base URL, and default
// headers. Executor is the one chokepoint every JSON call goes through: it
// decodes the success payload, normalizes failures into *Error, emits exactly
// one Error notification per failed call, logs one line per call, and records
// an OpenTelemetry client span. There are no retries here.
package transport
