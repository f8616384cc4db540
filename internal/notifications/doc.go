// Package notifications delivers transient user-facing messages.
//
// Notifications are a side channel: the request executor emits one Error
// notification per failed call and mutations emit one Success notification
// per completed write. Nothing here is persisted. A Hub fans each
// notification out to the configured sinks (console, optional ntfy push) and
// logs sink failures instead of returning them, so a broken sink can never turn
// into a second user-visible error.
//
// Tests use Recorder to assert on exactly what was emitted.
package notifications
