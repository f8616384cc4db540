// Package workspace composes the entity caches with local interactive state:
// the selected project, which dialogs are open, and form drafts.
//
// Every write validates its input before touching the network. Validation
// failures are returned as *FieldError and never produce a notification. A
// failed write leaves its dialog open and its draft untouched so the user can
// correct and resubmit.
package workspace
