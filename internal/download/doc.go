// Package download fetches the backend's file endpoints (project transcripts
// and audio) straight to disk.
//
// These endpoints return raw bytes rather than JSON, so they bypass the
// request executor and emit no notifications: callers get the error and
// decide how to report it. Writes go to a temporary file that is renamed into
// place while holding a file lock next to the target, so concurrent
// invocations never interleave partial files.
package download
