package api

import (
	"net/http"
	"net/url"
)

// Deadline selects which client timeout bounds a call.
type Deadline int

const (
	// DeadlineDefault applies api.timeout_seconds.
	DeadlineDefault Deadline = iota
	// DeadlineProcessing applies api.process_timeout_seconds. The backend runs
	// the transcript, LLM and speech pipeline before it replies.
	DeadlineProcessing
	// DeadlineNone leaves the caller's context in charge. Download bodies may
	// stream for longer than any fixed timeout.
	DeadlineNone
)

// Request describes one backend call.
type Request struct {
	// Operation names the call for logs and traces ("projects.delete").
	Operation string
	Method    string
	// Path is relative to the configured base URL and already escaped.
	Path  string
	Query url.Values
	Body  any
	// Download marks non-JSON endpoints.
	Download bool
	Deadline Deadline
}

func get(op, path string) Request {
	return Request{Operation: op, Method: http.MethodGet, Path: path}
}

func post(op, path string, body any) Request {
	return Request{Operation: op, Method: http.MethodPost, Path: path, Body: body}
}

func del(op, path string) Request {
	return Request{Operation: op, Method: http.MethodDelete, Path: path}
}

func segment(id string) string {
	return url.PathEscape(id)
}
