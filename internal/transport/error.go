package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"tscribe/internal/services"
)

// Error is the normalized failure of one backend call.
type Error struct {
	Operation string
	// HTTPStatus is zero when no response was received.
	HTTPStatus int
	// ServerMessage is the backend-provided message, if any.
	ServerMessage string
	// Message is what the user is shown.
	Message string
	Timeout bool
	cause   error
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes the classification marker alongside the cause so callers can
// use errors.Is(err, services.ErrServer) and friends.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 3)
	if e.HTTPStatus > 0 {
		errs = append(errs, services.ErrServer)
	} else {
		errs = append(errs, services.ErrTransport)
	}
	if e.Timeout {
		errs = append(errs, services.ErrTimeout)
	}
	if e.cause != nil {
		errs = append(errs, e.cause)
	}
	return errs
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// serverMessage extracts the backend's message, preferring "message" over "error".
func serverMessage(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return ""
	}
	var parsed errorBody
	if err := json.Unmarshal([]byte(trimmed), &parsed); err != nil {
		return ""
	}
	if msg := strings.TrimSpace(parsed.Message); msg != "" {
		return msg
	}
	return strings.TrimSpace(parsed.Error)
}

func statusError(op string, status int, body []byte) *Error {
	msg := serverMessage(body)
	display := msg
	if display == "" {
		display = fmt.Sprintf("request failed with status code %d", status)
	}
	return &Error{
		Operation:     op,
		HTTPStatus:    status,
		ServerMessage: msg,
		Message:       display,
	}
}

// networkError keeps the raw transport error as the cause; the message
// stays short because it is shown to the user as is.
func networkError(op string, err error) *Error {
	timeout := isTimeout(err)
	msg := "backend unreachable"
	switch {
	case timeout:
		msg = "request timed out"
	case errors.Is(err, context.Canceled):
		msg = "request canceled"
	}
	return &Error{
		Operation: op,
		Message:   msg,
		Timeout:   timeout,
		cause:     err,
	}
}

// Cause returns the underlying transport or decode error, if any.
func (e *Error) Cause() error {
	return e.cause
}

func decodeError(op string, status int, err error) *Error {
	return &Error{
		Operation:  op,
		HTTPStatus: status,
		Message:    fmt.Sprintf("decode response: %v", err),
		cause:      err,
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// CheckResponse returns the normalized error for a non-2xx response and nil
// otherwise. The body is consumed only on failure.
func CheckResponse(op string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	return statusError(op, resp.StatusCode, body)
}

// Normalize converts a failed transport call into *Error.
func Normalize(op string, err error) *Error {
	var normalized *Error
	if errors.As(err, &normalized) {
		return normalized
	}
	return networkError(op, err)
}
