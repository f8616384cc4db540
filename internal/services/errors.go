package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTransport marks failures where the request never produced an HTTP
	// status (connection refused, DNS failure, timeout).
	ErrTransport = errors.New("transport error")
	// ErrServer marks non-2xx responses from the backend.
	ErrServer = errors.New("server error")
	// ErrValidation marks caller-side precondition failures detected before any
	// network call.
	ErrValidation = errors.New("validation error")
	// ErrCacheConsistency marks reads of a cache entry that is not Ready.
	ErrCacheConsistency = errors.New("cache consistency error")
	ErrConfiguration    = errors.New("configuration error")
	ErrNotFound         = errors.New("not found")
	ErrTimeout          = errors.New("timeout")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransport
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsUserFacing reports whether err was already surfaced to the user through a
// notification by the request executor.
func IsUserFacing(err error) bool {
	return errors.Is(err, ErrTransport) || errors.Is(err, ErrServer)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "client failure"
	}
	return strings.Join(parts, ": ")
}
