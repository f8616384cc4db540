package querycache

import (
	"context"
	"fmt"
)

// Query binds a key to the function that fetches it.
type Query[T any] struct {
	Key    Key
	Fetch  func(ctx context.Context) (T, error)
	Policy Policy
}

func (q Query[T]) erased() fetchFunc {
	return func(ctx context.Context) (any, error) {
		return q.Fetch(ctx)
	}
}

// Use returns the current entry for q without blocking, starting a fetch when
// the entry is absent, invalidated, or past its StaleTime. An entry in the
// Error state is returned as is; Fetch retries it.
func Use[T any](ctx context.Context, s *Store, q Query[T]) Entry[T] {
	e, start := s.use(ctx, q.Key, q.Policy, q.erased())
	if e == nil {
		return Entry[T]{Key: q.Key, State: Error, Err: ErrDisposed}
	}
	start()
	return snapshot[T](e)
}

// Fetch returns the value for q, waiting for an in-flight fetch or starting
// one. Cancelling ctx stops the wait, not the fetch.
func Fetch[T any](ctx context.Context, s *Store, q Query[T]) (T, error) {
	var zero T
	value, err := s.read(ctx, q.Key, q.Policy, q.erased())
	if err != nil {
		return zero, err
	}
	if value == nil {
		return zero, nil
	}
	typed, ok := value.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s", ErrTypeMismatch, q.Key)
	}
	return typed, nil
}

// Peek returns the current entry for key without fetching.
func Peek[T any](s *Store, key Key) Entry[T] {
	return snapshot[T](s.peek(key))
}

// Set stores value as the Ready value of key, superseding any in-flight fetch.
func Set[T any](s *Store, key Key, policy Policy, value T) {
	s.set(key, policy, value)
}
