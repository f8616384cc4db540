package querycache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tscribe/internal/services"
)

var (
	// ErrNotReady is returned when reading the value of an entry that is not Ready.
	ErrNotReady = fmt.Errorf("%w: entry not ready", services.ErrCacheConsistency)
	// ErrTypeMismatch is returned when a key is read with a different type than it was stored with.
	ErrTypeMismatch = fmt.Errorf("%w: entry holds a different type", services.ErrCacheConsistency)
	// ErrDisposed is returned by reads against a disposed store.
	ErrDisposed = fmt.Errorf("%w: store disposed", services.ErrCacheConsistency)

	errSuperseded = errors.New("fetch superseded")
)

// State is the fetch state of an entry.
type State int

const (
	Idle State = iota
	Loading
	Ready
	Error
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Entry is a snapshot of one cache entry.
type Entry[T any] struct {
	Key       Key
	State     State
	FetchedAt time.Time
	Err       error
	// Stale is set once the entry has been invalidated and not yet refetched.
	Stale bool
	value T
}

// Value returns the cached value. It fails unless State is Ready.
func (e Entry[T]) Value() (T, error) {
	if e.State != Ready {
		var zero T
		return zero, fmt.Errorf("%w: %s is %s", ErrNotReady, e.Key, e.State)
	}
	return e.value, nil
}

type fetchFunc func(ctx context.Context) (any, error)

type entry struct {
	key    Key
	policy Policy
	fetch  fetchFunc

	state     State
	value     any
	err       error
	fetchedAt time.Time
	stale     bool

	// gen is the most recently initiated fetch generation; settled is the
	// generation whose outcome is stored.
	gen      uint64
	settled  uint64
	inflight bool

	lastUsed time.Time
	subs     map[uint64]*subscription
}

func snapshot[T any](e *entry) Entry[T] {
	if e == nil {
		return Entry[T]{}
	}
	out := Entry[T]{
		Key:       e.key,
		State:     e.state,
		FetchedAt: e.fetchedAt,
		Err:       e.err,
		Stale:     e.stale,
	}
	if e.state == Ready {
		v, ok := e.value.(T)
		if !ok && e.value != nil {
			out.State = Error
			out.Err = fmt.Errorf("%w: %s", ErrTypeMismatch, e.key)
			return out
		}
		out.value = v
	}
	return out
}
