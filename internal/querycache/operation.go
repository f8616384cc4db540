package querycache

import (
	"context"
	"errors"
	"sync/atomic"
)

// ErrPending is returned by Operation.Result before the operation settles.
var ErrPending = errors.New("operation pending")

// OpStatus tracks a mutation from dispatch to its terminal state.
type OpStatus int32

const (
	OpIdle OpStatus = iota
	OpPending
	OpSucceeded
	OpFailed
)

func (s OpStatus) String() string {
	switch s {
	case OpPending:
		return "pending"
	case OpSucceeded:
		return "succeeded"
	case OpFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Operation is an in-flight mutation. It settles exactly once.
type Operation[Out any] struct {
	status atomic.Int32
	done   chan struct{}
	out    Out
	err    error
}

func newOperation[Out any]() *Operation[Out] {
	op := &Operation[Out]{done: make(chan struct{})}
	op.status.Store(int32(OpPending))
	return op
}

func (o *Operation[Out]) finish(out Out, err error) {
	o.out, o.err = out, err
	if err != nil {
		o.status.Store(int32(OpFailed))
	} else {
		o.status.Store(int32(OpSucceeded))
	}
	close(o.done)
}

// Status reports where the operation is in its lifecycle.
func (o *Operation[Out]) Status() OpStatus {
	return OpStatus(o.status.Load())
}

// Done is closed once the operation settles.
func (o *Operation[Out]) Done() <-chan struct{} {
	return o.done
}

// Wait blocks until the operation settles or ctx is done. Cancelling ctx does
// not cancel the mutation.
func (o *Operation[Out]) Wait(ctx context.Context) (Out, error) {
	select {
	case <-o.done:
		return o.out, o.err
	case <-ctx.Done():
		var zero Out
		return zero, ctx.Err()
	}
}

// Result returns the outcome without blocking.
func (o *Operation[Out]) Result() (Out, error) {
	select {
	case <-o.done:
		return o.out, o.err
	default:
		var zero Out
		return zero, ErrPending
	}
}
