package querycache

import (
	"context"
	"fmt"

	"tscribe/internal/logging"
	"tscribe/internal/notifications"
)

// MutationError is the typed rejection of a failed mutation.
type MutationError struct {
	Mutation string
	Err      error
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Mutation, e.Err)
}

func (e *MutationError) Unwrap() error {
	return e.Err
}

// Mutation is a write against the backend with declared invalidations.
type Mutation[In, Out any] struct {
	Name  string
	Store *Store
	Run   func(ctx context.Context, in In) (Out, error)
	// Invalidates lists the keys a successful run affects.
	Invalidates    func(in In, out Out) []Key
	SuccessMessage string
}

// Do runs the mutation and waits for it. Cancelling ctx stops the wait only.
func (m *Mutation[In, Out]) Do(ctx context.Context, in In) (Out, error) {
	return m.Start(ctx, in).Wait(ctx)
}

// Start dispatches the mutation and returns its pending operation.
func (m *Mutation[In, Out]) Start(ctx context.Context, in In) *Operation[Out] {
	op := newOperation[Out]()
	runCtx := context.WithoutCancel(ctx)
	go func() {
		out, err := m.run(runCtx, in)
		op.finish(out, err)
	}()
	return op
}

func (m *Mutation[In, Out]) run(ctx context.Context, in In) (Out, error) {
	out, err := m.Run(ctx, in)
	if err != nil {
		var zero Out
		return zero, &MutationError{Mutation: m.Name, Err: err}
	}

	var keys []Key
	if m.Invalidates != nil {
		keys = m.Invalidates(in, out)
	}
	m.Store.Invalidate(keys...)

	m.Store.logger.Debug("mutation succeeded",
		logging.String(logging.FieldOperation, m.Name),
		logging.Int("invalidated", len(keys)),
	)
	if m.SuccessMessage != "" {
		m.Store.notify(ctx, notifications.Notification{Kind: notifications.Success, Text: m.SuccessMessage})
	}
	return out, nil
}
