package api

import "context"

// Task runs one API call off the caller's goroutine. Exactly one of the
// value or the error is set once Done is closed; Done closes whether the
// call succeeds or fails, so waiters never leak.
type Task[T any] struct {
	value T
	err   error
	done  chan struct{}
}

// Start launches fn in its own goroutine and returns the task handle.
func Start[T any](fn func() (T, error)) *Task[T] {
	t := &Task[T]{done: make(chan struct{})}
	go func() {
		defer close(t.done)
		t.value, t.err = fn()
	}()
	return t
}

// Done is closed when the call has finished, successfully or not.
func (t *Task[T]) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the call finishes or ctx is cancelled. On cancellation
// the underlying call keeps running to completion in the background, but
// the caller stops waiting.
func (t *Task[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-t.done:
		return t.value, t.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
