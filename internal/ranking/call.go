package ranking

import (
	"context"
	"time"
)

type callResult[T any] struct {
	value T
	err   error
}

// callWithTimeout runs fn under its own deadline and stops waiting as soon as the
// deadline passes, even if fn ignores its context. The result channel is
// buffered so an abandoned call can still finish and exit.
func callWithTimeout[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan callResult[T], 1)
	go func() {
		value, err := fn(callCtx)
		done <- callResult[T]{value: value, err: err}
	}()

	select {
	case res := <-done:
		return res.value, res.err
	case <-callCtx.Done():
		var zero T
		return zero, callCtx.Err()
	}
}
