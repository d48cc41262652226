package service

import (
	"context"
	"time"
)

// fetchWithTimeout races op against a timer. When the timer wins or op fails,
// the fallback value is returned together with the cause; a late result from
// the losing branch is dropped via the buffered channel and must be
// side-effect free.
func fetchWithTimeout[T any](ctx context.Context, timeout time.Duration, fallback T, op func(context.Context) (T, error)) (T, error) {
	opCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		value T
		err   error
	}
	done := make(chan outcome, 1)

	go func() {
		value, err := op(opCtx)
		done <- outcome{value: value, err: err}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			return fallback, out.err
		}
		return out.value, nil
	case <-opCtx.Done():
		return fallback, opCtx.Err()
	}
}
