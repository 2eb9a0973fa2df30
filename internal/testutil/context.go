package testutil

import (
	"context"
	"testing"
	"time"
)

// ContextWithTimeout создаёт context с timeout и автоматически отменяет его при завершении теста.
func ContextWithTimeout(t testing.TB, duration time.Duration) context.Context {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), duration)
	t.Cleanup(cancel)

	return ctx
}

// RunBackground запускает fn в отдельной горутине с отменяемым context.
// stop отменяет context и ждёт завершения fn, возвращая её ошибку.
func RunBackground(t testing.TB, fn func(ctx context.Context) error) (stop func() error) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- fn(ctx)
	}()

	var stopped bool
	var result error
	stop = func() error {
		if stopped {
			return result
		}
		stopped = true
		cancel()
		select {
		case result = <-done:
		case <-time.After(5 * time.Second):
			t.Errorf("background function did not stop within 5s")
		}
		return result
	}
	t.Cleanup(func() { _ = stop() })
	return stop
}
