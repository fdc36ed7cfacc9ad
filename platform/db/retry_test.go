package db

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"koppara_backend/platform/logger"
)

func TestRetrySucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), logger.NewWithWriter("test", io.Discard), "op", 3, time.Millisecond, func() error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	})
	if err != nil || calls != 3 {
		t.Fatalf("expected success on third call, got %v after %d calls", err, calls)
	}
}

func TestRetryWrapsLastError(t *testing.T) {
	errDown := errors.New("connection refused")
	err := Retry(context.Background(), logger.NewWithWriter("test", io.Discard), "database connection", 2, time.Millisecond, func() error {
		return errDown
	})
	if !errors.Is(err, errDown) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestRetryStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	err := Retry(ctx, logger.NewWithWriter("test", io.Discard), "op", 3, time.Millisecond, func() error {
		calls++
		return nil
	})
	if !errors.Is(err, context.Canceled) || calls != 0 {
		t.Fatalf("expected cancellation before any call, got %v after %d calls", err, calls)
	}
}
