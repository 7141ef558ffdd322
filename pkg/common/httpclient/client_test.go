package httpclient

import (
	"context"
	"errors"
	"syscall"
	"testing"
	"time"
)

func TestRetryStopsOnPermanentError(t *testing.T) {
	sentinel := errors.New("record not found")
	var calls int

	err := Retry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		return Permanent(sentinel)
	})
	if err != sentinel {
		t.Fatalf("expected the unwrapped sentinel, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("permanent errors must stop the loop, fn ran %d times", calls)
	}
}

func TestRetrySingleAttemptUnwrapsPermanent(t *testing.T) {
	sentinel := errors.New("rejected")
	err := Retry(context.Background(), 1, time.Millisecond, func() error {
		return Permanent(sentinel)
	})
	if err != sentinel {
		t.Fatalf("expected the unwrapped sentinel, got %v", err)
	}
}

func TestRetryRetriesTransientErrors(t *testing.T) {
	var calls int
	err := Retry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestRetryReturnsLastErrorWhenExhausted(t *testing.T) {
	last := errors.New("still failing")
	var calls int
	err := Retry(context.Background(), 2, time.Millisecond, func() error {
		calls++
		return last
	})
	if err != last {
		t.Fatalf("expected the last error, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls)
	}
}

func TestPermanentUnwraps(t *testing.T) {
	sentinel := errors.New("conflict")
	if !errors.Is(Permanent(sentinel), sentinel) {
		t.Fatal("Permanent must unwrap to the original error")
	}
}

func TestIsRetriable(t *testing.T) {
	if !IsRetriable(syscall.ECONNREFUSED) {
		t.Fatal("connection refused is worth another attempt")
	}
	if !IsRetriable(syscall.ECONNRESET) {
		t.Fatal("connection reset is worth another attempt")
	}
	if !IsRetriable(context.DeadlineExceeded) {
		t.Fatal("deadline exceeded is worth another attempt")
	}
	if IsRetriable(errors.New("boom")) {
		t.Fatal("a plain error is not retriable")
	}
}
