package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"
)

func fastConfig(maxRetries int) Config {
	return Config{
		MaxRetries:   maxRetries,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
	}
}

// TestExecuteWithRetry_Success verifies basic success case returns nil on first attempt.
func TestExecuteWithRetry_Success(t *testing.T) {
	calls := 0
	err := ExecuteWithRetry(context.Background(), fastConfig(3), func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("expected nil error, got: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

// TestExecuteWithRetry_FatalError verifies no retry on fatal errors.
func TestExecuteWithRetry_FatalError(t *testing.T) {
	calls := 0
	err := ExecuteWithRetry(context.Background(), fastConfig(5), func() error {
		calls++
		return &StatusError{StatusCode: 404, Method: "GET", URL: "/files/x"}
	})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if calls != 1 {
		t.Errorf("expected 1 call (no retry on fatal), got %d", calls)
	}
}

// TestExecuteWithRetry_CredentialError verifies an expired token is not retried.
func TestExecuteWithRetry_CredentialError(t *testing.T) {
	calls := 0
	err := ExecuteWithRetry(context.Background(), fastConfig(5), func() error {
		calls++
		return &StatusError{StatusCode: 401, Method: "GET", URL: "/folders/"}
	})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

// TestExecuteWithRetry_RetryableThenSuccess verifies server errors are retried.
func TestExecuteWithRetry_RetryableThenSuccess(t *testing.T) {
	calls := 0
	var retried []int
	cfg := fastConfig(4)
	cfg.OnRetry = func(attempt int, err error, errorType ErrorType) {
		retried = append(retried, attempt)
		if errorType != ErrorTypeRetryable {
			t.Errorf("expected retryable, got %s", ErrorTypeName(errorType))
		}
	}

	err := ExecuteWithRetry(context.Background(), cfg, func() error {
		calls++
		if calls < 3 {
			return &StatusError{StatusCode: 503, Method: "GET", URL: "/files/x"}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
	if len(retried) != 2 {
		t.Errorf("expected 2 OnRetry callbacks, got %v", retried)
	}
}

// TestExecuteWithRetry_Exhausted verifies the last error is wrapped after MaxRetries.
func TestExecuteWithRetry_Exhausted(t *testing.T) {
	calls := 0
	sentinel := fmt.Errorf("connection reset by peer")
	err := ExecuteWithRetry(context.Background(), fastConfig(3), func() error {
		calls++
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected wrapped sentinel, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

// TestExecuteWithRetry_ContextCancelledDuringSleep verifies retry returns quickly when context cancelled.
func TestExecuteWithRetry_ContextCancelledDuringSleep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := Config{
		MaxRetries:   5,
		InitialDelay: 5 * time.Second, // Long backoff to ensure we'd be sleeping
		MaxDelay:     30 * time.Second,
	}

	calls := 0
	start := time.Now()

	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	err := ExecuteWithRetry(ctx, cfg, func() error {
		calls++
		return fmt.Errorf("connection reset")
	})

	elapsed := time.Since(start)

	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if elapsed > 1*time.Second {
		t.Errorf("expected quick return after context cancel, but took %v", elapsed)
	}
	if calls < 1 {
		t.Errorf("expected at least 1 call, got %d", calls)
	}
}

// TestExecuteWithRetry_InsufficientDeadline verifies early exit when deadline < backoff.
func TestExecuteWithRetry_InsufficientDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	cfg := Config{
		MaxRetries:   5,
		InitialDelay: 5 * time.Second,
		MaxDelay:     30 * time.Second,
	}

	start := time.Now()
	err := ExecuteWithRetry(ctx, cfg, func() error {
		return fmt.Errorf("timeout")
	})

	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if elapsed := time.Since(start); elapsed > 1*time.Second {
		t.Errorf("expected quick return due to insufficient deadline, but took %v", elapsed)
	}
}

type timeoutError struct{}

func (timeoutError) Error() string   { return "dial tcp: something slow" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

var _ net.Error = timeoutError{}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"nil", nil, ErrorTypeSuccess},
		{"canceled", context.Canceled, ErrorTypeFatal},
		{"wrapped deadline", fmt.Errorf("open: %w", context.DeadlineExceeded), ErrorTypeFatal},
		{"401", &StatusError{StatusCode: 401}, ErrorTypeCredential},
		{"403", &StatusError{StatusCode: 403}, ErrorTypeCredential},
		{"404", &StatusError{StatusCode: 404}, ErrorTypeFatal},
		{"429", &StatusError{StatusCode: 429}, ErrorTypeRetryable},
		{"502 wrapped", fmt.Errorf("stream: %w", &StatusError{StatusCode: 502}), ErrorTypeRetryable},
		{"net timeout", timeoutError{}, ErrorTypeNetwork},
		{"connection reset", errors.New("read: connection reset by peer"), ErrorTypeNetwork},
		{"unexpected eof", errors.New("unexpected EOF"), ErrorTypeNetwork},
		{"expired token", errors.New("token expired"), ErrorTypeCredential},
		{"unknown", errors.New("something odd"), ErrorTypeFatal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyError(tt.err); got != tt.want {
				t.Errorf("ClassifyError(%v) = %s, want %s", tt.err, ErrorTypeName(got), ErrorTypeName(tt.want))
			}
		})
	}
}

func TestCalculateBackoff(t *testing.T) {
	if got := CalculateBackoff(0, time.Second, time.Minute); got != 0 {
		t.Errorf("attempt 0 should not wait, got %v", got)
	}
	for attempt := 1; attempt < 10; attempt++ {
		got := CalculateBackoff(attempt, 100*time.Millisecond, time.Second)
		if got < 0 || got > time.Second {
			t.Errorf("attempt %d: backoff %v outside [0, 1s]", attempt, got)
		}
	}
	if got := CalculateBackoff(3, time.Second, 0); got != 0 {
		t.Errorf("zero max delay should not wait, got %v", got)
	}
}
