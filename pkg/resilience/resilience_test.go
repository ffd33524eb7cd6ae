// SPDX-License-Identifier: Apache-2.0
package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	cerrors "github.com/ngx-platform/genesis/pkg/errors"
)

func TestRetrySuccess(t *testing.T) {
	attempts := 0
	config := DefaultRetryConfig().WithInitialDelay(time.Millisecond)
	err := config.Do(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return errors.New("transient error")
		}
		return nil
	})

	if err != nil {
		t.Errorf("expected success, got error: %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestRetryMaxAttemptsExceeded(t *testing.T) {
	attempts := 0
	config := DefaultRetryConfig().WithMaxAttempts(2).WithInitialDelay(time.Millisecond)
	err := config.Do(context.Background(), func() error {
		attempts++
		return errors.New("always fails")
	})

	if err == nil {
		t.Errorf("expected error after max attempts")
	}
	if attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", attempts)
	}
}

func TestRetryNonRecoverable(t *testing.T) {
	attempts := 0
	config := DefaultRetryConfig().WithIsRecoverable(func(err error) bool {
		return false
	})
	err := config.Do(context.Background(), func() error {
		attempts++
		return errors.New("non-recoverable error")
	})

	if err == nil {
		t.Errorf("expected error")
	}
	if attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", attempts)
	}
}

func TestRetryInvalidInputNotRetried(t *testing.T) {
	attempts := 0
	config := DefaultRetryConfig().WithInitialDelay(time.Millisecond)
	err := config.Do(context.Background(), func() error {
		attempts++
		return cerrors.New(cerrors.CodeInvalidInput, "bad agent id", nil)
	})

	if err == nil {
		t.Error("expected error")
	}
	if attempts != 1 {
		t.Errorf("invalid input should not be retried, got %d attempts", attempts)
	}
}

func TestTimeoutExceeded(t *testing.T) {
	err := WithTimeout(context.Background(), TimeoutConfig{Duration: 10 * time.Millisecond}, func(ctx context.Context) error {
		select {
		case <-time.After(time.Second):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})

	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !cerrors.IsTimeout(err) {
		t.Errorf("expected timeout code, got %v", err)
	}
}

func TestTimeoutDisabled(t *testing.T) {
	err := WithTimeout(context.Background(), TimeoutConfig{}, func(ctx context.Context) error {
		return nil
	})
	if err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
}

func TestTimeoutResult(t *testing.T) {
	value, err := WithTimeoutResult(context.Background(), TimeoutConfig{Duration: time.Second}, func(ctx context.Context) (interface{}, error) {
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != "ok" {
		t.Errorf("expected ok, got %v", value)
	}
}

func TestStaticFallback(t *testing.T) {
	value, err := WithFallback(context.Background(), func() (interface{}, error) {
		return nil, errors.New("primary failed")
	}, &StaticFallback{Value: "default"})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != "default" {
		t.Errorf("expected default, got %v", value)
	}
}

func TestFallbackNotUsedOnSuccess(t *testing.T) {
	value, err := WithFallback(context.Background(), func() (interface{}, error) {
		return "primary", nil
	}, &StaticFallback{Value: "default"})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != "primary" {
		t.Errorf("expected primary result, got %v", value)
	}
}
