package retry

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	errs "vscoscraper/pkg/errors"
)

func TestExponentialBackoff(t *testing.T) {
	backoff := &ExponentialBackoff{
		BaseDelay:    100 * time.Millisecond,
		MaxDelay:     1 * time.Second,
		Multiplier:   2.0,
		JitterFactor: 0.0, // No jitter for predictable testing
	}

	tests := []struct {
		attempt     int
		expected    time.Duration
		description string
	}{
		{1, 100 * time.Millisecond, "First attempt"},
		{2, 200 * time.Millisecond, "Second attempt"},
		{3, 400 * time.Millisecond, "Third attempt"},
		{4, 800 * time.Millisecond, "Fourth attempt"},
		{5, 1 * time.Second, "Fifth attempt (capped at max)"},
		{6, 1 * time.Second, "Sixth attempt (still capped)"},
	}

	for _, test := range tests {
		t.Run(test.description, func(t *testing.T) {
			delay := backoff.NextDelay(test.attempt)
			if delay != test.expected {
				t.Errorf("Expected delay %v, got %v", test.expected, delay)
			}
		})
	}
}

func TestExponentialBackoffDoubling(t *testing.T) {
	// The download retry schedule: 2s, 4s, 8s, ...
	backoff := &ExponentialBackoff{
		BaseDelay:    2 * time.Second,
		MaxDelay:     5 * time.Minute,
		Multiplier:   2.0,
		JitterFactor: 0.0,
	}

	if got := backoff.NextDelay(1); got != 2*time.Second {
		t.Errorf("Expected 2s after first failure, got %v", got)
	}
	if got := backoff.NextDelay(2); got != 4*time.Second {
		t.Errorf("Expected 4s after second failure, got %v", got)
	}
	if got := backoff.NextDelay(3); got != 8*time.Second {
		t.Errorf("Expected 8s after third failure, got %v", got)
	}
}

func TestExponentialBackoffWithJitter(t *testing.T) {
	backoff := &ExponentialBackoff{
		BaseDelay:    100 * time.Millisecond,
		MaxDelay:     1 * time.Second,
		Multiplier:   2.0,
		JitterFactor: 0.3,
	}

	// Test that jitter adds randomness
	delays := make(map[time.Duration]bool)
	for i := 0; i < 10; i++ {
		delay := backoff.NextDelay(2)
		delays[delay] = true
	}

	// With jitter, we should get different delays
	if len(delays) < 2 {
		t.Error("Expected multiple different delays with jitter, but got consistent delays")
	}
}

func TestRetryWithSuccess(t *testing.T) {
	attempts := 0
	op := func() error {
		attempts++
		if attempts < 3 {
			return errors.New("temporary error")
		}
		return nil
	}

	cfg := &Config{
		MaxAttempts: 5,
		Backoff:     &ConstantBackoff{Delay: 10 * time.Millisecond},
		RetryIf:     RetryAll,
		Context:     context.Background(),
	}

	err := Do(op, cfg)
	if err != nil {
		t.Errorf("Expected success after retries, got error: %v", err)
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts)
	}
}

func TestRetryWithMaxAttemptsExceeded(t *testing.T) {
	attempts := 0
	op := func() error {
		attempts++
		return errors.New("persistent error")
	}

	cfg := &Config{
		MaxAttempts: 3,
		Backoff:     &ConstantBackoff{Delay: 10 * time.Millisecond},
		RetryIf:     RetryAll,
		Context:     context.Background(),
	}

	err := Do(op, cfg)
	if err == nil {
		t.Fatal("Expected error when max attempts exceeded")
	}
	if attempts != 3 {
		t.Errorf("Expected exactly 3 attempts, got %d", attempts)
	}
	// The final error carries the last attempt's failure
	if !strings.Contains(err.Error(), "persistent error") {
		t.Errorf("Expected exhaustion error to wrap the last error, got %q", err.Error())
	}
}

func TestRetryDoesNotSleepAfterFinalAttempt(t *testing.T) {
	op := func() error {
		return errors.New("always fails")
	}

	cfg := &Config{
		MaxAttempts: 3,
		Backoff:     &ConstantBackoff{Delay: 50 * time.Millisecond},
		RetryIf:     RetryAll,
		Context:     context.Background(),
	}

	start := time.Now()
	_ = Do(op, cfg)
	elapsed := time.Since(start)

	// Two sleeps between three attempts, never a third
	if elapsed < 100*time.Millisecond {
		t.Errorf("Expected at least 100ms of backoff, got %v", elapsed)
	}
	if elapsed > 140*time.Millisecond {
		t.Errorf("Expected no sleep after the final attempt, elapsed %v", elapsed)
	}
}

func TestRetryWithNonRetryableError(t *testing.T) {
	attempts := 0
	notFound := &errs.Error{
		Type:    errs.ErrorTypeNotFound,
		Message: "media not found",
		Code:    404,
	}

	op := func() error {
		attempts++
		return notFound
	}

	cfg := &Config{
		MaxAttempts: 5,
		Backoff:     &ConstantBackoff{Delay: 10 * time.Millisecond},
		RetryIf:     DefaultRetryIf,
		Context:     context.Background(),
	}

	err := Do(op, cfg)
	if err != notFound {
		t.Errorf("Expected not-found error, got: %v", err)
	}
	if attempts != 1 {
		t.Errorf("Expected 1 attempt (no retry for not-found), got %d", attempts)
	}
}

func TestDefaultRetryIfNavigationIsTransient(t *testing.T) {
	navErr := &errs.Error{
		Type:    errs.ErrorTypeNavigation,
		Message: "navigation timed out",
	}
	if !DefaultRetryIf(navErr) {
		t.Error("Expected navigation errors to be retryable")
	}

	extractErr := &errs.Error{
		Type:    errs.ErrorTypeExtraction,
		Message: "no image found",
	}
	if DefaultRetryIf(extractErr) {
		t.Error("Expected extraction errors to not be retryable by default")
	}
}

func TestRetryWithContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0

	op := func() error {
		attempts++
		if attempts == 2 {
			cancel() // Cancel after second attempt
		}
		return errors.New("error")
	}

	cfg := &Config{
		MaxAttempts: 5,
		Backoff:     &ConstantBackoff{Delay: 100 * time.Millisecond},
		RetryIf:     RetryAll,
		Context:     ctx,
	}

	err := Do(op, cfg)
	if err == nil {
		t.Error("Expected error when context cancelled")
	}
	if attempts > 3 {
		t.Errorf("Expected at most 3 attempts before cancellation, got %d", attempts)
	}
}

func TestDoWithResult(t *testing.T) {
	attempts := 0
	op := func() (string, error) {
		attempts++
		if attempts < 2 {
			return "", errors.New("temporary error")
		}
		return "success", nil
	}

	cfg := &Config{
		MaxAttempts: 3,
		Backoff:     &ConstantBackoff{Delay: 10 * time.Millisecond},
		RetryIf:     RetryAll,
		Context:     context.Background(),
	}

	result, err := DoWithResult(op, cfg)
	if err != nil {
		t.Errorf("Expected success, got error: %v", err)
	}
	if result != "success" {
		t.Errorf("Expected 'success', got '%s'", result)
	}
	if attempts != 2 {
		t.Errorf("Expected 2 attempts, got %d", attempts)
	}
}

func TestRetrierBuilders(t *testing.T) {
	base := NewRetrier(&Config{
		MaxAttempts: 2,
		Backoff:     &ConstantBackoff{Delay: time.Millisecond},
		RetryIf:     RetryAll,
		Context:     context.Background(),
	})

	attempts := 0
	err := base.WithMaxAttempts(4).Do(func() error {
		attempts++
		return errors.New("nope")
	})
	if err == nil {
		t.Fatal("Expected failure")
	}
	if attempts != 4 {
		t.Errorf("Expected WithMaxAttempts to override attempts, got %d", attempts)
	}

	// The original retrier keeps its own budget
	attempts = 0
	_ = base.Do(func() error {
		attempts++
		return errors.New("nope")
	})
	if attempts != 2 {
		t.Errorf("Expected original retrier to keep 2 attempts, got %d", attempts)
	}
}

func TestWaitRespectsContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := Wait(ctx, 500*time.Millisecond)
	elapsed := time.Since(start)

	if err == nil {
		t.Error("Expected Wait to return the context error")
	}
	if elapsed > 200*time.Millisecond {
		t.Errorf("Expected Wait to return promptly on cancellation, took %v", elapsed)
	}
}
