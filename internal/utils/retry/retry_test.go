package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

// tempErr simulates a transient adapter error, optionally carrying a
// server-signaled wait.
type tempErr struct {
	wait time.Duration
}

func (e *tempErr) Error() string             { return "temporarily unavailable" }
func (e *tempErr) Temporary() bool           { return true }
func (e *tempErr) RetryAfter() time.Duration { return e.wait }

type permErr struct{}

func (e *permErr) Error() string   { return "bad request" }
func (e *permErr) Temporary() bool { return false }

func fastConfig() Config {
	return Config{
		MaxRetries: 3,
		BaseDelay:  time.Millisecond,
		MaxDelay:   5 * time.Millisecond,
	}
}

func TestDo_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	got, err := Do(context.Background(), fastConfig(), "op", func() (int, error) {
		calls++
		if calls < 3 {
			return 0, &tempErr{}
		}
		return 42, nil
	})

	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if got != 42 || calls != 3 {
		t.Errorf("got %d after %d calls, want 42 after 3", got, calls)
	}
}

func TestDo_NonRetryableReturnsImmediately(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), fastConfig(), "op", func() (int, error) {
		calls++
		return 0, &permErr{}
	})

	if err == nil {
		t.Fatal("Do succeeded, want error")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (no retries for client errors)", calls)
	}
}

func TestDo_ExhaustsBudget(t *testing.T) {
	cfg := fastConfig()
	calls := 0
	_, err := Do(context.Background(), cfg, "op", func() (int, error) {
		calls++
		return 0, &tempErr{}
	})

	if err == nil {
		t.Fatal("Do succeeded, want error after exhausted retries")
	}
	if calls != cfg.MaxRetries+1 {
		t.Errorf("calls = %d, want %d", calls, cfg.MaxRetries+1)
	}
	var te *tempErr
	if !errors.As(err, &te) {
		t.Errorf("final error %v does not wrap the cause", err)
	}
}

func TestDo_HonorsServerDelay(t *testing.T) {
	cfg := fastConfig()
	cfg.MaxRetries = 1

	start := time.Now()
	calls := 0
	_, _ = Do(context.Background(), cfg, "op", func() (int, error) {
		calls++
		return 0, &tempErr{wait: 50 * time.Millisecond}
	})

	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
	// The signaled wait must override the 1ms computed delay.
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("elapsed = %v, want at least the signaled 50ms", elapsed)
	}
}

func TestDo_ContextCancelledDuringWait(t *testing.T) {
	cfg := fastConfig()
	cfg.BaseDelay = time.Minute

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := Do(ctx, cfg, "op", func() (int, error) {
		return 0, &tempErr{}
	})

	if err == nil {
		t.Fatal("Do succeeded, want cancellation error")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want wrapped context.Canceled", err)
	}
	if time.Since(start) > time.Second {
		t.Error("cancellation did not interrupt the backoff wait")
	}
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"temporary", &tempErr{}, true},
		{"permanent", &permErr{}, false},
		{"plain", errors.New("boom"), false},
		{"wrapped temporary", errors.Join(errors.New("ctx"), &tempErr{}), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Retryable(tt.err); got != tt.want {
				t.Errorf("Retryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
