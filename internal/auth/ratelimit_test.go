package auth_test

import (
	"errors"
	"testing"
	"time"

	"github.com/fzdarsky/srpkit/internal/auth"
)

func TestNewRateLimiter(t *testing.T) {
	rl := auth.NewRateLimiter(0)
	if rl == nil {
		t.Fatal("expected non-nil rate limiter")
	}

	rl.Stop()
	rl.Stop()
}

func TestRateLimiter_CheckLimit_NoFailures(t *testing.T) {
	rl := auth.NewRateLimiter(3)
	defer rl.Stop()

	retryAfter, err := rl.CheckLimit("alice")
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if retryAfter != 0 {
		t.Errorf("expected 0 retryAfter, got %v", retryAfter)
	}
}

func TestRateLimiter_RecordFailure_ProgressiveDelays(t *testing.T) {
	rl := auth.NewRateLimiter(4)
	defer rl.Stop()

	want := []time.Duration{1 * time.Second, 2 * time.Second, 5 * time.Second, auth.DefaultLockout, auth.DefaultLockout}
	for i, expected := range want {
		if got := rl.RecordFailure("alice"); got != expected {
			t.Errorf("failure %d: expected %v delay, got %v", i+1, expected, got)
		}
	}
}

func TestRateLimiter_CheckLimit_Delayed(t *testing.T) {
	rl := auth.NewRateLimiter(3)
	defer rl.Stop()

	rl.RecordFailure("alice")

	retryAfter, err := rl.CheckLimit("alice")
	if !errors.Is(err, auth.ErrRateLimitExceeded) {
		t.Fatalf("expected ErrRateLimitExceeded, got %v", err)
	}
	if retryAfter <= 0 || retryAfter > time.Second {
		t.Errorf("expected retryAfter in (0, 1s], got %v", retryAfter)
	}

	// Other users are unaffected.
	if _, err := rl.CheckLimit("bob"); err != nil {
		t.Errorf("unexpected error for bob: %v", err)
	}
}

func TestRateLimiter_CheckLimit_Locked(t *testing.T) {
	rl := auth.NewRateLimiter(3)
	defer rl.Stop()

	for range 3 {
		rl.RecordFailure("alice")
	}

	retryAfter, err := rl.CheckLimit("alice")
	if !errors.Is(err, auth.ErrUserLocked) {
		t.Fatalf("expected ErrUserLocked, got %v", err)
	}
	if retryAfter <= 0 || retryAfter > auth.DefaultLockout {
		t.Errorf("expected retryAfter in (0, %v], got %v", auth.DefaultLockout, retryAfter)
	}
}

func TestRateLimiter_RecordSuccess(t *testing.T) {
	rl := auth.NewRateLimiter(3)
	defer rl.Stop()

	rl.RecordFailure("alice")
	rl.RecordFailure("alice")

	if got := rl.GetFailureCount("alice"); got != 2 {
		t.Errorf("expected 2 failures, got %d", got)
	}

	rl.RecordSuccess("alice")

	if got := rl.GetFailureCount("alice"); got != 0 {
		t.Errorf("expected 0 failures after success, got %d", got)
	}
	if got := rl.GetTrackedUserCount(); got != 0 {
		t.Errorf("expected 0 tracked users, got %d", got)
	}

	if delay := rl.RecordFailure("alice"); delay != 1*time.Second {
		t.Errorf("expected 1s delay after success, got %v", delay)
	}
}

func TestRateLimiter_ConcurrentFailures(t *testing.T) {
	rl := auth.NewRateLimiter(1000)
	defer rl.Stop()

	done := make(chan struct{})
	for range 10 {
		go func() {
			for range 10 {
				rl.RecordFailure("alice")
			}
			done <- struct{}{}
		}()
	}
	for range 10 {
		<-done
	}

	if got := rl.GetFailureCount("alice"); got != 100 {
		t.Errorf("expected 100 failures, got %d", got)
	}
}
