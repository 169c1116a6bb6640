package auth

import (
	"errors"
	"sync"
	"time"
)

var (
	// ErrRateLimitExceeded is returned when a user retries before the delay
	// from the last failure has passed.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// ErrUserLocked is returned when a user is locked out after too many
	// failed proofs.
	ErrUserLocked = errors.New("user locked out")
)

const (
	// DefaultMaxFailures is the number of failed proofs that triggers a lockout.
	DefaultMaxFailures = 3

	// DefaultLockout is how long a locked user stays locked.
	DefaultLockout = 60 * time.Second

	// CleanupThreshold is how long to keep trackers for inactive users.
	CleanupThreshold = 5 * time.Minute

	// CleanupIntervalRateLimit is how often inactive trackers are swept.
	CleanupIntervalRateLimit = 2 * time.Minute
)

// defaultDelays is the wait imposed after the first, second, third ...
// failure below the lockout threshold. The last entry repeats.
var defaultDelays = []time.Duration{1 * time.Second, 2 * time.Second, 5 * time.Second}

// FailureTracker tracks failed proofs for a single username.
type FailureTracker struct {
	Count       int       // consecutive failed proofs
	LastFailed  time.Time // time of the last failed proof
	NextAttempt time.Time // earliest time of the next attempt
	LockedUntil time.Time // zero if not locked
}

// IsLocked reports whether the user is currently locked out.
func (ft *FailureTracker) IsLocked(now time.Time) bool {
	return now.Before(ft.LockedUntil)
}

// RateLimiter implements progressive delay brute force protection per
// username: each failed proof imposes a growing delay, and every failure
// from the maxFailures-th on locks the user out.
type RateLimiter struct {
	mu          sync.RWMutex
	trackers    map[string]*FailureTracker
	maxFailures int
	delays      []time.Duration
	lockout     time.Duration
	stopCh      chan struct{}
	stopOnce    sync.Once
}

// NewRateLimiter creates a rate limiter with background cleanup. A
// maxFailures below 1 selects DefaultMaxFailures.
func NewRateLimiter(maxFailures int) *RateLimiter {
	if maxFailures < 1 {
		maxFailures = DefaultMaxFailures
	}

	rl := &RateLimiter{
		trackers:    make(map[string]*FailureTracker),
		maxFailures: maxFailures,
		delays:      defaultDelays,
		lockout:     DefaultLockout,
		stopCh:      make(chan struct{}),
	}

	go rl.cleanupInactiveUsers()

	return rl
}

// CheckLimit reports whether username may attempt a login now. It returns
// ErrUserLocked or ErrRateLimitExceeded together with the time to wait.
func (rl *RateLimiter) CheckLimit(username string) (retryAfter time.Duration, err error) {
	rl.mu.RLock()
	defer rl.mu.RUnlock()

	tracker, exists := rl.trackers[username]
	if !exists {
		return 0, nil
	}

	now := time.Now()
	if tracker.IsLocked(now) {
		return tracker.LockedUntil.Sub(now), ErrUserLocked
	}
	if now.Before(tracker.NextAttempt) {
		return tracker.NextAttempt.Sub(now), ErrRateLimitExceeded
	}

	return 0, nil
}

// RecordFailure records a failed proof for username and returns the delay
// imposed before the next attempt.
func (rl *RateLimiter) RecordFailure(username string) time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	tracker, exists := rl.trackers[username]
	if !exists {
		tracker = &FailureTracker{}
		rl.trackers[username] = tracker
	}

	now := time.Now()
	tracker.Count++
	tracker.LastFailed = now

	if tracker.Count >= rl.maxFailures {
		tracker.LockedUntil = now.Add(rl.lockout)
		tracker.NextAttempt = tracker.LockedUntil
		return rl.lockout
	}

	delay := rl.delayFor(tracker.Count)
	tracker.NextAttempt = now.Add(delay)
	return delay
}

func (rl *RateLimiter) delayFor(count int) time.Duration {
	if len(rl.delays) == 0 || count < 1 {
		return 0
	}
	if count > len(rl.delays) {
		return rl.delays[len(rl.delays)-1]
	}
	return rl.delays[count-1]
}

// RecordSuccess clears the failure count and any lockout for username.
func (rl *RateLimiter) RecordSuccess(username string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	delete(rl.trackers, username)
}

// GetFailureCount returns the current consecutive failure count.
func (rl *RateLimiter) GetFailureCount(username string) int {
	rl.mu.RLock()
	defer rl.mu.RUnlock()

	tracker, exists := rl.trackers[username]
	if !exists {
		return 0
	}
	return tracker.Count
}

// GetTrackedUserCount returns the number of users currently tracked.
func (rl *RateLimiter) GetTrackedUserCount() int {
	rl.mu.RLock()
	defer rl.mu.RUnlock()

	return len(rl.trackers)
}

// Stop stops the background cleanup goroutine. It is safe to call more
// than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() {
		close(rl.stopCh)
	})
}

func (rl *RateLimiter) cleanupInactiveUsers() {
	ticker := time.NewTicker(CleanupIntervalRateLimit)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.performCleanup()
		case <-rl.stopCh:
			return
		}
	}
}

// performCleanup drops trackers that are unlocked and idle for longer than
// CleanupThreshold.
func (rl *RateLimiter) performCleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-CleanupThreshold)

	for username, tracker := range rl.trackers {
		if tracker.LastFailed.Before(cutoff) && !tracker.IsLocked(now) {
			delete(rl.trackers, username)
		}
	}
}
