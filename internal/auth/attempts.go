package auth

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fzdarsky/srpkit/pkg/srp"
)

// attemptCleanupInterval is how often expired attempts are swept.
const attemptCleanupInterval = 30 * time.Second

// PendingLogin is the server state kept between BeginLogin and FinishLogin.
type PendingLogin struct {
	Username string
	Salt     string
	Attempt  *srp.ServerAttempt
}

func (p *PendingLogin) discard() {
	if p.Attempt != nil {
		p.Attempt.Clear()
	}
}

type pendingEntry struct {
	login     *PendingLogin
	expiresAt time.Time
}

// AttemptStore holds pending logins between the challenge and the proof.
// Entries expire after a TTL and can be retrieved once.
type AttemptStore struct {
	attempts map[string]*pendingEntry
	mu       sync.Mutex
	ttl      time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewAttemptStore creates a store whose entries live for ttl and starts the
// background sweep. Call Close to stop it.
func NewAttemptStore(ttl time.Duration) *AttemptStore {
	store := &AttemptStore{
		attempts: make(map[string]*pendingEntry),
		ttl:      ttl,
		stopCh:   make(chan struct{}),
	}

	go store.cleanupLoop()

	return store
}

// Store saves a pending login and returns its attempt ID.
func (s *AttemptStore) Store(login *PendingLogin) (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate attempt ID: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.attempts[id.String()] = &pendingEntry{
		login:     login,
		expiresAt: time.Now().Add(s.ttl),
	}

	return id.String(), nil
}

// Retrieve removes and returns the pending login for id. It returns false if
// the ID is unknown, was already retrieved, or has expired.
func (s *AttemptStore) Retrieve(id string) (*PendingLogin, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.attempts[id]
	if !ok {
		return nil, false
	}
	delete(s.attempts, id)

	if time.Now().After(entry.expiresAt) {
		entry.login.discard()
		return nil, false
	}

	return entry.login, true
}

// Count returns the number of pending logins.
func (s *AttemptStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.attempts)
}

// Close stops the sweep and discards every pending login.
func (s *AttemptStore) Close() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, entry := range s.attempts {
		entry.login.discard()
		delete(s.attempts, id)
	}
}

func (s *AttemptStore) cleanupLoop() {
	ticker := time.NewTicker(attemptCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCh:
			return
		}
	}
}

func (s *AttemptStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for id, entry := range s.attempts {
		if now.After(entry.expiresAt) {
			entry.login.discard()
			delete(s.attempts, id)
		}
	}
}
