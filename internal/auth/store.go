package auth

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrUserNotFound is returned by a VerifierStore for an unknown username.
	ErrUserNotFound = errors.New("user not found")

	// ErrUserExists is returned by VerifierStore.Create for a taken username.
	ErrUserExists = errors.New("user already exists")
)

// VerifierStore persists registration records. Implementations must be safe
// for concurrent use and must return copies, never shared records.
type VerifierStore interface {
	// Get returns the record for username or ErrUserNotFound.
	Get(ctx context.Context, username string) (*Record, error)
	// Create stores a new record or fails with ErrUserExists.
	Create(ctx context.Context, rec *Record) error
	// Delete removes the record for username or fails with ErrUserNotFound.
	Delete(ctx context.Context, username string) error
}

// MemoryVerifierStore keeps records in a map. It is intended for tests and
// for the self-test command.
type MemoryVerifierStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryVerifierStore creates an empty in-memory store.
func NewMemoryVerifierStore() *MemoryVerifierStore {
	return &MemoryVerifierStore{records: make(map[string]Record)}
}

// Get implements VerifierStore.
func (s *MemoryVerifierStore) Get(ctx context.Context, username string) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &rec, nil
}

// Create implements VerifierStore.
func (s *MemoryVerifierStore) Create(ctx context.Context, rec *Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[rec.Username]; ok {
		return ErrUserExists
	}
	s.records[rec.Username] = *rec
	return nil
}

// Delete implements VerifierStore.
func (s *MemoryVerifierStore) Delete(ctx context.Context, username string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[username]; !ok {
		return ErrUserNotFound
	}
	delete(s.records, username)
	return nil
}
