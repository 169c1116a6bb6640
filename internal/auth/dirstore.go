package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// DirVerifierStore keeps one JSON file per user in a directory. Files are
// created with mode 0600 and never overwritten in place.
type DirVerifierStore struct {
	dir string
}

// NewDirVerifierStore returns a store rooted at dir, creating it if needed.
func NewDirVerifierStore(dir string) (*DirVerifierStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create verifier directory: %w", err)
	}
	return &DirVerifierStore{dir: dir}, nil
}

// Dir returns the directory the store writes to.
func (s *DirVerifierStore) Dir() string {
	return s.dir
}

func (s *DirVerifierStore) path(username string) (string, error) {
	if err := ValidateUsername(username); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, username+".json"), nil
}

// Get implements VerifierStore.
func (s *DirVerifierStore) Get(ctx context.Context, username string) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := s.path(username)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read verifier record: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to parse verifier record: %w", err)
	}
	if rec.Username != username {
		return nil, fmt.Errorf("verifier record %s belongs to %q", filepath.Base(path), rec.Username)
	}

	return &rec, nil
}

// Create implements VerifierStore. The record is written to a temporary
// file and linked into place, so readers never see a partial record.
func (s *DirVerifierStore) Create(ctx context.Context, rec *Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := s.path(rec.Username)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal verifier record: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".record-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary record: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write verifier record: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync verifier record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close verifier record: %w", err)
	}

	// os.Link fails if path exists, which gives create-only semantics.
	if err := os.Link(tmp.Name(), path); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return ErrUserExists
		}
		return fmt.Errorf("failed to install verifier record: %w", err)
	}

	return nil
}

// Delete implements VerifierStore.
func (s *DirVerifierStore) Delete(ctx context.Context, username string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := s.path(username)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete verifier record: %w", err)
	}
	return nil
}
