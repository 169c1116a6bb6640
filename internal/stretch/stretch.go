// Package stretch turns a password into the SRP private key x.
//
// Argon2id is the default. Legacy reproduces the RFC 5054 derivation
// x = H(s | H(I ":" p)) for interoperability with classic SRP clients; it is
// fast to brute force and should not be used for new registrations.
package stretch

import (
	"crypto"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// Params configures Argon2id.
type Params struct {
	Time      uint32 // passes over memory
	MemoryKiB uint32
	Threads   uint8
	KeyLen    uint32 // bytes of output; 0 means 32
}

// DefaultParams returns the RFC 9106 second recommended profile.
func DefaultParams() Params {
	return Params{
		Time:      3,
		MemoryKiB: 64 * 1024,
		Threads:   4,
		KeyLen:    32,
	}
}

// Validate checks that every cost parameter is non-zero.
func (p Params) Validate() error {
	if p.Time == 0 {
		return errors.New("argon2 time must be at least 1")
	}
	if p.Threads == 0 {
		return errors.New("argon2 threads must be at least 1")
	}
	if p.MemoryKiB < 8*uint32(p.Threads) {
		return fmt.Errorf("argon2 memory must be at least %d KiB for %d threads", 8*uint32(p.Threads), p.Threads)
	}
	return nil
}

// Argon2id derives x from password and a hex salt. The result is hex encoded
// with a width of twice KeyLen.
func Argon2id(password, salt string, p Params) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}

	saltBytes, err := hex.DecodeString(salt)
	if err != nil {
		return "", fmt.Errorf("failed to decode salt: %w", err)
	}
	if len(saltBytes) == 0 {
		return "", errors.New("salt is required")
	}

	keyLen := p.KeyLen
	if keyLen == 0 {
		keyLen = 32
	}

	key := argon2.IDKey([]byte(password), saltBytes, p.Time, p.MemoryKiB, p.Threads, keyLen)
	defer clear(key)

	return hex.EncodeToString(key), nil
}

// Legacy derives x = H(s | H(I ":" p)) with hash function h. The result is
// hex encoded with a width of twice the hash size.
func Legacy(h crypto.Hash, salt, username, password string) (string, error) {
	if !h.Available() {
		return "", fmt.Errorf("hash %v is not available", h)
	}

	saltBytes, err := hex.DecodeString(salt)
	if err != nil {
		return "", fmt.Errorf("failed to decode salt: %w", err)
	}

	identity := h.New()
	identity.Write([]byte(username))
	identity.Write([]byte(":"))
	identity.Write([]byte(password))
	identityDigest := identity.Sum(nil)
	defer clear(identityDigest)

	x := h.New()
	x.Write(saltBytes)
	x.Write(identityDigest)

	return hex.EncodeToString(x.Sum(nil)), nil
}
