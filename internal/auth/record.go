package auth

import (
	"crypto"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/fzdarsky/srpkit/internal/stretch"
	"github.com/fzdarsky/srpkit/pkg/srp"
)

// Key derivation functions a record may name.
const (
	KDFArgon2id = "argon2id"
	KDFRFC5054  = "rfc5054"
)

// KDF describes how the client turns a password into the private key x.
// It is stored with the record and sent to the client with every challenge.
type KDF struct {
	Name      string `json:"name"`
	Time      uint32 `json:"time,omitempty"`
	MemoryKiB uint32 `json:"memory_kib,omitempty"`
	Threads   uint8  `json:"threads,omitempty"`
	KeyLen    uint32 `json:"key_len,omitempty"`
}

// Argon2idKDF returns a KDF for the given Argon2id parameters.
func Argon2idKDF(p stretch.Params) KDF {
	return KDF{
		Name:      KDFArgon2id,
		Time:      p.Time,
		MemoryKiB: p.MemoryKiB,
		Threads:   p.Threads,
		KeyLen:    p.KeyLen,
	}
}

// Derive computes the hex private key x for username and password.
func (k KDF) Derive(h crypto.Hash, salt, username, password string) (string, error) {
	switch k.Name {
	case KDFArgon2id:
		return stretch.Argon2id(password, salt, stretch.Params{
			Time:      k.Time,
			MemoryKiB: k.MemoryKiB,
			Threads:   k.Threads,
			KeyLen:    k.KeyLen,
		})
	case KDFRFC5054:
		return stretch.Legacy(h, salt, username, password)
	default:
		return "", fmt.Errorf("unknown kdf %q", k.Name)
	}
}

// Record is what the server keeps for a registered user. It holds no
// password-equivalent data other than the verifier.
type Record struct {
	Username         string    `json:"username"`
	Salt             string    `json:"salt"`
	Verifier         string    `json:"verifier"`
	Group            int       `json:"group"`
	Hash             string    `json:"hash"`
	LegacyMultiplier bool      `json:"legacy_multiplier,omitempty"`
	KDF              KDF       `json:"kdf"`
	CreatedAt        time.Time `json:"created_at"`
}

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9._@+-]{1,64}$`)

// ErrInvalidUsername is returned for usernames outside [A-Za-z0-9._@+-]{1,64}.
var ErrInvalidUsername = errors.New("invalid username")

// ValidateUsername checks the characters and length of a username. The set
// is restricted so a username can also serve as a file name.
func ValidateUsername(username string) error {
	if !usernamePattern.MatchString(username) || username == "." || username == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidUsername, username)
	}
	return nil
}

// Validate checks that the record is complete and its hex values parse.
func (r *Record) Validate() error {
	if err := ValidateUsername(r.Username); err != nil {
		return err
	}
	if _, err := srp.FromHex(r.Salt); err != nil {
		return fmt.Errorf("record salt: %w", err)
	}
	if _, err := srp.FromHex(r.Verifier); err != nil {
		return fmt.Errorf("record verifier: %w", err)
	}
	if _, err := srp.GroupByBits(r.Group); err != nil {
		return err
	}
	if _, err := srp.ParseHash(r.Hash); err != nil {
		return err
	}
	if r.KDF.Name != KDFArgon2id && r.KDF.Name != KDFRFC5054 {
		return fmt.Errorf("unknown kdf %q", r.KDF.Name)
	}
	return nil
}

// Matches reports whether the record was created under params.
func (r *Record) Matches(params *srp.Params) bool {
	h, err := srp.ParseHash(r.Hash)
	if err != nil {
		return false
	}
	return r.Group == params.Group().Bits() &&
		h == params.Hash() &&
		r.LegacyMultiplier == params.Legacy()
}

// Enroll performs the client side of registration: it draws a salt, derives
// x with kdf and computes the verifier. The password never leaves this call.
func Enroll(params *srp.Params, kdf KDF, username, password string) (*Record, error) {
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}

	client := srp.NewClient(params)
	salt, err := client.GenerateSalt()
	if err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	x, err := kdf.Derive(params.Hash(), salt, username, password)
	if err != nil {
		return nil, fmt.Errorf("failed to derive private key: %w", err)
	}

	verifier, err := client.DeriveVerifier(x)
	if err != nil {
		return nil, fmt.Errorf("failed to derive verifier: %w", err)
	}

	return &Record{
		Username:         username,
		Salt:             salt,
		Verifier:         verifier,
		Group:            params.Group().Bits(),
		Hash:             srp.HashName(params.Hash()),
		LegacyMultiplier: params.Legacy(),
		KDF:              kdf,
		CreatedAt:        time.Now().UTC(),
	}, nil
}
