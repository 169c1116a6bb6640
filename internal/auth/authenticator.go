package auth

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/fzdarsky/srpkit/internal/logging"
	"github.com/fzdarsky/srpkit/internal/stretch"
	"github.com/fzdarsky/srpkit/pkg/srp"
)

// ErrAuthenticationFailed is the only error FinishLogin reports for a bad
// proof, an invalid public ephemeral, an unknown user or an expired attempt.
var ErrAuthenticationFailed = errors.New("authentication failed")

// DefaultAttemptTTL is how long a challenge stays valid.
const DefaultAttemptTTL = 5 * time.Minute

// Challenge is sent to the client after BeginLogin.
type Challenge struct {
	AttemptID    string
	Salt         string
	ServerPublic string
	KDF          KDF
}

// Result is returned by a successful FinishLogin. ServerProof goes to the
// client; SessionKey stays with the caller.
type Result struct {
	Username    string
	ServerProof string
	SessionKey  string
}

// Authenticator runs the server side of registration and login against a
// VerifierStore. It is safe for concurrent use.
type Authenticator struct {
	params   *srp.Params
	server   *srp.Server
	store    VerifierStore
	attempts *AttemptStore
	limiter  *RateLimiter
	logger   *logging.Logger

	decoyKey  []byte
	decoyKDFs []KDF
}

// Option configures an Authenticator.
type Option func(*Authenticator)

// WithAttemptTTL sets how long a challenge stays valid.
func WithAttemptTTL(ttl time.Duration) Option {
	return func(a *Authenticator) {
		a.attempts.ttl = ttl
	}
}

// WithMaxFailures sets how many failed proofs lock a user out.
func WithMaxFailures(n int) Option {
	return func(a *Authenticator) {
		if n >= 1 {
			a.limiter.maxFailures = n
		}
	}
}

// WithDecoyKDF sets the KDFs advertised for unknown users. Pass every KDF
// real users may be enrolled with; each unknown username is consistently
// assigned one of them.
func WithDecoyKDF(kdfs ...KDF) Option {
	return func(a *Authenticator) {
		if len(kdfs) > 0 {
			a.decoyKDFs = append([]KDF(nil), kdfs...)
		}
	}
}

// NewAuthenticator creates an Authenticator for params backed by store.
// Call Close to release its background goroutines.
func NewAuthenticator(params *srp.Params, store VerifierStore, logger *logging.Logger, opts ...Option) (*Authenticator, error) {
	decoyKey := make([]byte, 32)
	if _, err := rand.Read(decoyKey); err != nil {
		return nil, fmt.Errorf("failed to generate decoy key: %w", err)
	}

	a := &Authenticator{
		params:    params,
		server:    srp.NewServer(params),
		store:     store,
		attempts:  NewAttemptStore(DefaultAttemptTTL),
		limiter:   NewRateLimiter(DefaultMaxFailures),
		logger:    logger,
		decoyKey:  decoyKey,
		decoyKDFs: []KDF{Argon2idKDF(stretch.DefaultParams())},
	}
	for _, opt := range opts {
		opt(a)
	}

	return a, nil
}

// Close discards pending logins and stops background work.
func (a *Authenticator) Close() {
	a.attempts.Close()
	a.limiter.Stop()
}

// Register stores a record produced by Enroll. The record must have been
// created under the authenticator's parameters.
func (a *Authenticator) Register(ctx context.Context, rec *Record) error {
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("invalid record: %w", err)
	}
	if !rec.Matches(a.params) {
		return fmt.Errorf("record for %q uses group %d/%s, server uses %d/%s",
			rec.Username, rec.Group, rec.Hash, a.params.Group().Bits(), srp.HashName(a.params.Hash()))
	}

	if err := a.store.Create(ctx, rec); err != nil {
		return fmt.Errorf("failed to store record: %w", err)
	}

	a.logger.Info("user registered", map[string]any{
		"username": rec.Username,
		"group":    rec.Group,
		"hash":     rec.Hash,
		"kdf":      rec.KDF.Name,
	})
	return nil
}

// Unregister removes the record for username.
func (a *Authenticator) Unregister(ctx context.Context, username string) error {
	if err := a.store.Delete(ctx, username); err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}

	a.limiter.RecordSuccess(username)
	a.logger.Info("user removed", map[string]any{"username": username})
	return nil
}

// BeginLogin looks up username and returns a challenge holding the salt and
// the server's public ephemeral B.
//
// An unknown username, or one whose record was created under other
// parameters, gets a decoy challenge with a stable salt and KDF, so the
// response does not reveal whether the user exists; FinishLogin then fails
// like a wrong password would.
func (a *Authenticator) BeginLogin(ctx context.Context, username string) (*Challenge, error) {
	log := a.logger.WithFields(map[string]any{"username": username})

	if retryAfter, err := a.limiter.CheckLimit(username); err != nil {
		log.Warn("login refused", map[string]any{"reason": err.Error(), "retry_after": retryAfter.String()})
		return nil, err
	}

	rec, err := a.store.Get(ctx, username)
	switch {
	case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrInvalidUsername):
		log.Debug("issuing decoy challenge")
	case err != nil:
		return nil, fmt.Errorf("failed to load record: %w", err)
	case !rec.Matches(a.params):
		// Answered like an unknown user.
		log.Error("stored record does not match server parameters", map[string]any{
			"group": rec.Group,
			"hash":  rec.Hash,
		})
		err = ErrUserNotFound
	}
	if err != nil {
		if rec, err = a.decoy(username); err != nil {
			return nil, err
		}
	}

	attempt, err := a.server.Begin(rec.Verifier)
	if err != nil {
		return nil, fmt.Errorf("failed to start attempt: %w", err)
	}

	id, err := a.attempts.Store(&PendingLogin{
		Username: username,
		Salt:     rec.Salt,
		Attempt:  attempt,
	})
	if err != nil {
		attempt.Clear()
		return nil, err
	}

	log.Info("login challenge issued", map[string]any{"attempt_id": id})

	return &Challenge{
		AttemptID:    id,
		Salt:         rec.Salt,
		ServerPublic: attempt.Public(),
		KDF:          rec.KDF,
	}, nil
}

// FinishLogin checks the client's A and proof M for a pending attempt. Every
// failure is reported as ErrAuthenticationFailed; the reason is logged.
func (a *Authenticator) FinishLogin(ctx context.Context, attemptID, clientPublic, clientProof string) (*Result, error) {
	log := a.logger.WithFields(map[string]any{"attempt_id": attemptID})

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pending, ok := a.attempts.Retrieve(attemptID)
	if !ok {
		log.Warn("login failed", map[string]any{"reason": "unknown or expired attempt"})
		return nil, ErrAuthenticationFailed
	}
	defer pending.Attempt.Clear()
	log = log.WithFields(map[string]any{"username": pending.Username})

	// Challenges opened before a lockout must not get a proof check either.
	if retryAfter, err := a.limiter.CheckLimit(pending.Username); err != nil {
		log.Warn("login refused", map[string]any{"reason": err.Error(), "retry_after": retryAfter.String()})
		return nil, ErrAuthenticationFailed
	}

	session, err := pending.Attempt.Verify(clientPublic, pending.Salt, pending.Username, clientProof)
	if err != nil {
		delay := a.limiter.RecordFailure(pending.Username)
		log.Warn("login failed", map[string]any{
			"reason":      err.Error(),
			"retry_after": delay.String(),
		})
		return nil, ErrAuthenticationFailed
	}

	a.limiter.RecordSuccess(pending.Username)
	log.Info("login verified")

	return &Result{
		Username:    pending.Username,
		ServerProof: session.Proof,
		SessionKey:  session.Key,
	}, nil
}

// decoy builds a record for a username that does not exist. The salt and
// the advertised KDF are derived from an HMAC of the username so repeated
// challenges agree; the verifier belongs to a random key nobody knows.
func (a *Authenticator) decoy(username string) (*Record, error) {
	salt := hex.EncodeToString(a.decoyMAC("salt", username))
	kdfs := a.decoyKDFs
	kdf := kdfs[int(a.decoyMAC("kdf", username)[0])%len(kdfs)]

	x, err := srp.RandomFixed(a.params.HashSize())
	if err != nil {
		return nil, fmt.Errorf("failed to generate decoy key: %w", err)
	}
	verifier, err := srp.NewClient(a.params).DeriveVerifier(x.Hex())
	if err != nil {
		return nil, err
	}

	return &Record{
		Username: username,
		Salt:     salt,
		Verifier: verifier,
		KDF:      kdf,
	}, nil
}

// decoyMAC returns HMAC(decoyKey, label 0x00 username) with the protocol
// hash, so the salt is as long as a real one.
func (a *Authenticator) decoyMAC(label, username string) []byte {
	mac := hmac.New(a.params.Hash().New, a.decoyKey)
	mac.Write([]byte(label))
	mac.Write([]byte{0})
	mac.Write([]byte(username))
	return mac.Sum(nil)
}
