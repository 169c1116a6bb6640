package auth_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/sync/errgroup"

	"github.com/fzdarsky/srpkit/internal/auth"
	"github.com/fzdarsky/srpkit/internal/logging"
	"github.com/fzdarsky/srpkit/pkg/srp"
)

type harness struct {
	params *srp.Params
	store  *auth.MemoryVerifierStore
	authn  *auth.Authenticator
	logs   *bytes.Buffer
}

func newHarness(t *testing.T, opts ...auth.Option) *harness {
	t.Helper()

	var logs bytes.Buffer
	logger := logging.New(logging.LevelDebug, logging.FormatJSON)
	logger.SetOutput(&logs, &logs)

	params := testParams(t)
	store := auth.NewMemoryVerifierStore()
	opts = append([]auth.Option{auth.WithDecoyKDF(cheapKDF)}, opts...)
	authn, err := auth.NewAuthenticator(params, store, logger, opts...)
	require.NoError(t, err)
	t.Cleanup(authn.Close)

	return &harness{params: params, store: store, authn: authn, logs: &logs}
}

func (h *harness) register(t *testing.T, username, password string) *auth.Record {
	t.Helper()
	rec, err := auth.Enroll(h.params, cheapKDF, username, password)
	require.NoError(t, err)
	require.NoError(t, h.authn.Register(context.Background(), rec))
	return rec
}

// answer runs the client half against a challenge and returns A, M and the
// client attempt awaiting the server proof.
func (h *harness) answer(t *testing.T, ch *auth.Challenge, username, password string) (string, string, *srp.ClientAttempt) {
	t.Helper()

	x, err := ch.KDF.Derive(h.params.Hash(), ch.Salt, username, password)
	require.NoError(t, err)

	attempt, err := srp.NewClient(h.params).Begin()
	require.NoError(t, err)

	session, err := attempt.DeriveSession(ch.ServerPublic, ch.Salt, username, x)
	require.NoError(t, err)

	return attempt.Public(), session.Proof, attempt
}

func TestAuthenticator_Login(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.register(t, "alice", "correct horse")

	ch, err := h.authn.BeginLogin(ctx, "alice")
	require.NoError(t, err)
	assert.NotEmpty(t, ch.AttemptID)

	A, M, attempt := h.answer(t, ch, "alice", "correct horse")
	result, err := h.authn.FinishLogin(ctx, ch.AttemptID, A, M)
	require.NoError(t, err)
	assert.Equal(t, "alice", result.Username)

	require.NoError(t, attempt.Verify(result.ServerProof))
	key, err := attempt.SessionKey()
	require.NoError(t, err)
	assert.Equal(t, result.SessionKey, key)

	// The attempt is one-time.
	_, err = h.authn.FinishLogin(ctx, ch.AttemptID, A, M)
	assert.ErrorIs(t, err, auth.ErrAuthenticationFailed)

	assert.NotContains(t, h.logs.String(), key)
	assert.NotContains(t, h.logs.String(), M)
}

func TestAuthenticator_WrongPassword(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.register(t, "alice", "correct horse")

	ch, err := h.authn.BeginLogin(ctx, "alice")
	require.NoError(t, err)

	A, M, _ := h.answer(t, ch, "alice", "battery staple")
	result, err := h.authn.FinishLogin(ctx, ch.AttemptID, A, M)
	assert.ErrorIs(t, err, auth.ErrAuthenticationFailed)
	assert.Nil(t, result)
	assert.Contains(t, h.logs.String(), srp.ErrInvalidClientProof.Error())

	// The failure imposes a delay before the next challenge.
	_, err = h.authn.BeginLogin(ctx, "alice")
	assert.ErrorIs(t, err, auth.ErrRateLimitExceeded)
}

func TestAuthenticator_ZeroClientEphemeral(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.register(t, "alice", "correct horse")

	ch, err := h.authn.BeginLogin(ctx, "alice")
	require.NoError(t, err)

	_, err = h.authn.FinishLogin(ctx, ch.AttemptID, h.params.N().Hex(), "00")
	assert.ErrorIs(t, err, auth.ErrAuthenticationFailed)
	assert.Contains(t, h.logs.String(), srp.ErrInvalidPublicEphemeral.Error())
}

func TestAuthenticator_UnknownUserGetsDecoy(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	first, err := h.authn.BeginLogin(ctx, "mallory")
	require.NoError(t, err)
	second, err := h.authn.BeginLogin(ctx, "mallory")
	require.NoError(t, err)

	assert.Equal(t, first.Salt, second.Salt, "decoy salt must be stable")
	assert.Len(t, first.Salt, 2*h.params.HashSize())
	assert.NotEqual(t, first.ServerPublic, second.ServerPublic)
	assert.Equal(t, cheapKDF, first.KDF)

	A, M, _ := h.answer(t, first, "mallory", "guess")
	_, err = h.authn.FinishLogin(ctx, first.AttemptID, A, M)
	assert.ErrorIs(t, err, auth.ErrAuthenticationFailed)
}

func TestAuthenticator_ExpiredAttempt(t *testing.T) {
	h := newHarness(t, auth.WithAttemptTTL(50*time.Millisecond))
	ctx := context.Background()
	h.register(t, "alice", "correct horse")

	ch, err := h.authn.BeginLogin(ctx, "alice")
	require.NoError(t, err)
	A, M, _ := h.answer(t, ch, "alice", "correct horse")

	time.Sleep(100 * time.Millisecond)

	_, err = h.authn.FinishLogin(ctx, ch.AttemptID, A, M)
	assert.ErrorIs(t, err, auth.ErrAuthenticationFailed)
	assert.Contains(t, h.logs.String(), "unknown or expired attempt")
}

func TestAuthenticator_Lockout(t *testing.T) {
	h := newHarness(t, auth.WithMaxFailures(1))
	ctx := context.Background()
	h.register(t, "alice", "correct horse")

	ch, err := h.authn.BeginLogin(ctx, "alice")
	require.NoError(t, err)
	A, M, _ := h.answer(t, ch, "alice", "wrong")
	_, err = h.authn.FinishLogin(ctx, ch.AttemptID, A, M)
	require.ErrorIs(t, err, auth.ErrAuthenticationFailed)

	_, err = h.authn.BeginLogin(ctx, "alice")
	assert.ErrorIs(t, err, auth.ErrUserLocked)
}

func TestAuthenticator_Register(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.register(t, "alice", "pw")

	dup, err := auth.Enroll(h.params, cheapKDF, "alice", "pw")
	require.NoError(t, err)
	assert.ErrorIs(t, h.authn.Register(ctx, dup), auth.ErrUserExists)

	other, err := auth.Enroll(srp.DefaultParams(), cheapKDF, "bob", "pw")
	require.NoError(t, err)
	err = h.authn.Register(ctx, other)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server uses 1024/sha256")

	bad := *dup
	bad.Username = "carol"
	bad.Verifier = "nothex"
	assert.Error(t, h.authn.Register(ctx, &bad))

	assert.Contains(t, h.logs.String(), "user registered")
}

func TestAuthenticator_ConcurrentLogins(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	users := []string{"u0", "u1", "u2", "u3", "u4", "u5", "u6", "u7"}
	for _, u := range users {
		h.register(t, u, "pw-"+u)
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, u := range users {
		g.Go(func() error {
			ch, err := h.authn.BeginLogin(ctx, u)
			if err != nil {
				return err
			}
			A, M, attempt := h.answer(t, ch, u, "pw-"+u)
			result, err := h.authn.FinishLogin(ctx, ch.AttemptID, A, M)
			if err != nil {
				return err
			}
			return attempt.Verify(result.ServerProof)
		})
	}
	require.NoError(t, g.Wait())
}

func TestAuthenticator_StoreErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := auth.NewMockVerifierStore(ctrl)
	params := testParams(t)

	authn, err := auth.NewAuthenticator(params, store, logging.Discard())
	require.NoError(t, err)
	defer authn.Close()

	ctx := context.Background()
	backendErr := errors.New("disk on fire")

	store.EXPECT().Get(gomock.Any(), "alice").Return(nil, backendErr)
	_, err = authn.BeginLogin(ctx, "alice")
	require.ErrorIs(t, err, backendErr)
	assert.NotErrorIs(t, err, auth.ErrAuthenticationFailed)

	rec, err := auth.Enroll(params, cheapKDF, "alice", "pw")
	require.NoError(t, err)
	store.EXPECT().Create(gomock.Any(), rec).Return(backendErr)
	assert.ErrorIs(t, authn.Register(ctx, rec), backendErr)
}

func TestAuthenticator_MismatchedStoredRecordGetsDecoy(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := auth.NewMockVerifierStore(ctrl)
	params := testParams(t)

	var logs bytes.Buffer
	logger := logging.New(logging.LevelInfo, logging.FormatJSON)
	logger.SetOutput(&logs, &logs)

	authn, err := auth.NewAuthenticator(params, store, logger, auth.WithDecoyKDF(cheapKDF))
	require.NoError(t, err)
	defer authn.Close()

	rec := sampleRecord("alice") // 1024/sha1, server is 1024/sha256
	store.EXPECT().Get(gomock.Any(), "alice").Return(rec, nil)
	store.EXPECT().Get(gomock.Any(), "nobody").Return(nil, auth.ErrUserNotFound)

	ctx := context.Background()
	stale, err := authn.BeginLogin(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, strings.Contains(logs.String(), "does not match server parameters"))

	unknown, err := authn.BeginLogin(ctx, "nobody")
	require.NoError(t, err)

	assert.NotEqual(t, rec.Salt, stale.Salt)
	assert.Len(t, stale.Salt, len(unknown.Salt))
	assert.Len(t, stale.ServerPublic, len(unknown.ServerPublic))
	assert.Equal(t, unknown.KDF, stale.KDF)

	h := &harness{params: params}
	A, M, _ := h.answer(t, stale, "alice", "correct horse")
	_, err = authn.FinishLogin(ctx, stale.AttemptID, A, M)
	assert.ErrorIs(t, err, auth.ErrAuthenticationFailed)
}

func TestAuthenticator_DecoyMatchesRealChallenge(t *testing.T) {
	legacy := auth.KDF{Name: auth.KDFRFC5054}
	h := newHarness(t, auth.WithDecoyKDF(cheapKDF, legacy))
	ctx := context.Background()

	rec, err := auth.Enroll(h.params, legacy, "alice", "correct horse")
	require.NoError(t, err)
	require.NoError(t, h.authn.Register(ctx, rec))

	genuine, err := h.authn.BeginLogin(ctx, "alice")
	require.NoError(t, err)

	seen := map[string]bool{}
	for i := range 32 {
		name := fmt.Sprintf("ghost-%d", i)

		decoy, err := h.authn.BeginLogin(ctx, name)
		require.NoError(t, err)
		assert.Len(t, decoy.Salt, len(genuine.Salt))
		assert.Len(t, decoy.ServerPublic, len(genuine.ServerPublic))
		assert.Contains(t, []auth.KDF{cheapKDF, legacy}, decoy.KDF)

		again, err := h.authn.BeginLogin(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, decoy.KDF, again.KDF, "decoy KDF must be stable per username")

		seen[decoy.KDF.Name] = true
	}
	assert.True(t, seen[auth.KDFRFC5054] && seen[auth.KDFArgon2id], "decoys must use every configured KDF, got %v", seen)
}

func TestAuthenticator_LockoutAppliesToOpenChallenges(t *testing.T) {
	h := newHarness(t, auth.WithMaxFailures(2))
	ctx := context.Background()
	h.register(t, "alice", "correct horse")

	// Open every challenge before any failure is recorded.
	challenges := make([]*auth.Challenge, 4)
	for i := range challenges {
		ch, err := h.authn.BeginLogin(ctx, "alice")
		require.NoError(t, err)
		challenges[i] = ch
	}

	// The first failure imposes a delay; the next challenge is refused
	// without a proof check even with the right password.
	A, M, _ := h.answer(t, challenges[0], "alice", "wrong")
	_, err := h.authn.FinishLogin(ctx, challenges[0].AttemptID, A, M)
	require.ErrorIs(t, err, auth.ErrAuthenticationFailed)

	A, M, _ = h.answer(t, challenges[1], "alice", "correct horse")
	_, err = h.authn.FinishLogin(ctx, challenges[1].AttemptID, A, M)
	assert.ErrorIs(t, err, auth.ErrAuthenticationFailed)
	assert.Contains(t, h.logs.String(), auth.ErrRateLimitExceeded.Error())

	// A second failure, once the delay has passed, locks the user out.
	time.Sleep(1100 * time.Millisecond)
	A, M, _ = h.answer(t, challenges[2], "alice", "wrong")
	_, err = h.authn.FinishLogin(ctx, challenges[2].AttemptID, A, M)
	require.ErrorIs(t, err, auth.ErrAuthenticationFailed)

	_, err = h.authn.BeginLogin(ctx, "alice")
	require.ErrorIs(t, err, auth.ErrUserLocked)

	A, M, _ = h.answer(t, challenges[3], "alice", "correct horse")
	result, err := h.authn.FinishLogin(ctx, challenges[3].AttemptID, A, M)
	assert.ErrorIs(t, err, auth.ErrAuthenticationFailed)
	assert.Nil(t, result)
	assert.Contains(t, h.logs.String(), auth.ErrUserLocked.Error())
}

func TestAuthenticator_Unregister(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.register(t, "alice", "pw")

	require.NoError(t, h.authn.Unregister(ctx, "alice"))
	assert.ErrorIs(t, h.authn.Unregister(ctx, "alice"), auth.ErrUserNotFound)

	_, err := h.store.Get(ctx, "alice")
	assert.ErrorIs(t, err, auth.ErrUserNotFound)
}
