package srp

import "fmt"

// State is the position of a login attempt in its lifecycle. Attempts only
// move forward; Verified and Rejected are terminal.
type State int

// Attempt states.
const (
	StateEphemeralGenerated State = iota + 1
	StateSessionDerived
	StateVerified
	StateRejected
)

func (s State) String() string {
	switch s {
	case StateEphemeralGenerated:
		return "ephemeral_generated"
	case StateSessionDerived:
		return "session_derived"
	case StateVerified:
		return "verified"
	case StateRejected:
		return "rejected"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ClientAttempt holds the client's secrets for a single login. It is not
// safe for concurrent use. A rejected attempt cannot be resumed; start a new
// one with Client.Begin.
type ClientAttempt struct {
	params *Params
	state  State

	secret  Fixed // a
	public  Fixed // A
	proof   Fixed // M
	key     Fixed // K
	cleared bool
}

// Begin starts a login attempt with a fresh ephemeral key pair.
func (c *Client) Begin() (*ClientAttempt, error) {
	a, err := c.params.randomSecret()
	if err != nil {
		return nil, err
	}

	return &ClientAttempt{
		params: c.params,
		state:  StateEphemeralGenerated,
		secret: a,
		public: c.params.clientPublic(a),
	}, nil
}

// State returns the attempt's current state.
func (at *ClientAttempt) State() State {
	return at.state
}

// Public returns A, hex encoded, for sending to the server.
func (at *ClientAttempt) Public() string {
	return at.public.Hex()
}

// DeriveSession processes the server's salt and B and returns the session
// whose Proof is sent to the server. Any failure rejects the attempt.
func (at *ClientAttempt) DeriveSession(serverPublic, salt, username, privateKey string) (Session, error) {
	if at.state != StateEphemeralGenerated {
		return Session{}, fmt.Errorf("%w: derive session in state %s", ErrInvalidState, at.state)
	}

	session, err := at.derive(serverPublic, salt, username, privateKey)
	if err != nil {
		at.reject()
		return Session{}, err
	}

	at.state = StateSessionDerived
	return session, nil
}

func (at *ClientAttempt) derive(serverPublic, salt, username, privateKey string) (Session, error) {
	//nolint:gocritic // B is capitalized per RFC 5054
	B, err := parseHex("B", serverPublic)
	if err != nil {
		return Session{}, err
	}

	s, err := parseHex("salt", salt)
	if err != nil {
		return Session{}, err
	}

	x, err := parseHex("x", privateKey)
	if err != nil {
		return Session{}, err
	}
	defer x.wipe()

	_, K, M, err := at.params.clientKeys(at.secret, B, s, username, x)
	if err != nil {
		return Session{}, err
	}

	at.key, at.proof = K, M
	at.secret.wipe()
	return Session{Key: K.Hex(), Proof: M.Hex()}, nil
}

// Verify checks the server's proof. On success the attempt is Verified and
// SessionKey becomes available; otherwise it is Rejected.
func (at *ClientAttempt) Verify(serverProof string) error {
	if at.state != StateSessionDerived {
		return fmt.Errorf("%w: verify in state %s", ErrInvalidState, at.state)
	}

	actual, err := parseHex("server proof", serverProof)
	if err != nil {
		at.reject()
		return err
	}

	if !proofMatches(at.params.confirmation(at.public, at.proof, at.key), actual) {
		at.reject()
		return ErrInvalidServerProof
	}

	at.state = StateVerified
	return nil
}

// SessionKey returns K once the attempt is Verified.
func (at *ClientAttempt) SessionKey() (string, error) {
	if at.state != StateVerified || at.cleared {
		return "", fmt.Errorf("%w: session key in state %s", ErrInvalidState, at.state)
	}
	return at.key.Hex(), nil
}

// Clear overwrites the attempt's secrets. An unfinished attempt becomes
// Rejected; a Verified one keeps its state but no longer yields a key.
func (at *ClientAttempt) Clear() {
	at.wipe()
	if at.state != StateVerified {
		at.state = StateRejected
	}
}

func (at *ClientAttempt) reject() {
	at.state = StateRejected
	at.wipe()
}

func (at *ClientAttempt) wipe() {
	at.secret.wipe()
	at.key.wipe()
	at.proof.wipe()
	at.cleared = true
}

// ServerAttempt holds the server's secret for a single login. It is not
// safe for concurrent use.
type ServerAttempt struct {
	params *Params
	state  State

	secret   Fixed // b
	verifier Fixed // v
	public   Fixed // B
	key      Fixed // K
	cleared  bool
}

// Begin starts a login attempt against the stored hex verifier.
func (s *Server) Begin(verifier string) (*ServerAttempt, error) {
	v, err := parseHex("verifier", verifier)
	if err != nil {
		return nil, err
	}

	b, err := s.params.randomSecret()
	if err != nil {
		return nil, err
	}

	return &ServerAttempt{
		params:   s.params,
		state:    StateEphemeralGenerated,
		secret:   b,
		verifier: v,
		public:   s.params.serverPublic(b, v),
	}, nil
}

// State returns the attempt's current state.
func (at *ServerAttempt) State() State {
	return at.state
}

// Public returns B, hex encoded, for sending to the client.
func (at *ServerAttempt) Public() string {
	return at.public.Hex()
}

// Verify derives the session from the client's A and checks its proof. On
// success it returns the key and the server proof and the attempt is
// Verified. Any failure rejects the attempt and returns no session material.
func (at *ServerAttempt) Verify(clientPublic, salt, username, clientProof string) (Session, error) {
	if at.state != StateEphemeralGenerated {
		return Session{}, fmt.Errorf("%w: verify in state %s", ErrInvalidState, at.state)
	}

	session, err := at.verify(clientPublic, salt, username, clientProof)
	at.secret.wipe()
	if err != nil {
		at.state = StateRejected
		return Session{}, err
	}

	at.state = StateVerified
	return session, nil
}

func (at *ServerAttempt) verify(clientPublic, salt, username, clientProof string) (Session, error) {
	//nolint:gocritic // A is capitalized per RFC 5054
	A, err := parseHex("A", clientPublic)
	if err != nil {
		return Session{}, err
	}

	s, err := parseHex("salt", salt)
	if err != nil {
		return Session{}, err
	}

	actual, err := parseHex("client proof", clientProof)
	if err != nil {
		return Session{}, err
	}

	at.state = StateSessionDerived
	session, err := at.params.serverSession(at.secret, at.verifier, A, s, username, actual)
	if err != nil {
		return Session{}, err
	}

	at.key, err = FromHex(session.Key)
	if err != nil {
		return Session{}, err
	}
	return session, nil
}

// SessionKey returns K once the attempt is Verified.
func (at *ServerAttempt) SessionKey() (string, error) {
	if at.state != StateVerified || at.cleared {
		return "", fmt.Errorf("%w: session key in state %s", ErrInvalidState, at.state)
	}
	return at.key.Hex(), nil
}

// Clear overwrites the attempt's secrets. Unless the attempt was Verified
// it becomes Rejected.
func (at *ServerAttempt) Clear() {
	at.secret.wipe()
	at.key.wipe()
	at.cleared = true
	if at.state != StateVerified {
		at.state = StateRejected
	}
}
