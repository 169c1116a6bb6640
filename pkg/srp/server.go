package srp

// Server implements the server half of SRP-6a. All methods are safe for
// concurrent use.
type Server struct {
	params *Params
}

// NewServer creates a server for params. A nil params selects DefaultParams.
func NewServer(params *Params) *Server {
	if params == nil {
		params = DefaultParams()
	}
	return &Server{params: params}
}

// Params returns the parameter set the server was built with.
func (s *Server) Params() *Params {
	return s.params
}

// GenerateEphemeral returns a fresh server key pair b, B = (k*v + g^b) % N
// for the stored hex verifier.
func (s *Server) GenerateEphemeral(verifier string) (Ephemeral, error) {
	v, err := parseHex("verifier", verifier)
	if err != nil {
		return Ephemeral{}, err
	}

	b, err := s.params.randomSecret()
	if err != nil {
		return Ephemeral{}, err
	}
	defer b.wipe()

	return Ephemeral{
		Secret: b.Hex(),
		Public: s.params.serverPublic(b, v).Hex(),
	}, nil
}

// PublicEphemeral recomputes B from a hex secret and verifier.
func (s *Server) PublicEphemeral(secret, verifier string) (string, error) {
	b, err := parseHex("b", secret)
	if err != nil {
		return "", err
	}
	defer b.wipe()

	v, err := parseHex("verifier", verifier)
	if err != nil {
		return "", err
	}

	return s.params.serverPublic(b, v).Hex(), nil
}

// DeriveSession derives K, checks the client's proof and, only if it
// matches, returns K together with the server proof H(A, M, K).
//
// B is recomputed from the server's own secret. The call fails with
// ErrInvalidPublicEphemeral if A % N == 0 and with ErrInvalidClientProof if
// the proof does not match; no session material is returned in either case.
func (s *Server) DeriveSession(secret, clientPublic, salt, username, verifier, clientProof string) (Session, error) {
	b, err := parseHex("b", secret)
	if err != nil {
		return Session{}, err
	}
	defer b.wipe()

	//nolint:gocritic // A is capitalized per RFC 5054
	A, err := parseHex("A", clientPublic)
	if err != nil {
		return Session{}, err
	}

	saltValue, err := parseHex("salt", salt)
	if err != nil {
		return Session{}, err
	}

	v, err := parseHex("verifier", verifier)
	if err != nil {
		return Session{}, err
	}

	actual, err := parseHex("client proof", clientProof)
	if err != nil {
		return Session{}, err
	}

	return s.params.serverSession(b, v, A, saltValue, username, actual)
}

// serverSession is shared by Server.DeriveSession and ServerAttempt.
//
//nolint:gocritic // A, K and M are capitalized per RFC 5054
func (p *Params) serverSession(b, v, A, salt Fixed, username string, clientProof Fixed) (Session, error) {
	_, K, M, err := p.serverKeys(b, v, A, salt, username)
	if err != nil {
		return Session{}, err
	}
	defer K.wipe()

	if !proofMatches(M, clientProof) {
		return Session{}, ErrInvalidClientProof
	}

	return Session{
		Key:   K.Hex(),
		Proof: p.confirmation(A, M, K).Hex(),
	}, nil
}
