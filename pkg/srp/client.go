package srp

// Client implements the client half of SRP-6a: registration values and the
// client side of the key exchange. All methods are safe for concurrent use.
type Client struct {
	params *Params
}

// NewClient creates a client for params. A nil params selects DefaultParams.
func NewClient(params *Params) *Client {
	if params == nil {
		params = DefaultParams()
	}
	return &Client{params: params}
}

// Params returns the parameter set the client was built with.
func (c *Client) Params() *Params {
	return c.params
}

// GenerateSalt returns a random salt of HashSize bytes, hex encoded.
func (c *Client) GenerateSalt() (string, error) {
	s, err := c.params.randomSecret()
	if err != nil {
		return "", err
	}
	return s.Hex(), nil
}

// DeriveVerifier computes v = g^x % N for the hex private key x.
func (c *Client) DeriveVerifier(privateKey string) (string, error) {
	x, err := parseHex("x", privateKey)
	if err != nil {
		return "", err
	}
	defer x.wipe()

	return c.params.g.ModPow(x, c.params.n).Hex(), nil
}

// GenerateEphemeral returns a fresh client key pair a, A = g^a % N.
func (c *Client) GenerateEphemeral() (Ephemeral, error) {
	a, err := c.params.randomSecret()
	if err != nil {
		return Ephemeral{}, err
	}
	defer a.wipe()

	return Ephemeral{
		Secret: a.Hex(),
		Public: c.params.clientPublic(a).Hex(),
	}, nil
}

// PublicEphemeral recomputes A = g^a % N from a hex secret.
func (c *Client) PublicEphemeral(secret string) (string, error) {
	a, err := parseHex("a", secret)
	if err != nil {
		return "", err
	}
	defer a.wipe()

	return c.params.clientPublic(a).Hex(), nil
}

// DeriveSession derives the session key K and the client proof M.
//
// A is always recomputed from the client's own secret. The call fails with
// ErrInvalidPublicEphemeral if B % N == 0, and with a *FormatError if any
// input is not valid hex.
func (c *Client) DeriveSession(secret, serverPublic, salt, username, privateKey string) (Session, error) {
	a, err := parseHex("a", secret)
	if err != nil {
		return Session{}, err
	}
	defer a.wipe()

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

	_, K, M, err := c.params.clientKeys(a, B, s, username, x)
	if err != nil {
		return Session{}, err
	}
	defer K.wipe()

	return Session{Key: K.Hex(), Proof: M.Hex()}, nil
}

// VerifySession checks the server's proof against H(A, M, K). It returns
// ErrInvalidServerProof on mismatch.
func (c *Client) VerifySession(clientPublic string, session Session, serverProof string) error {
	//nolint:gocritic // A, M and K are capitalized per RFC 5054
	A, err := parseHex("A", clientPublic)
	if err != nil {
		return err
	}

	M, err := parseHex("M", session.Proof)
	if err != nil {
		return err
	}

	K, err := parseHex("K", session.Key)
	if err != nil {
		return err
	}
	defer K.wipe()

	actual, err := parseHex("server proof", serverProof)
	if err != nil {
		return err
	}

	if !proofMatches(c.params.confirmation(A, M, K), actual) {
		return ErrInvalidServerProof
	}
	return nil
}
