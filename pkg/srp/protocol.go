package srp

import (
	"crypto/subtle"
	"errors"
)

// Ephemeral is a one-attempt key pair, hex encoded. Secret must stay with
// the party that generated it and must not outlive the attempt.
type Ephemeral struct {
	Secret string
	Public string
}

// Session is the result of deriving the shared key, hex encoded. Key is K;
// Proof is the value sent to the peer (M from the client, H(A, M, K) from
// the server).
type Session struct {
	Key   string
	Proof string
}

// parseHex decodes a protocol value and names it in any FormatError.
func parseHex(field, s string) (Fixed, error) {
	x, err := FromHex(s)
	if err != nil {
		var fe *FormatError
		if errors.As(err, &fe) {
			fe.Field = field
		}
		return Fixed{}, err
	}
	return x, nil
}

// clientPublic computes A = g^a % N.
func (p *Params) clientPublic(a Fixed) Fixed {
	return p.g.ModPow(a, p.n)
}

// serverPublic computes B = (k*v + g^b) % N.
func (p *Params) serverPublic(b, v Fixed) Fixed {
	return p.k.Mul(v).Add(p.g.ModPow(b, p.n)).Mod(p.n)
}

// sessionProof computes M = H(H(N) xor H(g), H(I), s, A, B, K).
func (p *Params) sessionProof(username string, s, A, B, K Fixed) Fixed {
	return p.H(p.hNG, p.H(Text(username)), s, A, B, K)
}

// confirmation computes the server's proof H(A, M, K).
func (p *Params) confirmation(A, M, K Fixed) Fixed {
	return p.H(A, M, K)
}

// clientKeys derives the client's A, K and M from its secret a, the server's
// B, the salt s, the identity and the private key x.
//
//nolint:gocritic // A, B, K and M are capitalized per RFC 5054
func (p *Params) clientKeys(a, B, s Fixed, username string, x Fixed) (A, K, M Fixed, err error) {
	// B % N > 0
	if B.Mod(p.n).IsZero() {
		return Fixed{}, Fixed{}, Fixed{}, ErrInvalidPublicEphemeral
	}

	A = p.clientPublic(a)
	u := p.H(A, B)

	// S = (B - k*g^x) ^ (a + u*x) % N
	gx := p.g.ModPow(x, p.n)
	kgx := p.k.Mul(gx).Mod(p.n)
	base := B.Sub(kgx).Mod(p.n)
	exponent := a.Add(u.Mul(x))
	S := base.ModPow(exponent, p.n)

	K = p.H(S)
	M = p.sessionProof(username, s, A, B, K)

	for _, v := range []Int{gx.Int, kgx.Int, base.Int, exponent, S.Int} {
		v.wipe()
	}
	return A, K, M, nil
}

// serverKeys derives the server's B, K and expected client proof M from its
// secret b, the verifier v, the client's A and the salt s.
//
//nolint:gocritic // A, B, K and M are capitalized per RFC 5054
func (p *Params) serverKeys(b, v, A, s Fixed, username string) (B, K, M Fixed, err error) {
	B = p.serverPublic(b, v)

	// A % N > 0
	if A.Mod(p.n).IsZero() {
		return Fixed{}, Fixed{}, Fixed{}, ErrInvalidPublicEphemeral
	}

	u := p.H(A, B)

	// S = (A * v^u) ^ b % N
	avu := A.Mul(v.ModPow(u, p.n)).Mod(p.n)
	S := avu.ModPow(b, p.n)

	K = p.H(S)
	M = p.sessionProof(username, s, A, B, K)

	avu.wipe()
	S.wipe()
	return B, K, M, nil
}

// proofMatches compares a received proof against the expected value in
// constant time. Leading zeros in the received hex are not significant.
func proofMatches(expected, actual Fixed) bool {
	want := expected.Bytes()
	got := actual.padded(expected.width)
	if got == nil {
		return false
	}
	return subtle.ConstantTimeCompare(want, got) == 1
}
