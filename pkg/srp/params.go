package srp

import (
	"crypto"
	"crypto/rand"
	_ "crypto/sha1" //nolint:gosec // SHA-1 is needed for RFC 5054 interop fixtures
	_ "crypto/sha256"
	_ "crypto/sha512"
	"fmt"
	"io"
	"math/big"
	"sort"
	"strings"
	"sync"
	"unicode"

	// stdlib has an enum for BLAKE2b-256; this package registers itself against it.
	_ "golang.org/x/crypto/blake2b"
)

// Group is a Diffie-Hellman group: a safe prime N and a generator g.
type Group struct {
	Name string
	N    *big.Int
	G    *big.Int
}

// Bits returns the size of N in bits.
func (grp *Group) Bits() int {
	return grp.N.BitLen()
}

// mustParseGroup builds a group from a hex modulus that may contain whitespace.
func mustParseGroup(name string, g int64, nHex string) *Group {
	clean := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, nHex)

	n, ok := new(big.Int).SetString(clean, 16)
	if !ok {
		panic(fmt.Sprintf("srp: malformed modulus for group %s", name))
	}

	return &Group{Name: name, N: n, G: big.NewInt(g)}
}

// GroupByBits returns a copy of the RFC 5054 group with an N of the given
// size.
func GroupByBits(bits int) (*Group, error) {
	grp, ok := groupsByBits[bits]
	if !ok {
		return nil, fmt.Errorf("srp: no group of %d bits (valid: %s)", bits, strings.Join(groupSizes(), ", "))
	}
	return grp.clone(), nil
}

func (grp *Group) clone() *Group {
	return &Group{
		Name: grp.Name,
		N:    new(big.Int).Set(grp.N),
		G:    new(big.Int).Set(grp.G),
	}
}

func groupSizes() []string {
	sizes := make([]int, 0, len(groupsByBits))
	for bits := range groupsByBits {
		sizes = append(sizes, bits)
	}
	sort.Ints(sizes)

	out := make([]string, len(sizes))
	for i, bits := range sizes {
		out[i] = fmt.Sprint(bits)
	}
	return out
}

var hashNames = map[string]crypto.Hash{
	"sha1":        crypto.SHA1,
	"sha256":      crypto.SHA256,
	"sha384":      crypto.SHA384,
	"sha512":      crypto.SHA512,
	"blake2b-256": crypto.BLAKE2b_256,
}

// ParseHash maps a configuration name such as "sha256" to a crypto.Hash.
func ParseHash(name string) (crypto.Hash, error) {
	h, ok := hashNames[strings.ToLower(name)]
	if !ok {
		return 0, fmt.Errorf("srp: unknown hash %q", name)
	}
	return h, nil
}

// HashName returns the configuration name of h, or h.String() if it has none.
func HashName(h crypto.Hash) string {
	for name, candidate := range hashNames {
		if candidate == h {
			return name
		}
	}
	return h.String()
}

// Params is the immutable set of values shared by the client and server:
// the group, the hash function H and the multiplier k. A Params is safe for
// concurrent use once constructed.
type Params struct {
	group  *Group
	hash   crypto.Hash
	random io.Reader
	legacy bool

	n   Fixed
	g   Fixed
	k   Fixed
	hNG Fixed // H(N) xor H(g)
}

// Option configures a Params.
type Option func(*Params)

// WithLegacyMultiplier uses the SRP-6 constant k = 3 instead of k = H(N, g).
func WithLegacyMultiplier() Option {
	return func(p *Params) {
		p.legacy = true
	}
}

// WithRandom replaces crypto/rand as the source of salts and ephemeral
// secrets. It exists for deterministic tests. Reads from r are serialized,
// so r need not be safe for concurrent use.
func WithRandom(r io.Reader) Option {
	return func(p *Params) {
		p.random = &lockedReader{r: r}
	}
}

type lockedReader struct {
	mu sync.Mutex
	r  io.Reader
}

func (l *lockedReader) Read(b []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Read(b)
}

// NewParams builds the parameter set for group and hash function h.
//
// N and g are both bound to the byte length of N, so k = H(N, PAD(g)) and
// H(g) hashes the padded generator, as in RFC 5054.
func NewParams(group *Group, h crypto.Hash, opts ...Option) (*Params, error) {
	if group == nil || group.N == nil || group.G == nil {
		return nil, fmt.Errorf("srp: group is incomplete")
	}
	if group.G.Cmp(big.NewInt(1)) <= 0 || group.G.Cmp(group.N) >= 0 {
		return nil, fmt.Errorf("srp: generator of group %s is out of range", group.Name)
	}
	if !h.Available() {
		return nil, fmt.Errorf("srp: hash %v is not available", h)
	}

	p := &Params{
		group:  group.clone(),
		hash:   h,
		random: rand.Reader,
	}
	for _, opt := range opts {
		opt(p)
	}

	width := 2 * ((group.N.BitLen() + 7) / 8)
	p.n = Fixed{Int: Int{v: new(big.Int).Set(group.N)}, width: width}
	p.g = Fixed{Int: Int{v: new(big.Int).Set(group.G)}, width: width}

	if p.legacy {
		p.k = Fixed{Int: Int{v: big.NewInt(3)}, width: width}
	} else {
		p.k = p.H(p.n, p.g)
	}
	p.hNG = p.H(p.n).Xor(p.H(p.g))

	return p, nil
}

var defaultParams = sync.OnceValue(func() *Params {
	p, err := NewParams(RFC5054Group2048, crypto.SHA256)
	if err != nil {
		panic(err)
	}
	return p
})

// DefaultParams returns the 2048-bit group with SHA-256.
func DefaultParams() *Params {
	return defaultParams()
}

// Group returns a copy of the Diffie-Hellman group.
func (p *Params) Group() *Group { return p.group.clone() }

// Hash returns the hash function H.
func (p *Params) Hash() crypto.Hash { return p.hash }

// HashSize returns the output size of H in bytes. Salts and ephemeral
// secrets are this many bytes long.
func (p *Params) HashSize() int { return p.hash.Size() }

// N returns the group modulus.
func (p *Params) N() Fixed { return p.n }

// G returns the generator, bound to N's width.
func (p *Params) G() Fixed { return p.g }

// K returns the multiplier.
func (p *Params) K() Fixed { return p.k }

// Legacy reports whether k is the SRP-6 constant 3.
func (p *Params) Legacy() bool { return p.legacy }

// randomSecret draws a secret of HashSize bytes.
func (p *Params) randomSecret() (Fixed, error) {
	return randomFixed(p.random, p.HashSize())
}
