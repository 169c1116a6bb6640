package srp

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math/big"
)

// Value is implemented by Int and Fixed. It lets arithmetic accept either
// form as an operand.
type Value interface {
	bigInt() *big.Int
}

// Int is an arbitrary-precision integer that has no canonical hex width.
// Sums, differences and products are Ints until they are reduced modulo a
// Fixed modulus. An Int cannot be serialized or hashed.
//
// Every operation allocates its result; operands are never modified.
type Int struct {
	v *big.Int
}

// Fixed is a non-negative integer bound to a canonical hex width. Only Fixed
// values serialize to hex and take part in hashing.
type Fixed struct {
	Int
	width int
}

// Zero is the width-less integer 0.
var Zero = Int{v: new(big.Int)}

var bigZero = new(big.Int)

func (x Int) bigInt() *big.Int {
	if x.v == nil {
		return bigZero
	}
	return x.v
}

// Add returns x + y.
func (x Int) Add(y Value) Int {
	return Int{v: new(big.Int).Add(x.bigInt(), y.bigInt())}
}

// Sub returns x - y. The result may be negative; reduce it with Mod before
// serializing.
func (x Int) Sub(y Value) Int {
	return Int{v: new(big.Int).Sub(x.bigInt(), y.bigInt())}
}

// Mul returns x * y.
func (x Int) Mul(y Value) Int {
	return Int{v: new(big.Int).Mul(x.bigInt(), y.bigInt())}
}

// Xor returns the bitwise exclusive or of x and y.
func (x Int) Xor(y Value) Int {
	return Int{v: new(big.Int).Xor(x.bigInt(), y.bigInt())}
}

// Mod returns the Euclidean remainder of x modulo m, bound to m's width.
func (x Int) Mod(m Fixed) Fixed {
	return Fixed{Int: Int{v: new(big.Int).Mod(x.bigInt(), m.bigInt())}, width: m.width}
}

// ModPow returns x^e mod m, bound to m's width.
//
// For odd moduli math/big uses fixed-window Montgomery exponentiation, so the
// sequence of multiplications does not depend on the exponent bits. Table
// lookups and word arithmetic are not constant time.
func (x Int) ModPow(e Value, m Fixed) Fixed {
	return Fixed{Int: Int{v: new(big.Int).Exp(x.bigInt(), e.bigInt(), m.bigInt())}, width: m.width}
}

// Equal reports whether x and y hold the same integer, regardless of width.
func (x Int) Equal(y Value) bool {
	return x.bigInt().Cmp(y.bigInt()) == 0
}

// IsZero reports whether x is 0.
func (x Int) IsZero() bool {
	return x.bigInt().Sign() == 0
}

// String implements fmt.Stringer for debugging. It prints the magnitude in
// hex without padding.
func (x Int) String() string {
	return x.bigInt().Text(16)
}

// wipe overwrites the limbs of x. It is only used on values the caller owns.
func (x Int) wipe() {
	if x.v == nil {
		return
	}
	words := x.v.Bits()
	for i := range words {
		words[i] = 0
	}
	x.v.SetInt64(0)
}

// FromHex parses canonical protocol hex: an even number of hex digits with no
// prefix or sign. Upper-case digits are accepted; Hex always emits lower
// case. The canonical width of the result is len(s).
func FromHex(s string) (Fixed, error) {
	if s == "" {
		return Fixed{}, &FormatError{Err: errors.New("empty string")}
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return Fixed{}, &FormatError{Err: err}
	}
	return fixedFromBytes(b, len(s)), nil
}

// RandomFixed returns an integer drawn from n bytes of crypto/rand output,
// with a canonical width of 2n hex digits.
func RandomFixed(n int) (Fixed, error) {
	return randomFixed(rand.Reader, n)
}

func randomFixed(r io.Reader, n int) (Fixed, error) {
	if n <= 0 {
		return Fixed{}, fmt.Errorf("srp: random integer size must be positive, got %d", n)
	}
	buf := make([]byte, n)
	defer clear(buf)
	if _, err := io.ReadFull(r, buf); err != nil {
		return Fixed{}, fmt.Errorf("srp: failed to read random bytes: %w", err)
	}
	return fixedFromBytes(buf, 2*n), nil
}

func fixedFromBytes(b []byte, width int) Fixed {
	return Fixed{Int: Int{v: new(big.Int).SetBytes(b)}, width: width}
}

// Width returns the canonical hex width of x.
func (x Fixed) Width() int {
	return x.width
}

// Xor returns the bitwise exclusive or of x and y, bound to x's width.
func (x Fixed) Xor(y Value) Fixed {
	return Fixed{Int: x.Int.Xor(y), width: x.width}
}

// Bytes returns the big-endian encoding of x, left-padded to width/2 bytes.
// It panics with ErrUnspecifiedWidth if x has no width or does not fit.
func (x Fixed) Bytes() []byte {
	v := x.bigInt()
	if x.width <= 0 || x.width%2 != 0 {
		panic(fmt.Errorf("%w: width %d", ErrUnspecifiedWidth, x.width))
	}
	if v.Sign() < 0 || (v.BitLen()+3)/4 > x.width {
		panic(fmt.Errorf("%w: value needs %d hex digits, width is %d", ErrUnspecifiedWidth, (v.BitLen()+3)/4, x.width))
	}
	return v.FillBytes(make([]byte, x.width/2))
}

// Hex returns x as lower-case hex, left-padded with zeros to its width.
// It panics with ErrUnspecifiedWidth under the same conditions as Bytes.
func (x Fixed) Hex() string {
	return hex.EncodeToString(x.Bytes())
}

// fits reports whether x can be written in width hex digits.
func (x Int) fits(width int) bool {
	v := x.bigInt()
	return v.Sign() >= 0 && (v.BitLen()+3)/4 <= width
}

// padded returns x encoded in width/2 bytes, or nil if it does not fit.
func (x Int) padded(width int) []byte {
	if !x.fits(width) {
		return nil
	}
	return x.bigInt().FillBytes(make([]byte, width/2))
}
