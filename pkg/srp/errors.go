package srp

import (
	"errors"
	"fmt"
)

var (
	// ErrFormat is matched by every *FormatError.
	ErrFormat = errors.New("srp: malformed hex input")

	// ErrUnspecifiedWidth is the panic value when an integer without a usable
	// canonical width is serialized. It indicates a programming error.
	ErrUnspecifiedWidth = errors.New("srp: integer has no canonical width")

	// ErrInvalidPublicEphemeral is returned when the peer's public ephemeral
	// is congruent to zero modulo N. The attempt must be abandoned.
	ErrInvalidPublicEphemeral = errors.New("srp: invalid public ephemeral")

	// ErrInvalidClientProof is returned by the server when the client's
	// session proof does not match.
	ErrInvalidClientProof = errors.New("srp: client session proof is invalid")

	// ErrInvalidServerProof is returned by the client when the server's
	// session proof does not match.
	ErrInvalidServerProof = errors.New("srp: server session proof is invalid")

	// ErrInvalidState is returned when an attempt is driven out of order or
	// reused after it has finished.
	ErrInvalidState = errors.New("srp: attempt is not in a valid state for this operation")
)

// FormatError reports a value that is not canonical protocol hex.
// The offending input is deliberately not retained since it may be secret.
type FormatError struct {
	Field string // protocol name of the value, e.g. "salt" or "B"
	Err   error  // underlying decode error
}

func (e *FormatError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("srp: invalid hex: %v", e.Err)
	}
	return fmt.Sprintf("srp: %s is not valid hex: %v", e.Field, e.Err)
}

// Unwrap returns the underlying decode error.
func (e *FormatError) Unwrap() error { return e.Err }

// Is reports whether target is ErrFormat.
func (e *FormatError) Is(target error) bool { return target == ErrFormat }
