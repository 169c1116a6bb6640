// Package auth provides the server-side plumbing around the SRP protocol:
// verifier records and their storage, pending login attempts, failure rate
// limiting, and the Authenticator that ties them together.
//
//go:generate go tool mockgen -destination=mock_store.go -package=auth github.com/fzdarsky/srpkit/internal/auth VerifierStore
package auth
