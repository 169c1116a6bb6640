// Package srp implements the Secure Remote Password protocol, version 6a, as
// profiled by RFC 5054.
//
// All values cross the API as lower-case hex strings. Integers that are sent
// over the wire or hashed carry a canonical width (see Fixed); N, g and every
// value reduced modulo N are padded to the width of N.
//
// Registration:
//
//	client := srp.NewClient(params)
//	salt, _ := client.GenerateSalt()
//	x := stretch(password, salt)        // any key derivation, hex encoded
//	verifier, _ := client.DeriveVerifier(x)
//	// store username, salt, verifier
//
// Login:
//
//	attempt, _ := client.Begin()            // send attempt.Public() as A
//	srv, _ := server.Begin(verifier)        // send srv.Public() as B, with the salt
//	session, _ := attempt.DeriveSession(B, salt, username, x)
//	reply, err := srv.Verify(A, salt, username, session.Proof)
//	err = attempt.Verify(reply.Proof)
//
// Both sides then share the session key K. An attempt that fails any step is
// rejected and must not be reused.
package srp
