package auth

import "context"

// SecurityProvider handles the token exchange behind Negotiate
// authentication.
//
// Implementations are NOT safe for concurrent use; the provider keeps state
// across the legs of one handshake.
//
// The typical flow is:
//  1. Step(nil) returns the initial token.
//  2. The token is sent to the server, which answers with a challenge.
//  3. Step(challenge) returns the response token.
//  4. Repeat until continueNeeded is false.
type SecurityProvider interface {
	// Step processes an input token (challenge) and produces an output
	// token. On the first call inputToken is nil.
	Step(ctx context.Context, inputToken []byte) (outputToken []byte, continueNeeded bool, err error)

	// Complete returns true once the security context is established.
	Complete() bool

	// Close releases any resources held by the provider.
	Close() error
}
