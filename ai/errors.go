package ai

import "errors"

var (
	// ErrNoCredentials indicates a remote backend was configured without
	// any API keys. This is fatal at startup.
	ErrNoCredentials = errors.New("ai config: at least one API key required for remote backend")

	// ErrCredentialsExhausted indicates every credential in the pool
	// failed for a single generation call.
	ErrCredentialsExhausted = errors.New("all credentials exhausted")
)
