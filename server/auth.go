package server

import (
	"crypto/subtle"
	"errors"
	"net/http"
)

// SecretHeader carries the shared secret on every gated request.
const SecretHeader = "X-Secret"

var (
	// ErrMissingSecret is returned when a request has no secret header.
	ErrMissingSecret = errors.New("missing secret header")

	// ErrInvalidSecret is returned when the secret header does not match.
	ErrInvalidSecret = errors.New("invalid secret")

	// ErrSecretNotSet is returned when no secret is configured outside the
	// development environment.
	ErrSecretNotSet = errors.New("secret is not configured")
)

// Authorizer decides whether a request may reach a gated endpoint.
type Authorizer interface {
	Authorize(r *http.Request) error
}

// SecretGate authorizes requests carrying the expected shared secret in
// the X-Secret header. An empty Expected rejects every request with
// ErrSecretNotSet.
type SecretGate struct {
	Expected string
}

// Authorize implements Authorizer.
func (g SecretGate) Authorize(r *http.Request) error {
	if g.Expected == "" {
		return ErrSecretNotSet
	}

	got := r.Header.Get(SecretHeader)
	if got == "" {
		return ErrMissingSecret
	}
	if subtle.ConstantTimeCompare([]byte(got), []byte(g.Expected)) != 1 {
		return ErrInvalidSecret
	}
	return nil
}
