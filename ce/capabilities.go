// Package ce implements the Client Engine: the RFC 6749 section 4.1.1 and
// 4.1.3/4.1.4 state machine a confidential client runs to start the
// authorization-code flow and to redeem the resulting code for a token. It
// has no knowledge of HTTP routing; that is supplied by the host through
// Capabilities.
package ce

import (
	"net/http"

	"github.com/hooklift/codegrant/types"
)

// Capabilities is the embedding contract a client host implements to give
// an Engine access to its own registration and its anti-CSRF nonce
// storage.
type Capabilities interface {
	// OwnClientRecord returns this client's own registration with the
	// Authorization Server.
	OwnClientRecord() (*types.ClientRecord, error)

	// OwnRedirectURI returns the redirect URI this client is registered
	// under and that it expects the Authorization Server to call back.
	OwnRedirectURI() (string, error)

	// StoreNonce persists nonce so a later ConsumeNonce call can recognize
	// it. Nonces are used as the state parameter to prevent CSRF
	// (RFC 6749 section 10.12).
	StoreNonce(nonce string) error

	// ConsumeNonce reports whether nonce was previously stored, and
	// invalidates it so it cannot be consumed twice.
	ConsumeNonce(nonce string) (bool, error)
}

// Engine is the Client Engine. It is safe for concurrent use; all state
// lives behind Capabilities.
type Engine struct {
	caps        Capabilities
	httpClient  *http.Client
	nonceSource func() (string, error)
}

// Option configures an Engine constructed with New.
type Option func(*Engine)

// WithHTTPClient overrides the http.Client used to call the token
// endpoint. The default is http.DefaultClient.
func WithHTTPClient(c *http.Client) Option {
	return func(e *Engine) { e.httpClient = c }
}

// WithNonceSource overrides how state-parameter nonces are generated. The
// default is DefaultNonceSource.
func WithNonceSource(source func() (string, error)) Option {
	return func(e *Engine) { e.nonceSource = source }
}

// New returns an Engine backed by caps.
func New(caps Capabilities, opts ...Option) *Engine {
	e := &Engine{
		caps:        caps,
		httpClient:  http.DefaultClient,
		nonceSource: DefaultNonceSource,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}
