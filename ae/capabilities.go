// Package ae implements the Authorization Engine: the RFC 6749 section 3.1
// and 3.2 state machine shared by the authorization endpoint and the token
// endpoint. It has no knowledge of HTTP routing, resource-owner
// authentication, or storage; those are supplied by the host through
// Capabilities.
package ae

import "github.com/hooklift/codegrant/types"

// Capabilities is the embedding contract a host implements to give an
// Engine access to its client registry, its grant storage and its token
// issuance logic. Hosts compose this the way hooklift-oauth2 hosts compose
// a Provider: by injecting a concrete implementation into New, not by
// subclassing the Engine.
type Capabilities interface {
	// FetchClient looks up a registered client by client_id. It returns
	// (nil, nil) when no such client is registered.
	FetchClient(clientID string) (*types.ClientRecord, error)

	// NewAuthorizationCode mints a fresh, unpredictable authorization code.
	NewAuthorizationCode() (string, error)

	// StoreGrant records that code was issued to clientID under
	// redirectURI, so the token endpoint can later look it up and consume
	// it exactly once.
	StoreGrant(grant types.GrantRecord) error

	// ConsumeGrant atomically retrieves and invalidates the GrantRecord for
	// code. It returns (nil, nil) if code is unknown or was already
	// consumed; a GrantRecord is usable by at most one ConsumeGrant call.
	ConsumeGrant(code string) (*types.GrantRecord, error)

	// IssueToken mints an access token (and, optionally, a refresh token)
	// for clientID carrying scope. code is passed through so the host can
	// record which authorization code issuance traces back to, for later
	// revocation.
	IssueToken(code, clientID, scope string) (*types.TokenData, error)
}

// Revoker is an optional capability. When a Capabilities value also
// implements Revoker, the Engine calls RevokeTokensForCode whenever it
// detects a code being redeemed under circumstances that indicate it may
// have been compromised (RFC 6749 section 4.1.2, final paragraph).
type Revoker interface {
	RevokeTokensForCode(code string) error
}

// Engine is the Authorization Engine. It is safe for concurrent use; all
// state lives behind Capabilities.
type Engine struct {
	caps Capabilities
}

// New returns an Engine backed by caps.
func New(caps Capabilities) *Engine {
	return &Engine{caps: caps}
}
