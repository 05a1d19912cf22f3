package testutil

import (
	"errors"
	"fmt"
	"sync"

	"github.com/hooklift/codegrant/types"
)

// FakeHost is an in-memory stand-in for a host's ae.Capabilities
// implementation, modeled on hooklift-oauth2's providers/test.Provider.
// It satisfies ae.Capabilities structurally; ae is deliberately not
// imported here to keep this package free of a dependency on the package
// it is used to test.
type FakeHost struct {
	mu sync.Mutex

	Clients map[string]*types.ClientRecord
	Grants  map[string]*types.GrantRecord
	Revoked map[string]bool

	// Issued records which clientID a token was issued for, keyed by the
	// authorization code it was redeemed from.
	Issued map[string]string

	// FailIssueToken, when true, makes IssueToken return ErrFakeHost. Tests
	// use this to exercise the token endpoint's issuance-failure path.
	FailIssueToken bool

	// NextCode, when non-empty, is returned by the next NewAuthorizationCode
	// call instead of a counter-derived value. Tests use this to pin the
	// generated code.
	NextCode string

	codeCounter int
	TokenScope  string
}

// NewFakeHost returns a FakeHost with no registered clients.
func NewFakeHost() *FakeHost {
	return &FakeHost{
		Clients: make(map[string]*types.ClientRecord),
		Grants:  make(map[string]*types.GrantRecord),
		Revoked: make(map[string]bool),
	}
}

// RegisterClient adds client to the fake host's registry.
func (h *FakeHost) RegisterClient(client *types.ClientRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Clients[client.ClientID] = client
}

func (h *FakeHost) FetchClient(clientID string) (*types.ClientRecord, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.Clients[clientID], nil
}

func (h *FakeHost) NewAuthorizationCode() (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.NextCode != "" {
		return h.NextCode, nil
	}
	h.codeCounter++
	return fmt.Sprintf("test-code-%d", h.codeCounter), nil
}

func (h *FakeHost) StoreGrant(grant types.GrantRecord) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	g := grant
	h.Grants[grant.Code] = &g
	return nil
}

func (h *FakeHost) ConsumeGrant(code string) (*types.GrantRecord, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	g, ok := h.Grants[code]
	if !ok {
		return nil, nil
	}
	delete(h.Grants, code)
	return g, nil
}

func (h *FakeHost) IssueToken(code, clientID, scope string) (*types.TokenData, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.FailIssueToken {
		return nil, ErrFakeHost
	}
	if h.Issued == nil {
		h.Issued = make(map[string]string)
	}
	h.Issued[code] = clientID
	expiresIn := int64(3600)
	return &types.TokenData{
		AccessToken: fmt.Sprintf("token-for-%s", clientID),
		TokenType:   "bearer",
		ExpiresIn:   &expiresIn,
		Scope:       scope,
	}, nil
}

// RevokeTokensForCode implements the optional ae.Revoker capability.
func (h *FakeHost) RevokeTokensForCode(code string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Revoked[code] = true
	return nil
}

// ErrFakeHost is returned by FailingHost methods, to exercise the
// HostError/DirectFailure server_error paths.
var ErrFakeHost = errors.New("fakehost: simulated failure")

// FailingHost satisfies ae.Capabilities but fails every call, to exercise
// server_error handling.
type FailingHost struct{}

func (FailingHost) FetchClient(string) (*types.ClientRecord, error)    { return nil, ErrFakeHost }
func (FailingHost) NewAuthorizationCode() (string, error)              { return "", ErrFakeHost }
func (FailingHost) StoreGrant(types.GrantRecord) error                 { return ErrFakeHost }
func (FailingHost) ConsumeGrant(string) (*types.GrantRecord, error)    { return nil, ErrFakeHost }
func (FailingHost) IssueToken(string, string, string) (*types.TokenData, error) {
	return nil, ErrFakeHost
}
