package testutil

import (
	"sync"

	"github.com/hooklift/codegrant/types"
)

// FakeClient is an in-memory stand-in for a client host's ce.Capabilities
// implementation. ce is deliberately not imported here, for the same
// reason FakeHost does not import ae.
type FakeClient struct {
	mu sync.Mutex

	Self        *types.ClientRecord
	RedirectURI string
	Nonces      map[string]bool
}

// NewFakeClient returns a FakeClient registered as self, expecting
// redirects back to redirectURI.
func NewFakeClient(self *types.ClientRecord, redirectURI string) *FakeClient {
	return &FakeClient{
		Self:        self,
		RedirectURI: redirectURI,
		Nonces:      make(map[string]bool),
	}
}

func (c *FakeClient) OwnClientRecord() (*types.ClientRecord, error) {
	return c.Self, nil
}

func (c *FakeClient) OwnRedirectURI() (string, error) {
	return c.RedirectURI, nil
}

func (c *FakeClient) StoreNonce(nonce string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Nonces[nonce] = true
	return nil
}

func (c *FakeClient) ConsumeNonce(nonce string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.Nonces[nonce] {
		return false, nil
	}
	delete(c.Nonces, nonce)
	return true, nil
}
