package main

import (
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/hooklift/codegrant/clientstore"
	"github.com/hooklift/codegrant/store"
	"github.com/hooklift/codegrant/types"
)

// host is the reference ae.Capabilities implementation codegrantd wires up:
// clients come from a TOML registry, grants from a GrantStore (memory or
// Redis), and authorization codes/access tokens are opaque UUIDs.
type host struct {
	clients       clientstore.Map
	grants        store.GrantStore
	tokenLifetime int64
}

func newHost(clients clientstore.Map, grants store.GrantStore, tokenLifetimeSecs int64) *host {
	return &host{clients: clients, grants: grants, tokenLifetime: tokenLifetimeSecs}
}

func (h *host) FetchClient(clientID string) (*types.ClientRecord, error) {
	return h.clients.FetchClient(clientID)
}

func (h *host) NewAuthorizationCode() (string, error) {
	return uuid.NewString(), nil
}

func (h *host) StoreGrant(grant types.GrantRecord) error {
	return h.grants.StoreGrant(grant)
}

func (h *host) ConsumeGrant(code string) (*types.GrantRecord, error) {
	return h.grants.ConsumeGrant(code)
}

func (h *host) IssueToken(code, clientID, scope string) (*types.TokenData, error) {
	expiresIn := h.tokenLifetime
	token := &types.TokenData{
		AccessToken: uuid.NewString(),
		TokenType:   "bearer",
		ExpiresIn:   &expiresIn,
		Scope:       scope,
	}
	log.WithFields(log.Fields{"code": code, "client_id": clientID}).Info("token issued")
	return token, nil
}
