// Package store provides reference GrantStore and NonceStore
// implementations a host can plug straight into ae.Capabilities and
// ce.Capabilities, backed either by an in-process map or by Redis.
package store

import (
	"time"

	"github.com/hooklift/codegrant/types"
)

// DefaultGrantTTL is the lifetime a stored authorization code is given
// when a host does not configure one, matching RFC 6749 section 4.1.2's
// recommendation of a maximum 10-minute lifetime.
const DefaultGrantTTL = 10 * time.Minute

// GrantStore persists and atomically consumes GrantRecords. Implementations
// satisfy the StoreGrant/ConsumeGrant half of ae.Capabilities.
type GrantStore interface {
	StoreGrant(grant types.GrantRecord) error
	ConsumeGrant(code string) (*types.GrantRecord, error)
}

// NonceStore persists and atomically consumes anti-CSRF nonces.
// Implementations satisfy the StoreNonce/ConsumeNonce half of
// ce.Capabilities.
type NonceStore interface {
	StoreNonce(nonce string) error
	ConsumeNonce(nonce string) (bool, error)
}
