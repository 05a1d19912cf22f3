package store

import (
	"sync"
	"time"

	"github.com/hooklift/codegrant/types"
)

type memoryGrantEntry struct {
	grant   types.GrantRecord
	expires time.Time
}

// Memory is a mutex-guarded, in-process GrantStore and NonceStore. It is
// suitable for a single-instance host or for tests; it does not survive a
// restart and does not coordinate across processes.
type Memory struct {
	ttl time.Duration

	mu     sync.Mutex
	grants map[string]memoryGrantEntry
	nonces map[string]time.Time
}

// NewMemory returns a Memory store whose grants expire after ttl. A ttl of
// zero uses DefaultGrantTTL.
func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = DefaultGrantTTL
	}
	return &Memory{
		ttl:    ttl,
		grants: make(map[string]memoryGrantEntry),
		nonces: make(map[string]time.Time),
	}
}

// StoreGrant records grant, single-use, expiring after the store's TTL.
func (m *Memory) StoreGrant(grant types.GrantRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.grants[grant.Code] = memoryGrantEntry{
		grant:   grant,
		expires: time.Now().Add(m.ttl),
	}
	return nil
}

// ConsumeGrant atomically retrieves and deletes the GrantRecord for code.
// It returns (nil, nil) if code is unknown, already consumed, or expired.
func (m *Memory) ConsumeGrant(code string) (*types.GrantRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.grants[code]
	if !ok {
		return nil, nil
	}
	delete(m.grants, code)
	if time.Now().After(entry.expires) {
		return nil, nil
	}
	g := entry.grant
	return &g, nil
}

// StoreNonce records nonce as issued, expiring after the store's TTL.
func (m *Memory) StoreNonce(nonce string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nonces[nonce] = time.Now().Add(m.ttl)
	return nil
}

// ConsumeNonce reports whether nonce was previously stored and not yet
// expired, and invalidates it either way.
func (m *Memory) ConsumeNonce(nonce string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	expires, ok := m.nonces[nonce]
	delete(m.nonces, nonce)
	if !ok {
		return false, nil
	}
	return time.Now().Before(expires), nil
}
