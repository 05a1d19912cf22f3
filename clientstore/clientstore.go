// Package clientstore provides a TOML-declared, read-only registry of
// types.ClientRecord values, for hosts that register clients out of band
// instead of through a database.
package clientstore

import (
	"fmt"
	"net/url"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/hooklift/codegrant/types"
)

// clientConfig is a single [clients.<id>] table in the TOML source.
type clientConfig struct {
	Type        string   `toml:"type"`
	Redirects   []string `toml:"redirects"`
	Secret      string   `toml:"secret"`
	AuthnScheme string   `toml:"authn-scheme"`
}

// fileConfig is the top-level shape of a client registry file.
type fileConfig struct {
	Clients map[string]clientConfig `toml:"clients"`
}

// Map is a read-only, in-memory client registry satisfying the
// FetchClient half of ae.Capabilities and the OwnClientRecord half of
// ce.Capabilities (for a Map holding exactly one entry, as a client host
// would).
type Map map[string]*types.ClientRecord

// FetchClient looks up clientID, returning (nil, nil) if it is not
// registered.
func (m Map) FetchClient(clientID string) (*types.ClientRecord, error) {
	return m[clientID], nil
}

// FromFile parses path as a TOML client registry and returns a Map.
//
// Example:
//
//	[clients.s6BhdRkqt3]
//	type = "confidential"
//	redirects = ["https://client.example.com/cb"]
//	secret = "7Fjfp0ZBr1KtDRbnfVdmIw"
func FromFile(path string) (Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("clientstore: reading %s: %w", path, err)
	}
	return FromBytes(data)
}

// FromBytes parses data as a TOML client registry and returns a Map.
func FromBytes(data []byte) (Map, error) {
	var fc fileConfig
	if _, err := toml.Decode(string(data), &fc); err != nil {
		return nil, fmt.Errorf("clientstore: decoding toml: %w", err)
	}

	m := make(Map, len(fc.Clients))
	for id, c := range fc.Clients {
		clientType := types.ClientConfidential
		if c.Type == string(types.ClientPublic) {
			clientType = types.ClientPublic
		}
		redirects := make([]string, len(c.Redirects))
		for i, r := range c.Redirects {
			redirects[i] = normalizeRedirectURI(r)
		}
		m[id] = &types.ClientRecord{
			ClientID:     id,
			Type:         clientType,
			RedirectURIs: redirects,
			Credentials:  c.Secret,
			AuthnScheme:  c.AuthnScheme,
		}
	}
	return m, nil
}

// normalizeRedirectURI percent-decodes raw once, so a registry entry and an
// incoming redirect_uri that differ only in percent-encoding still compare
// byte-equal at the exact-match check (RFC 6749 section 4.1.2 "Exact-match
// policy"). raw is returned unchanged if it is not validly percent-encoded.
func normalizeRedirectURI(raw string) string {
	decoded, err := url.QueryUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}
