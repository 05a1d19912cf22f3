package main

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/hooklift/codegrant/store"
)

const (
	defaultBindHost         = ""
	defaultBindPort         = 8080
	defaultAuthzPath        = "/authorize"
	defaultTokenPath        = "/token"
	defaultGrantTTLSecs     = 600
	defaultTokenLifetimeSec = 3600
)

// config is the on-disk TOML configuration for the codegrantd daemon.
type config struct {
	BindHost          string            `toml:"bind-host"`
	BindPort          int               `toml:"bind-port"`
	AuthzPath         string            `toml:"authz-path"`
	TokenPath         string            `toml:"token-path"`
	ClientsFile       string            `toml:"clients-file"`
	LogJSON           bool              `toml:"log-json-output"`
	GrantTTLSecs      int               `toml:"grant-ttl-secs"`
	TokenLifetimeSecs int64             `toml:"token-lifetime-secs"`
	Redis             *store.RedisConfig `toml:"redis"`
}

// loadConfig returns a config with reasonable defaults, overridden by the
// TOML file at path if path is non-empty.
func loadConfig(path string) (*config, error) {
	cfg := &config{
		BindHost:          defaultBindHost,
		BindPort:          defaultBindPort,
		AuthzPath:         defaultAuthzPath,
		TokenPath:         defaultTokenPath,
		GrantTTLSecs:      defaultGrantTTLSecs,
		TokenLifetimeSecs: defaultTokenLifetimeSec,
	}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}
