package config

import (
	"fmt"
	"net"

	addresscodec "github.com/refereehq/refereed/internal/codec/address-codec"
)

var validBackends = map[string]bool{"memory": true, "pebble": true, "leveldb": true}
var validDrivers = map[string]bool{"sqlite": true, "postgres": true}
var validLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
var validFormats = map[string]bool{"text": true, "json": true}

// Validate checks the complete configuration.
func Validate(cfg *Config) error {
	if cfg.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}

	if err := validateAddr("rpc.addr", cfg.RPC.Addr); err != nil {
		return err
	}
	if err := validateAddr("rpc.ws_addr", cfg.RPC.WebSocketAddr); err != nil {
		return err
	}
	if cfg.RPC.TimeoutSeconds <= 0 {
		return fmt.Errorf("rpc.timeout_seconds must be positive")
	}

	if cfg.GRPC.Enabled {
		if err := validateAddr("grpc.addr", cfg.GRPC.Addr); err != nil {
			return err
		}
	}

	if !validBackends[cfg.Store.Backend] {
		return fmt.Errorf("store.backend %q is not supported", cfg.Store.Backend)
	}
	if cfg.Store.Backend != "memory" && cfg.Store.Path == "" {
		return fmt.Errorf("store.path is required for backend %q", cfg.Store.Backend)
	}
	if cfg.Store.CacheSize < 0 {
		return fmt.Errorf("store.cache_size must be non-negative")
	}

	if cfg.History.Enabled {
		if !validDrivers[cfg.History.Driver] {
			return fmt.Errorf("history.driver %q is not supported", cfg.History.Driver)
		}
		if cfg.History.DSN == "" {
			return fmt.Errorf("history.dsn is required when history is enabled")
		}
	}

	if cfg.Genesis.MintTag == "" {
		return fmt.Errorf("genesis.mint_tag is required")
	}
	for i, account := range cfg.Genesis.Accounts {
		if !addresscodec.IsValidAddress(account.Address) {
			return fmt.Errorf("genesis.accounts[%d].address %q is not a valid address", i, account.Address)
		}
	}

	if !validLevels[cfg.Log.Level] {
		return fmt.Errorf("log.level %q is not supported", cfg.Log.Level)
	}
	if !validFormats[cfg.Log.Format] {
		return fmt.Errorf("log.format %q is not supported", cfg.Log.Format)
	}
	return nil
}

func validateAddr(field, addr string) error {
	if addr == "" {
		return fmt.Errorf("%s is required", field)
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	return nil
}
