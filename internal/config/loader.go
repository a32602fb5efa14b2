package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Load builds a Config from defaults, the optional config file at path, and
// REFEREED_-prefixed environment variables, in that priority order.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix("REFEREED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	applyDataDir(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", "./data")

	v.SetDefault("rpc.addr", "127.0.0.1:5005")
	v.SetDefault("rpc.ws_addr", "127.0.0.1:6006")
	v.SetDefault("rpc.timeout_seconds", 30)

	v.SetDefault("grpc.enabled", false)
	v.SetDefault("grpc.addr", "127.0.0.1:50051")

	v.SetDefault("store.backend", "pebble")
	v.SetDefault("store.path", "")
	v.SetDefault("store.cache_size", 2048)
	v.SetDefault("store.compressor", "lz4")

	v.SetDefault("history.enabled", true)
	v.SetDefault("history.driver", "sqlite")
	v.SetDefault("history.dsn", "")

	v.SetDefault("genesis.mint_tag", "refereed-settlement")
	v.SetDefault("genesis.decimals", 6)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// applyDataDir fills in paths left empty so everything lands under DataDir.
func applyDataDir(cfg *Config) {
	if cfg.Store.Path == "" && cfg.Store.Backend != "memory" {
		cfg.Store.Path = cfg.DataDir + "/entrystore"
	}
	if cfg.History.DSN == "" && cfg.History.Driver == "sqlite" {
		cfg.History.DSN = cfg.DataDir + "/history.db"
	}
}
