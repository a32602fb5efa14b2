// Package config loads daemon configuration from defaults, an optional
// config file, and REFEREED_-prefixed environment variables.
package config

// Config is the complete daemon configuration.
type Config struct {
	DataDir string `mapstructure:"data_dir"`

	RPC     RPCConfig     `mapstructure:"rpc"`
	GRPC    GRPCConfig    `mapstructure:"grpc"`
	Store   StoreConfig   `mapstructure:"store"`
	History HistoryConfig `mapstructure:"history"`
	Genesis GenesisConfig `mapstructure:"genesis"`
	Log     LogConfig     `mapstructure:"log"`
}

// RPCConfig configures the JSON-RPC and WebSocket endpoints.
type RPCConfig struct {
	Addr           string `mapstructure:"addr"`
	WebSocketAddr  string `mapstructure:"ws_addr"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// GRPCConfig configures the gRPC endpoint.
type GRPCConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// StoreConfig configures the persistent entry store.
type StoreConfig struct {
	// Backend is memory, pebble, or leveldb.
	Backend    string `mapstructure:"backend"`
	Path       string `mapstructure:"path"`
	CacheSize  int    `mapstructure:"cache_size"`
	Compressor string `mapstructure:"compressor"`
}

// HistoryConfig configures the transaction audit log.
type HistoryConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Driver is sqlite or postgres.
	Driver string `mapstructure:"driver"`
	// DSN is the driver connection string; for sqlite an empty DSN puts
	// the database under the data directory.
	DSN string `mapstructure:"dsn"`
}

// GenesisConfig configures the seeded ledger.
type GenesisConfig struct {
	MintTag  string           `mapstructure:"mint_tag"`
	Decimals uint8            `mapstructure:"decimals"`
	Accounts []GenesisAccount `mapstructure:"accounts"`
}

// GenesisAccount is one pre-funded balance.
type GenesisAccount struct {
	Address string `mapstructure:"address"`
	Balance uint64 `mapstructure:"balance"`
}

// LogConfig configures logging output.
type LogConfig struct {
	// Level is debug, info, warn, or error.
	Level string `mapstructure:"level"`
	// Format is text or json.
	Format string `mapstructure:"format"`
}
