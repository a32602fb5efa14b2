package entrystore

import "errors"

// Config holds configuration options for the entry store.
type Config struct {
	// Backend specifies the storage backend to use.
	Backend string `json:"backend" yaml:"backend"`

	// Path specifies the file system path for data storage.
	Path string `json:"path" yaml:"path"`

	// CacheSize is the number of decoded records kept in the read cache.
	CacheSize int `json:"cache_size" yaml:"cache_size"`

	// Compressor names the value compression algorithm.
	Compressor string `json:"compressor" yaml:"compressor"`

	// CreateIfMissing creates the storage path on open.
	CreateIfMissing bool `json:"create_if_missing" yaml:"create_if_missing"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Backend:         "pebble",
		Path:            "./entrystore",
		CacheSize:       2048,
		Compressor:      "lz4",
		CreateIfMissing: true,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Backend == "" {
		return errors.New("backend must be specified")
	}
	if c.Backend != "memory" && c.Path == "" {
		return errors.New("path must be specified")
	}
	if c.CacheSize < 0 {
		return errors.New("cache_size must be non-negative")
	}
	if c.Compressor == "" {
		return errors.New("compressor must be specified")
	}
	return nil
}
