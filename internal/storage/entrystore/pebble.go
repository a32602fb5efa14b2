package entrystore

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/cockroachdb/pebble"
)

// PebbleBackend stores records in a PebbleDB instance. This is the default
// durable backend.
type PebbleBackend struct {
	mu     sync.RWMutex
	db     *pebble.DB
	config *Config
}

// NewPebbleBackend creates a new PebbleDB backend.
func NewPebbleBackend(config *Config) (Backend, error) {
	if config == nil {
		config = DefaultConfig()
	}
	return &PebbleBackend{config: config}, nil
}

func (p *PebbleBackend) Name() string {
	return fmt.Sprintf("pebble(%s)", p.config.Path)
}

func (p *PebbleBackend) Open(createIfMissing bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.db != nil {
		return ErrAlreadyOpen
	}
	if createIfMissing {
		if err := os.MkdirAll(p.config.Path, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", p.config.Path, err)
		}
	}
	opts := &pebble.Options{
		ErrorIfNotExists: !createIfMissing,
	}
	db, err := pebble.Open(p.config.Path, opts)
	if err != nil {
		return fmt.Errorf("failed to open pebble at %s: %w", p.config.Path, err)
	}
	p.db = db
	return nil
}

func (p *PebbleBackend) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.db == nil {
		return nil
	}
	err := p.db.Close()
	p.db = nil
	return err
}

func (p *PebbleBackend) Fetch(key [32]byte) ([]byte, Status) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.db == nil {
		return nil, StatusBackendError
	}
	value, closer, err := p.db.Get(key[:])
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, StatusNotFound
	}
	if err != nil {
		return nil, StatusBackendError
	}
	result := make([]byte, len(value))
	copy(result, value)
	if err := closer.Close(); err != nil {
		return nil, StatusBackendError
	}
	return result, StatusOK
}

func (p *PebbleBackend) Store(key [32]byte, value []byte) Status {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.db == nil {
		return StatusBackendError
	}
	if err := p.db.Set(key[:], value, pebble.NoSync); err != nil {
		return StatusBackendError
	}
	return StatusOK
}

func (p *PebbleBackend) StoreBatch(keys [][32]byte, values [][]byte) Status {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.db == nil {
		return StatusBackendError
	}
	batch := p.db.NewBatch()
	defer batch.Close()
	for i, key := range keys {
		if err := batch.Set(key[:], values[i], nil); err != nil {
			return StatusBackendError
		}
	}
	if err := batch.Commit(pebble.NoSync); err != nil {
		return StatusBackendError
	}
	return StatusOK
}

func (p *PebbleBackend) Delete(key [32]byte) Status {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.db == nil {
		return StatusBackendError
	}
	if err := p.db.Delete(key[:], pebble.NoSync); err != nil {
		return StatusBackendError
	}
	return StatusOK
}

func (p *PebbleBackend) ForEach(fn func(key [32]byte, value []byte) error) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.db == nil {
		return ErrNotOpen
	}
	iter, err := p.db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return err
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		if len(iter.Key()) != 32 {
			continue
		}
		var key [32]byte
		copy(key[:], iter.Key())
		value, err := iter.ValueAndErr()
		if err != nil {
			return err
		}
		if err := fn(key, value); err != nil {
			return err
		}
	}
	return iter.Error()
}

func (p *PebbleBackend) Sync() Status {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.db == nil {
		return StatusBackendError
	}
	if err := p.db.Flush(); err != nil {
		return StatusBackendError
	}
	return StatusOK
}
