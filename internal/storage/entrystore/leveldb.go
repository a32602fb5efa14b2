package entrystore

import (
	"errors"
	"fmt"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	leveldberrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

// LevelDBBackend stores records in a LevelDB instance. Kept as an
// alternative to pebble for deployments that prefer its on-disk format.
type LevelDBBackend struct {
	mu     sync.RWMutex
	db     *leveldb.DB
	config *Config
}

// NewLevelDBBackend creates a new LevelDB backend.
func NewLevelDBBackend(config *Config) (Backend, error) {
	if config == nil {
		config = DefaultConfig()
	}
	return &LevelDBBackend{config: config}, nil
}

func (l *LevelDBBackend) Name() string {
	return fmt.Sprintf("leveldb(%s)", l.config.Path)
}

func (l *LevelDBBackend) Open(createIfMissing bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.db != nil {
		return ErrAlreadyOpen
	}
	opts := &opt.Options{
		ErrorIfMissing: !createIfMissing,
	}
	db, err := leveldb.OpenFile(l.config.Path, opts)
	if err != nil {
		return fmt.Errorf("failed to open leveldb at %s: %w", l.config.Path, err)
	}
	l.db = db
	return nil
}

func (l *LevelDBBackend) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.db == nil {
		return nil
	}
	err := l.db.Close()
	l.db = nil
	return err
}

func (l *LevelDBBackend) Fetch(key [32]byte) ([]byte, Status) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.db == nil {
		return nil, StatusBackendError
	}
	value, err := l.db.Get(key[:], nil)
	if errors.Is(err, leveldberrors.ErrNotFound) {
		return nil, StatusNotFound
	}
	if err != nil {
		return nil, StatusBackendError
	}
	return value, StatusOK
}

func (l *LevelDBBackend) Store(key [32]byte, value []byte) Status {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.db == nil {
		return StatusBackendError
	}
	if err := l.db.Put(key[:], value, nil); err != nil {
		return StatusBackendError
	}
	return StatusOK
}

func (l *LevelDBBackend) StoreBatch(keys [][32]byte, values [][]byte) Status {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.db == nil {
		return StatusBackendError
	}
	batch := new(leveldb.Batch)
	for i, key := range keys {
		batch.Put(key[:], values[i])
	}
	if err := l.db.Write(batch, nil); err != nil {
		return StatusBackendError
	}
	return StatusOK
}

func (l *LevelDBBackend) Delete(key [32]byte) Status {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.db == nil {
		return StatusBackendError
	}
	if err := l.db.Delete(key[:], nil); err != nil {
		return StatusBackendError
	}
	return StatusOK
}

func (l *LevelDBBackend) ForEach(fn func(key [32]byte, value []byte) error) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.db == nil {
		return ErrNotOpen
	}
	iter := l.db.NewIterator(nil, nil)
	defer iter.Release()

	for iter.Next() {
		if len(iter.Key()) != 32 {
			continue
		}
		var key [32]byte
		copy(key[:], iter.Key())
		value := make([]byte, len(iter.Value()))
		copy(value, iter.Value())
		if err := fn(key, value); err != nil {
			return err
		}
	}
	return iter.Error()
}

func (l *LevelDBBackend) Sync() Status {
	return StatusOK
}
