package entrystore

import (
	"context"
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/refereehq/refereed/internal/core/ledger/entry"
	"github.com/refereehq/refereed/internal/storage/entrystore/compression"
)

// Statistics holds performance metrics for the entry store.
type Statistics struct {
	Reads       uint64
	Writes      uint64
	Deletes     uint64
	CacheHits   uint64
	CacheMisses uint64
	BackendName string
}

// Store is the entry store: an LRU read cache over a compressing backend.
type Store struct {
	backend    Backend
	compressor compression.Compressor
	cache      *lru.Cache[[32]byte, Record]

	reads     atomic.Uint64
	writes    atomic.Uint64
	deletes   atomic.Uint64
	cacheHits atomic.Uint64
	cacheMiss atomic.Uint64
}

// Open creates and opens an entry store for the given configuration.
func Open(config *Config) (*Store, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	compressor, err := compression.Get(config.Compressor)
	if err != nil {
		return nil, err
	}

	backend, err := CreateBackend(config.Backend, config)
	if err != nil {
		return nil, err
	}
	if err := backend.Open(config.CreateIfMissing); err != nil {
		return nil, err
	}

	cacheSize := config.CacheSize
	if cacheSize == 0 {
		cacheSize = DefaultConfig().CacheSize
	}
	cache, err := lru.New[[32]byte, Record](cacheSize)
	if err != nil {
		backend.Close()
		return nil, err
	}

	return &Store{
		backend:    backend,
		compressor: compressor,
		cache:      cache,
	}, nil
}

func (s *Store) encode(record Record) ([]byte, error) {
	payload, err := s.compressor.Compress(record.Data)
	if err != nil {
		return nil, err
	}
	if len(payload) >= len(record.Data) {
		return encodeValue(record.Type, false, len(record.Data), record.Data), nil
	}
	return encodeValue(record.Type, true, len(record.Data), payload), nil
}

func (s *Store) decode(key [32]byte, value []byte) (Record, error) {
	entryType, compressed, originalSize, payload, err := decodeValue(value)
	if err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	data := payload
	if compressed {
		data, err = s.compressor.Decompress(payload, originalSize)
		if err != nil {
			return Record{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
	}
	return Record{Key: key, Type: entryType, Data: data}, nil
}

// Fetch retrieves a record by its ledger index.
func (s *Store) Fetch(ctx context.Context, key [32]byte) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	s.reads.Add(1)

	if record, ok := s.cache.Get(key); ok {
		s.cacheHits.Add(1)
		return record, nil
	}
	s.cacheMiss.Add(1)

	value, status := s.backend.Fetch(key)
	if status != StatusOK {
		return Record{}, statusError(status)
	}
	record, err := s.decode(key, value)
	if err != nil {
		return Record{}, err
	}
	s.cache.Add(key, record)
	return record, nil
}

// Store persists a record, replacing any previous value under its key.
func (s *Store) Store(ctx context.Context, record Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.writes.Add(1)

	value, err := s.encode(record)
	if err != nil {
		return err
	}
	if status := s.backend.Store(record.Key, value); status != StatusOK {
		return statusError(status)
	}
	s.cache.Add(record.Key, record)
	return nil
}

// StoreBatch persists multiple records in a single backend write.
func (s *Store) StoreBatch(ctx context.Context, records []Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	keys := make([][32]byte, len(records))
	values := make([][]byte, len(records))
	for i, record := range records {
		value, err := s.encode(record)
		if err != nil {
			return err
		}
		keys[i] = record.Key
		values[i] = value
	}
	if status := s.backend.StoreBatch(keys, values); status != StatusOK {
		return statusError(status)
	}
	s.writes.Add(uint64(len(records)))
	for _, record := range records {
		s.cache.Add(record.Key, record)
	}
	return nil
}

// Delete removes a record. Deleting a missing record is not an error.
func (s *Store) Delete(ctx context.Context, key [32]byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.deletes.Add(1)
	s.cache.Remove(key)
	if status := s.backend.Delete(key); status != StatusOK {
		return statusError(status)
	}
	return nil
}

// ForEach iterates over every stored record. Used to rebuild the in-memory
// state map at startup.
func (s *Store) ForEach(ctx context.Context, fn func(record Record) error) error {
	return s.backend.ForEach(func(key [32]byte, value []byte) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		record, err := s.decode(key, value)
		if err != nil {
			return err
		}
		return fn(record)
	})
}

// CountByType tallies stored records per entry type.
func (s *Store) CountByType(ctx context.Context) (map[entry.Type]int, error) {
	counts := make(map[entry.Type]int)
	err := s.ForEach(ctx, func(record Record) error {
		counts[record.Type]++
		return nil
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}

// Sync flushes pending backend writes.
func (s *Store) Sync() error {
	return statusError(s.backend.Sync())
}

// Stats returns a snapshot of the store's counters.
func (s *Store) Stats() Statistics {
	return Statistics{
		Reads:       s.reads.Load(),
		Writes:      s.writes.Load(),
		Deletes:     s.deletes.Load(),
		CacheHits:   s.cacheHits.Load(),
		CacheMisses: s.cacheMiss.Load(),
		BackendName: s.backend.Name(),
	}
}

// Close flushes and closes the underlying backend.
func (s *Store) Close() error {
	s.cache.Purge()
	if status := s.backend.Sync(); status != StatusOK {
		s.backend.Close()
		return statusError(status)
	}
	return s.backend.Close()
}
