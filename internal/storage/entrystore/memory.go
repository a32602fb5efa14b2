package entrystore

import (
	"sort"
	"sync"
)

// MemoryBackend keeps all records in process memory. Used for tests and for
// standalone nodes that do not need durability.
type MemoryBackend struct {
	mu      sync.RWMutex
	open    bool
	entries map[[32]byte][]byte
}

// NewMemoryBackend creates a new in-memory backend.
func NewMemoryBackend(config *Config) (Backend, error) {
	return &MemoryBackend{}, nil
}

func (m *MemoryBackend) Name() string {
	return "memory"
}

func (m *MemoryBackend) Open(createIfMissing bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.open {
		return ErrAlreadyOpen
	}
	m.entries = make(map[[32]byte][]byte)
	m.open = true
	return nil
}

func (m *MemoryBackend) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = nil
	m.open = false
	return nil
}

func (m *MemoryBackend) Fetch(key [32]byte) ([]byte, Status) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.open {
		return nil, StatusBackendError
	}
	value, ok := m.entries[key]
	if !ok {
		return nil, StatusNotFound
	}
	result := make([]byte, len(value))
	copy(result, value)
	return result, StatusOK
}

func (m *MemoryBackend) Store(key [32]byte, value []byte) Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.open {
		return StatusBackendError
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	m.entries[key] = stored
	return StatusOK
}

func (m *MemoryBackend) StoreBatch(keys [][32]byte, values [][]byte) Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.open {
		return StatusBackendError
	}
	for i, key := range keys {
		stored := make([]byte, len(values[i]))
		copy(stored, values[i])
		m.entries[key] = stored
	}
	return StatusOK
}

func (m *MemoryBackend) Delete(key [32]byte) Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.open {
		return StatusBackendError
	}
	delete(m.entries, key)
	return StatusOK
}

func (m *MemoryBackend) ForEach(fn func(key [32]byte, value []byte) error) error {
	m.mu.RLock()
	keys := make([][32]byte, 0, len(m.entries))
	for key := range m.entries {
		keys = append(keys, key)
	}
	m.mu.RUnlock()

	// Deterministic iteration order keeps state reconstruction reproducible.
	sort.Slice(keys, func(i, j int) bool {
		for b := range keys[i] {
			if keys[i][b] != keys[j][b] {
				return keys[i][b] < keys[j][b]
			}
		}
		return false
	})

	for _, key := range keys {
		m.mu.RLock()
		value, ok := m.entries[key]
		m.mu.RUnlock()
		if !ok {
			continue
		}
		if err := fn(key, value); err != nil {
			return err
		}
	}
	return nil
}

func (m *MemoryBackend) Sync() Status {
	return StatusOK
}
