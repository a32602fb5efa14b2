// Package entrystore provides persistent key-value storage for ledger state
// entries. Entries are keyed by their 32-byte ledger index and carry their
// entry type so the full state map can be rebuilt at startup. Values are
// optionally compressed before they reach the backend.
package entrystore

import (
	"encoding/binary"
	"fmt"

	"github.com/refereehq/refereed/internal/core/ledger/entry"
)

// Record is one stored ledger entry.
type Record struct {
	Key  [32]byte
	Type entry.Type
	Data []byte
}

// recordHeaderSize is type + compressed flag + original length.
const recordHeaderSize = 2 + 1 + 4

// Status reports the outcome of a backend operation.
type Status int

const (
	StatusOK Status = iota
	StatusNotFound
	StatusCorrupt
	StatusBackendError
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNotFound:
		return "not found"
	case StatusCorrupt:
		return "corrupt"
	case StatusBackendError:
		return "backend error"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Backend is a raw key-value store the entry store writes encoded records to.
type Backend interface {
	// Name returns a human-readable name for this backend.
	Name() string

	// Open opens the backend for use.
	Open(createIfMissing bool) error

	// Close closes the backend and releases resources.
	Close() error

	// Fetch retrieves a single value by key.
	Fetch(key [32]byte) ([]byte, Status)

	// Store saves a single value.
	Store(key [32]byte, value []byte) Status

	// StoreBatch saves multiple values in one write.
	StoreBatch(keys [][32]byte, values [][]byte) Status

	// Delete removes a value by key.
	Delete(key [32]byte) Status

	// ForEach iterates over every stored key-value pair.
	ForEach(fn func(key [32]byte, value []byte) error) error

	// Sync forces pending writes to be flushed.
	Sync() Status
}

func encodeValue(entryType entry.Type, compressed bool, originalSize int, payload []byte) []byte {
	value := make([]byte, recordHeaderSize+len(payload))
	binary.BigEndian.PutUint16(value[0:2], uint16(entryType))
	if compressed {
		value[2] = 1
	}
	binary.BigEndian.PutUint32(value[3:7], uint32(originalSize))
	copy(value[recordHeaderSize:], payload)
	return value
}

func decodeValue(value []byte) (entryType entry.Type, compressed bool, originalSize int, payload []byte, err error) {
	if len(value) < recordHeaderSize {
		return 0, false, 0, nil, fmt.Errorf("entrystore: value truncated (%d bytes)", len(value))
	}
	entryType = entry.Type(binary.BigEndian.Uint16(value[0:2]))
	compressed = value[2] == 1
	originalSize = int(binary.BigEndian.Uint32(value[3:7]))
	payload = value[recordHeaderSize:]
	return entryType, compressed, originalSize, payload, nil
}
