// Package ledger holds the ledger state map: every program config, game
// session, token account and mint lives here, keyed by its 32-byte index.
package ledger

import (
	"errors"
	"sync"

	"github.com/refereehq/refereed/internal/core/ledger/entry"
	"github.com/refereehq/refereed/internal/core/ledger/keylet"
)

var (
	ErrEntryExists   = errors.New("ledger: entry already exists")
	ErrEntryNotFound = errors.New("ledger: entry not found")
)

type storedEntry struct {
	entryType entry.Type
	data      []byte
}

// Ledger is the in-memory state map. It implements tx.LedgerView, so the
// transaction engine can apply directly to it; concurrent readers are safe,
// and the engine serializes writers above this layer.
type Ledger struct {
	mu      sync.RWMutex
	seq     uint64
	entries map[[32]byte]storedEntry
}

// New creates an empty ledger at sequence zero.
func New() *Ledger {
	return &Ledger{entries: make(map[[32]byte]storedEntry)}
}

// Seq returns the current ledger sequence.
func (l *Ledger) Seq() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.seq
}

// BumpSeq advances the ledger sequence by one and returns the new value.
// Called once per applied transaction.
func (l *Ledger) BumpSeq() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq++
	return l.seq
}

// SetSeq restores the sequence counter, used when reloading persisted state.
func (l *Ledger) SetSeq(seq uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq = seq
}

// EntryCount returns the number of live entries.
func (l *Ledger) EntryCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Read reads a ledger entry. A missing entry reads as (nil, nil).
func (l *Ledger) Read(k keylet.Keylet) ([]byte, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	stored, ok := l.entries[k.Key]
	if !ok {
		return nil, nil
	}
	data := make([]byte, len(stored.data))
	copy(data, stored.data)
	return data, nil
}

// Exists checks if an entry exists.
func (l *Ledger) Exists(k keylet.Keylet) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.entries[k.Key]
	return ok, nil
}

// Insert adds a new entry. Inserting over a live entry fails.
func (l *Ledger) Insert(k keylet.Keylet, data []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.entries[k.Key]; ok {
		return ErrEntryExists
	}
	stored := make([]byte, len(data))
	copy(stored, data)
	l.entries[k.Key] = storedEntry{entryType: k.Type, data: stored}
	return nil
}

// Update modifies an existing entry.
func (l *Ledger) Update(k keylet.Keylet, data []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	existing, ok := l.entries[k.Key]
	if !ok {
		return ErrEntryNotFound
	}
	stored := make([]byte, len(data))
	copy(stored, data)
	l.entries[k.Key] = storedEntry{entryType: existing.entryType, data: stored}
	return nil
}

// Erase removes an entry.
func (l *Ledger) Erase(k keylet.Keylet) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.entries[k.Key]; !ok {
		return ErrEntryNotFound
	}
	delete(l.entries, k.Key)
	return nil
}

// ForEach iterates over all state entries. If fn returns false, iteration
// stops early.
func (l *Ledger) ForEach(fn func(key [32]byte, data []byte) bool) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for key, stored := range l.entries {
		if !fn(key, stored.data) {
			return nil
		}
	}
	return nil
}

// ReadRaw reads an entry by raw key, returning its type alongside the data.
// Used by the persistence layer, which works from affected-node keys rather
// than keylets.
func (l *Ledger) ReadRaw(key [32]byte) (entry.Type, []byte, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	stored, ok := l.entries[key]
	if !ok {
		return 0, nil, false
	}
	data := make([]byte, len(stored.data))
	copy(data, stored.data)
	return stored.entryType, data, true
}

// Restore installs a persisted entry without existence checks. Used only
// while rebuilding state at startup.
func (l *Ledger) Restore(key [32]byte, entryType entry.Type, data []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	stored := make([]byte, len(data))
	copy(stored, data)
	l.entries[key] = storedEntry{entryType: entryType, data: stored}
}
