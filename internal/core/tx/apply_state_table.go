package tx

import (
	"encoding/hex"
	"fmt"

	"github.com/refereehq/refereed/internal/core/ledger/keylet"
)

// Action represents the type of modification to a ledger entry.
type Action int

const (
	// ActionCache means the entry was read but not modified.
	ActionCache Action = iota
	// ActionInsert means a new entry was created.
	ActionInsert
	// ActionModify means an existing entry was modified.
	ActionModify
	// ActionErase means an entry was deleted.
	ActionErase
)

// TrackedEntry represents a ledger entry being tracked for changes.
type TrackedEntry struct {
	Action   Action
	Keylet   keylet.Keylet
	Original []byte // original state (nil for inserts)
	Current  []byte // current state (nil after erase)
}

// ApplyStateTable wraps a LedgerView and buffers all modifications. A
// transaction runs entirely against the table; the table is committed to the
// base view only when the transaction succeeds, which makes every operation
// all-or-nothing.
type ApplyStateTable struct {
	base  LedgerView
	items map[[32]byte]*TrackedEntry
}

// NewApplyStateTable creates a new ApplyStateTable over the given base view.
func NewApplyStateTable(base LedgerView) *ApplyStateTable {
	return &ApplyStateTable{
		base:  base,
		items: make(map[[32]byte]*TrackedEntry),
	}
}

// Read reads a ledger entry, tracking it as cached.
func (t *ApplyStateTable) Read(k keylet.Keylet) ([]byte, error) {
	if item, ok := t.items[k.Key]; ok {
		if item.Action == ActionErase {
			return nil, nil
		}
		return item.Current, nil
	}

	data, err := t.base.Read(k)
	if err != nil {
		return nil, err
	}
	if data != nil {
		t.items[k.Key] = &TrackedEntry{
			Action:   ActionCache,
			Keylet:   k,
			Original: data,
			Current:  data,
		}
	}
	return data, nil
}

// Exists checks if an entry exists.
func (t *ApplyStateTable) Exists(k keylet.Keylet) (bool, error) {
	if item, ok := t.items[k.Key]; ok {
		return item.Action != ActionErase, nil
	}
	return t.base.Exists(k)
}

// Insert adds a new entry.
func (t *ApplyStateTable) Insert(k keylet.Keylet, data []byte) error {
	if item, ok := t.items[k.Key]; ok {
		if item.Action != ActionErase {
			return fmt.Errorf("entry %s already exists", hex.EncodeToString(k.Key[:]))
		}
		// Re-inserting a deleted entry becomes a modify.
		item.Action = ActionModify
		item.Current = data
		return nil
	}

	exists, err := t.base.Exists(k)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("entry %s already exists", hex.EncodeToString(k.Key[:]))
	}

	t.items[k.Key] = &TrackedEntry{
		Action:  ActionInsert,
		Keylet:  k,
		Current: data,
	}
	return nil
}

// Update modifies an existing entry.
func (t *ApplyStateTable) Update(k keylet.Keylet, data []byte) error {
	if item, ok := t.items[k.Key]; ok {
		if item.Action == ActionErase {
			return fmt.Errorf("entry %s was erased", hex.EncodeToString(k.Key[:]))
		}
		if item.Action == ActionCache {
			item.Action = ActionModify
		}
		item.Current = data
		return nil
	}

	original, err := t.base.Read(k)
	if err != nil {
		return err
	}
	if original == nil {
		return fmt.Errorf("entry %s does not exist", hex.EncodeToString(k.Key[:]))
	}

	t.items[k.Key] = &TrackedEntry{
		Action:   ActionModify,
		Keylet:   k,
		Original: original,
		Current:  data,
	}
	return nil
}

// Erase removes an entry.
func (t *ApplyStateTable) Erase(k keylet.Keylet) error {
	if item, ok := t.items[k.Key]; ok {
		switch item.Action {
		case ActionErase:
			return fmt.Errorf("entry %s was already erased", hex.EncodeToString(k.Key[:]))
		case ActionInsert:
			// Inserting then erasing within one transaction cancels out.
			delete(t.items, k.Key)
			return nil
		default:
			item.Action = ActionErase
			item.Current = nil
			return nil
		}
	}

	exists, err := t.base.Exists(k)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("entry %s does not exist", hex.EncodeToString(k.Key[:]))
	}

	original, err := t.base.Read(k)
	if err != nil {
		return err
	}
	t.items[k.Key] = &TrackedEntry{
		Action:   ActionErase,
		Keylet:   k,
		Original: original,
	}
	return nil
}

// ForEach iterates over all state entries, overlaying buffered changes on the
// base view. If fn returns false, iteration stops early.
func (t *ApplyStateTable) ForEach(fn func(key [32]byte, data []byte) bool) error {
	stopped := false
	err := t.base.ForEach(func(key [32]byte, data []byte) bool {
		if item, ok := t.items[key]; ok {
			if item.Action == ActionErase {
				return true
			}
			data = item.Current
		}
		if !fn(key, data) {
			stopped = true
			return false
		}
		return true
	})
	if err != nil || stopped {
		return err
	}
	for key, item := range t.items {
		if item.Action != ActionInsert {
			continue
		}
		if !fn(key, item.Current) {
			return nil
		}
	}
	return nil
}

// Commit applies all tracked changes to the base view and returns the list of
// affected entries for transaction metadata.
func (t *ApplyStateTable) Commit() ([]AffectedNode, error) {
	affected := make([]AffectedNode, 0, len(t.items))
	for _, item := range t.items {
		switch item.Action {
		case ActionInsert:
			if err := t.base.Insert(item.Keylet, item.Current); err != nil {
				return nil, err
			}
			affected = append(affected, newAffectedNode("CreatedNode", item))
		case ActionModify:
			if err := t.base.Update(item.Keylet, item.Current); err != nil {
				return nil, err
			}
			affected = append(affected, newAffectedNode("ModifiedNode", item))
		case ActionErase:
			if err := t.base.Erase(item.Keylet); err != nil {
				return nil, err
			}
			affected = append(affected, newAffectedNode("DeletedNode", item))
		}
	}
	return affected, nil
}

func newAffectedNode(nodeType string, item *TrackedEntry) AffectedNode {
	return AffectedNode{
		NodeType:        nodeType,
		LedgerEntryType: item.Keylet.Type.String(),
		LedgerIndex:     hex.EncodeToString(item.Keylet.Key[:]),
	}
}
