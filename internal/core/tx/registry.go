package tx

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// ErrUnknownTransactionType is returned when a transaction type is unknown.
var ErrUnknownTransactionType = errors.New("unknown transaction type")

var (
	registryMu sync.RWMutex
	registry   = make(map[Type]func() Transaction)
)

// Register installs a factory for a transaction type. Each transactor package
// calls Register from init().
func Register(txType Type, factory func() Transaction) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[txType]; dup {
		panic(fmt.Sprintf("tx: duplicate registration for %s", txType))
	}
	registry[txType] = factory
}

// NewFromType creates a new empty transaction of the given type.
func NewFromType(txType Type) (Transaction, error) {
	registryMu.RLock()
	factory, ok := registry[txType]
	registryMu.RUnlock()
	if !ok {
		return nil, ErrUnknownTransactionType
	}
	return factory(), nil
}

// FromJSON creates a Transaction from a JSON object, dispatching on the
// TransactionType field.
func FromJSON(data []byte) (Transaction, error) {
	var raw struct {
		TransactionType string `json:"TransactionType"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	txType, ok := TypeFromName(raw.TransactionType)
	if !ok {
		return nil, ErrUnknownTransactionType
	}

	txn, err := NewFromType(txType)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(data, txn); err != nil {
		return nil, err
	}

	return txn, nil
}

// ToJSON converts a Transaction to its flat JSON encoding.
func ToJSON(txn Transaction) ([]byte, error) {
	flat, err := txn.Flatten()
	if err != nil {
		return nil, err
	}
	return json.Marshal(flat)
}

// SupportedTypes returns all registered transaction types.
func SupportedTypes() []Type {
	registryMu.RLock()
	defer registryMu.RUnlock()
	types := make([]Type, 0, len(registry))
	for t := range registry {
		types = append(types, t)
	}
	return types
}
