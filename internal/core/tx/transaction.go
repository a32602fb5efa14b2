package tx

import (
	"encoding/json"
	"errors"

	addresscodec "github.com/refereehq/refereed/internal/codec/address-codec"
)

// Common errors returned from transaction validation.
var (
	ErrMissingAccount         = errors.New("Account is required")
	ErrInvalidAccount         = errors.New("Account is not a valid address")
	ErrMissingTransactionType = errors.New("TransactionType is required")
)

// Transaction is the interface that all transaction types must implement.
type Transaction interface {
	// TxType returns the transaction type.
	TxType() Type

	// GetCommon returns the common transaction fields.
	GetCommon() *Common

	// Validate checks if the transaction is well formed. It is pure: it
	// never touches ledger state.
	Validate() error

	// Flatten returns a flat map of all transaction fields for
	// serialization and hashing.
	Flatten() (map[string]any, error)
}

// Appliable is implemented by transaction types that can apply themselves to
// ledger state.
type Appliable interface {
	Apply(ctx *ApplyContext) Result
}

// Common contains fields common to all transaction types.
type Common struct {
	// Account is the address of the identity submitting the transaction.
	// It is the authorizer for every balance the transaction debits.
	Account string `json:"Account"`

	// TransactionType names the operation.
	TransactionType string `json:"TransactionType"`
}

// Validate validates the common fields.
func (c *Common) Validate() error {
	if c.Account == "" {
		return ErrMissingAccount
	}
	if !addresscodec.IsValidAddress(c.Account) {
		return ErrInvalidAccount
	}
	if c.TransactionType == "" {
		return ErrMissingTransactionType
	}
	return nil
}

// BaseTx provides a base implementation for transactions.
type BaseTx struct {
	Common
	txType Type
}

// NewBaseTx creates a new base transaction.
func NewBaseTx(txType Type, account string) *BaseTx {
	return &BaseTx{
		Common: Common{
			Account:         account,
			TransactionType: txType.String(),
		},
		txType: txType,
	}
}

// TxType returns the transaction type.
func (b *BaseTx) TxType() Type {
	return b.txType
}

// GetCommon returns the common transaction fields.
func (b *BaseTx) GetCommon() *Common {
	return &b.Common
}

// Validate validates the base transaction.
func (b *BaseTx) Validate() error {
	return b.Common.Validate()
}

// ReflectFlatten converts a transaction struct into a flat field map by
// round-tripping through its JSON encoding. Embedded common fields flatten
// into the top-level object.
func ReflectFlatten(txn Transaction) (map[string]any, error) {
	raw, err := json.Marshal(txn)
	if err != nil {
		return nil, err
	}
	flat := make(map[string]any)
	if err := json.Unmarshal(raw, &flat); err != nil {
		return nil, err
	}
	return flat, nil
}
