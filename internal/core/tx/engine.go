package tx

import (
	"encoding/json"
	"errors"
	"sort"

	addresscodec "github.com/refereehq/refereed/internal/codec/address-codec"
	"github.com/refereehq/refereed/internal/core/ledger/keylet"
	"github.com/refereehq/refereed/internal/crypto"
	common "github.com/refereehq/refereed/internal/crypto/common"
	"github.com/refereehq/refereed/internal/protocol"
)

// LedgerView provides read/write access to ledger state.
type LedgerView interface {
	// Read reads a ledger entry. A missing entry reads as (nil, nil).
	Read(k keylet.Keylet) ([]byte, error)

	// Exists checks if an entry exists.
	Exists(k keylet.Keylet) (bool, error)

	// Insert adds a new entry.
	Insert(k keylet.Keylet, data []byte) error

	// Update modifies an existing entry.
	Update(k keylet.Keylet, data []byte) error

	// Erase removes an entry.
	Erase(k keylet.Keylet) error

	// ForEach iterates over all state entries.
	// If fn returns false, iteration stops early.
	ForEach(fn func(key [32]byte, data []byte) bool) error
}

// AffectedNode records one entry touched by an applied transaction.
type AffectedNode struct {
	NodeType        string `json:"NodeType"`
	LedgerEntryType string `json:"LedgerEntryType"`
	LedgerIndex     string `json:"LedgerIndex"`
}

// Metadata describes the effects of an applied transaction.
type Metadata struct {
	AffectedNodes     []AffectedNode `json:"AffectedNodes"`
	TransactionResult string         `json:"TransactionResult"`
}

// ApplyResult contains the result of applying a transaction.
type ApplyResult struct {
	// Result is the transaction result code.
	Result Result

	// Applied indicates if the transaction was applied to the ledger.
	Applied bool

	// TxHash is the hash of the transaction.
	TxHash [32]byte

	// Metadata contains the changes made by the transaction.
	Metadata *Metadata

	// Message is a human-readable result message.
	Message string
}

// Engine processes transactions against a ledger. The execution environment
// serializes conflicting operations: Apply must not be called concurrently
// for the same ledger view.
type Engine struct {
	view LedgerView
}

// NewEngine creates a new transaction engine over the given view.
func NewEngine(view LedgerView) *Engine {
	return &Engine{view: view}
}

// Apply runs a transaction through preflight and application. Effects are
// buffered in an ApplyStateTable and committed only on success, so a failed
// operation is a no-op on every balance and every flag.
func (e *Engine) Apply(txn Transaction) ApplyResult {
	txHash, err := computeTransactionHash(txn)
	if err != nil {
		return ApplyResult{
			Result:  TefINTERNAL,
			Message: "failed to compute transaction hash: " + err.Error(),
		}
	}

	if result := e.preflight(txn); !result.IsSuccess() {
		return ApplyResult{
			Result:  result,
			TxHash:  txHash,
			Message: result.Message(),
		}
	}

	accountID, err := addresscodec.DecodeAccountID(txn.GetCommon().Account)
	if err != nil {
		return ApplyResult{
			Result:  TemBAD_SRC_ACCOUNT,
			TxHash:  txHash,
			Message: TemBAD_SRC_ACCOUNT.Message(),
		}
	}

	table := NewApplyStateTable(e.view)
	metadata := &Metadata{AffectedNodes: make([]AffectedNode, 0)}
	ctx := &ApplyContext{
		View:      table,
		AccountID: accountID,
		TxHash:    txHash,
		Metadata:  metadata,
		Engine:    e,
	}

	appliable, ok := txn.(Appliable)
	if !ok {
		return ApplyResult{
			Result:  TefINTERNAL,
			TxHash:  txHash,
			Message: "transaction type cannot be applied",
		}
	}

	result := appliable.Apply(ctx)
	metadata.TransactionResult = result.String()

	if result.IsSuccess() {
		affected, err := table.Commit()
		if err != nil {
			return ApplyResult{
				Result:   TefINTERNAL,
				TxHash:   txHash,
				Metadata: metadata,
				Message:  "failed to commit state changes: " + err.Error(),
			}
		}
		sort.Slice(affected, func(i, j int) bool {
			return affected[i].LedgerIndex < affected[j].LedgerIndex
		})
		metadata.AffectedNodes = affected
	}

	return ApplyResult{
		Result:   result,
		Applied:  result.IsSuccess(),
		TxHash:   txHash,
		Metadata: metadata,
		Message:  result.Message(),
	}
}

// preflight performs pure validation before any ledger state is touched.
func (e *Engine) preflight(txn Transaction) Result {
	c := txn.GetCommon()
	if c.Account == "" {
		return TemBAD_SRC_ACCOUNT
	}
	if !addresscodec.IsValidAddress(c.Account) {
		return TemBAD_SRC_ACCOUNT
	}
	if c.TransactionType == "" {
		return TemINVALID
	}

	if err := txn.Validate(); err != nil {
		var re *ResultError
		if errors.As(err, &re) {
			return re.Result
		}
		switch {
		case errors.Is(err, ErrMissingAccount), errors.Is(err, ErrInvalidAccount):
			return TemBAD_SRC_ACCOUNT
		default:
			return TemMALFORMED
		}
	}
	return TesSUCCESS
}

// computeTransactionHash hashes the canonical JSON encoding of the flattened
// transaction fields.
func computeTransactionHash(txn Transaction) ([32]byte, error) {
	var hash [32]byte
	flat, err := txn.Flatten()
	if err != nil {
		return hash, err
	}
	// json.Marshal sorts map keys, which makes the encoding canonical.
	raw, err := json.Marshal(flat)
	if err != nil {
		return hash, err
	}
	prefix := protocol.HashPrefixTransactionID
	return common.Sha512Half(prefix[:], raw), nil
}

// ApplyContext provides the state and helpers a transactor needs to apply
// itself. It is passed to Appliable.Apply.
type ApplyContext struct {
	// View provides read/write access to buffered ledger state.
	View LedgerView

	// AccountID is the decoded identity of the submitting account.
	AccountID crypto.AccountID

	// TxHash is the hash of the current transaction.
	TxHash [32]byte

	// Metadata collects the effects of the transaction.
	Metadata *Metadata

	// Engine provides access to shared helpers.
	Engine *Engine
}
