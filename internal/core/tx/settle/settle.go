// Package settle moves asset value between token accounts on behalf of the
// escrow transactors. All movement goes through a LedgerView, so it inherits
// the apply-state-table's buffering: nothing reaches the backing ledger until
// the enclosing transaction commits.
package settle

import (
	"github.com/refereehq/refereed/internal/core/ledger/keylet"
	"github.com/refereehq/refereed/internal/core/tx"
	"github.com/refereehq/refereed/internal/core/tx/sle"
	"github.com/refereehq/refereed/internal/crypto"
)

// Executor performs token transfers against a single ledger view.
type Executor struct {
	view tx.LedgerView
}

func NewExecutor(view tx.LedgerView) *Executor {
	return &Executor{view: view}
}

func (e *Executor) readAccount(owner, mint crypto.AccountID) (*sle.TokenAccount, keylet.Keylet, tx.Result) {
	k := keylet.TokenAccount(owner, mint)
	data, err := e.view.Read(k)
	if err != nil {
		return nil, k, tx.TefINTERNAL
	}
	if data == nil {
		return nil, k, tx.TecNO_ENTRY
	}
	account, err := sle.ParseTokenAccount(data)
	if err != nil {
		return nil, k, tx.TefINTERNAL
	}
	return account, k, tx.TesSUCCESS
}

// BalanceOf returns the balance of owner's account for mint. A missing
// account reads as zero.
func (e *Executor) BalanceOf(owner, mint crypto.AccountID) (uint64, error) {
	data, err := e.view.Read(keylet.TokenAccount(owner, mint))
	if err != nil {
		return 0, err
	}
	if data == nil {
		return 0, nil
	}
	account, err := sle.ParseTokenAccount(data)
	if err != nil {
		return 0, err
	}
	return account.Balance, nil
}

// Transfer moves amount of mint from one owner to another. The source
// account must exist and hold at least amount; the destination account is
// created on first use. A zero amount still requires a funded source
// account, matching the checked-transfer semantics of the settlement rail.
func (e *Executor) Transfer(from, to, mint crypto.AccountID, amount uint64) tx.Result {
	source, sourceKey, res := e.readAccount(from, mint)
	if res != tx.TesSUCCESS {
		return res
	}
	if source.Balance < amount {
		return tx.TecUNFUNDED
	}

	destKey := keylet.TokenAccount(to, mint)
	destData, err := e.view.Read(destKey)
	if err != nil {
		return tx.TefINTERNAL
	}

	source.Balance -= amount
	sourceData, err := source.Bytes()
	if err != nil {
		return tx.TefINTERNAL
	}
	if err := e.view.Update(sourceKey, sourceData); err != nil {
		return tx.TefINTERNAL
	}

	if destData == nil {
		dest := &sle.TokenAccount{Owner: to, Mint: mint, Balance: amount}
		encoded, err := dest.Bytes()
		if err != nil {
			return tx.TefINTERNAL
		}
		if err := e.view.Insert(destKey, encoded); err != nil {
			return tx.TefINTERNAL
		}
		return tx.TesSUCCESS
	}
	dest, err := sle.ParseTokenAccount(destData)
	if err != nil {
		return tx.TefINTERNAL
	}
	dest.Balance += amount
	encoded, err := dest.Bytes()
	if err != nil {
		return tx.TefINTERNAL
	}
	if err := e.view.Update(destKey, encoded); err != nil {
		return tx.TefINTERNAL
	}
	return tx.TesSUCCESS
}

// CloseAccount removes owner's account for mint from the ledger, returning
// the balance it still held. Used when a session vault is destroyed; the
// caller decides what, if anything, the residual means.
func (e *Executor) CloseAccount(owner, mint crypto.AccountID) (uint64, tx.Result) {
	account, k, res := e.readAccount(owner, mint)
	if res != tx.TesSUCCESS {
		return 0, res
	}
	if err := e.view.Erase(k); err != nil {
		return 0, tx.TefINTERNAL
	}
	return account.Balance, tx.TesSUCCESS
}
