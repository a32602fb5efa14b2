package settle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/refereehq/refereed/internal/core/ledger"
	"github.com/refereehq/refereed/internal/core/ledger/keylet"
	"github.com/refereehq/refereed/internal/core/tx"
	"github.com/refereehq/refereed/internal/core/tx/sle"
	"github.com/refereehq/refereed/internal/crypto"
)

var (
	testMint = crypto.AccountID{0xAA}
	alice    = crypto.AccountID{0x01}
	bob      = crypto.AccountID{0x02}
)

func fundedLedger(t *testing.T, balances map[crypto.AccountID]uint64) *ledger.Ledger {
	t.Helper()
	l := ledger.New()
	for owner, balance := range balances {
		account := &sle.TokenAccount{Owner: owner, Mint: testMint, Balance: balance}
		data, err := account.Bytes()
		require.NoError(t, err)
		require.NoError(t, l.Insert(keylet.TokenAccount(owner, testMint), data))
	}
	return l
}

func balance(t *testing.T, view tx.LedgerView, owner crypto.AccountID) uint64 {
	t.Helper()
	data, err := view.Read(keylet.TokenAccount(owner, testMint))
	require.NoError(t, err)
	require.NotNil(t, data)
	account, err := sle.ParseTokenAccount(data)
	require.NoError(t, err)
	return account.Balance
}

func TestTransfer(t *testing.T) {
	l := fundedLedger(t, map[crypto.AccountID]uint64{alice: 1000, bob: 50})
	executor := NewExecutor(l)

	res := executor.Transfer(alice, bob, testMint, 300)
	require.Equal(t, tx.TesSUCCESS, res)
	assert.Equal(t, uint64(700), balance(t, l, alice))
	assert.Equal(t, uint64(350), balance(t, l, bob))
}

func TestTransferCreatesDestination(t *testing.T) {
	l := fundedLedger(t, map[crypto.AccountID]uint64{alice: 1000})
	executor := NewExecutor(l)

	res := executor.Transfer(alice, bob, testMint, 400)
	require.Equal(t, tx.TesSUCCESS, res)
	assert.Equal(t, uint64(600), balance(t, l, alice))
	assert.Equal(t, uint64(400), balance(t, l, bob))
}

func TestTransferInsufficientFunds(t *testing.T) {
	l := fundedLedger(t, map[crypto.AccountID]uint64{alice: 100, bob: 0})
	executor := NewExecutor(l)

	res := executor.Transfer(alice, bob, testMint, 101)
	assert.Equal(t, tx.TecUNFUNDED, res)
	assert.Equal(t, uint64(100), balance(t, l, alice))
	assert.Equal(t, uint64(0), balance(t, l, bob))
}

func TestTransferMissingSource(t *testing.T) {
	l := fundedLedger(t, map[crypto.AccountID]uint64{bob: 100})
	executor := NewExecutor(l)

	res := executor.Transfer(alice, bob, testMint, 1)
	assert.Equal(t, tx.TecNO_ENTRY, res)
}

func TestTransferBufferedByApplyStateTable(t *testing.T) {
	l := fundedLedger(t, map[crypto.AccountID]uint64{alice: 1000})
	table := tx.NewApplyStateTable(l)
	executor := NewExecutor(table)

	require.Equal(t, tx.TesSUCCESS, executor.Transfer(alice, bob, testMint, 250))

	// The backing ledger is untouched until commit.
	assert.Equal(t, uint64(1000), balance(t, l, alice))

	_, err := table.Commit()
	require.NoError(t, err)
	assert.Equal(t, uint64(750), balance(t, l, alice))
	assert.Equal(t, uint64(250), balance(t, l, bob))
}

func TestBalanceOf(t *testing.T) {
	l := fundedLedger(t, map[crypto.AccountID]uint64{alice: 77})
	executor := NewExecutor(l)

	got, err := executor.BalanceOf(alice, testMint)
	require.NoError(t, err)
	assert.Equal(t, uint64(77), got)

	// Missing accounts read as zero.
	got, err = executor.BalanceOf(bob, testMint)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), got)
}

func TestCloseAccount(t *testing.T) {
	l := fundedLedger(t, map[crypto.AccountID]uint64{alice: 42})
	executor := NewExecutor(l)

	residual, res := executor.CloseAccount(alice, testMint)
	require.Equal(t, tx.TesSUCCESS, res)
	assert.Equal(t, uint64(42), residual)

	exists, err := l.Exists(keylet.TokenAccount(alice, testMint))
	require.NoError(t, err)
	assert.False(t, exists)

	_, res = executor.CloseAccount(alice, testMint)
	assert.Equal(t, tx.TecNO_ENTRY, res)
}
