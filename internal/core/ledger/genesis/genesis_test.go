package genesis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	addresscodec "github.com/refereehq/refereed/internal/codec/address-codec"
	"github.com/refereehq/refereed/internal/core/ledger"
	"github.com/refereehq/refereed/internal/core/ledger/keylet"
	"github.com/refereehq/refereed/internal/core/tx/sle"
	"github.com/refereehq/refereed/internal/crypto"
)

func TestMintIDDeterministic(t *testing.T) {
	a := MintID("refereed-settlement")
	b := MintID("refereed-settlement")
	c := MintID("other-asset")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestSeed(t *testing.T) {
	owner := crypto.AccountID{0x11, 0x22}
	cfg := DefaultConfig()
	cfg.Accounts = []Account{
		{Address: addresscodec.EncodeAccountID(owner), Balance: 50_000_000},
	}

	l := ledger.New()
	mintID, err := Seed(l, cfg)
	require.NoError(t, err)
	assert.Equal(t, MintID(cfg.MintTag), mintID)
	assert.Equal(t, 2, l.EntryCount())

	mintData, err := l.Read(keylet.Mint(mintID))
	require.NoError(t, err)
	mint, err := sle.ParseMint(mintData)
	require.NoError(t, err)
	assert.Equal(t, uint8(6), mint.Decimals)

	accountData, err := l.Read(keylet.TokenAccount(owner, mintID))
	require.NoError(t, err)
	account, err := sle.ParseTokenAccount(accountData)
	require.NoError(t, err)
	assert.Equal(t, uint64(50_000_000), account.Balance)
	assert.Equal(t, owner, account.Owner)
}

func TestSeedRejectsBadAddress(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Accounts = []Account{{Address: "not-an-address", Balance: 1}}

	_, err := Seed(ledger.New(), cfg)
	assert.Error(t, err)
}

func TestSeedRejectsNonEmptyLedger(t *testing.T) {
	l := ledger.New()
	_, err := Seed(l, DefaultConfig())
	require.NoError(t, err)

	_, err = Seed(l, DefaultConfig())
	assert.Error(t, err)
}
