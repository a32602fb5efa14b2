// Package genesis seeds a fresh ledger with its mint and initial balances.
package genesis

import (
	"fmt"

	addresscodec "github.com/refereehq/refereed/internal/codec/address-codec"
	"github.com/refereehq/refereed/internal/core/ledger"
	"github.com/refereehq/refereed/internal/core/ledger/keylet"
	"github.com/refereehq/refereed/internal/core/tx/sle"
	"github.com/refereehq/refereed/internal/crypto"
	common "github.com/refereehq/refereed/internal/crypto/common"
	"github.com/refereehq/refereed/internal/protocol"
)

// Account is one pre-funded balance in the genesis state.
type Account struct {
	// Address is the base58 account address.
	Address string `json:"address" yaml:"address"`

	// Balance is the initial balance in asset base units.
	Balance uint64 `json:"balance" yaml:"balance"`
}

// Config describes the genesis state.
type Config struct {
	// MintTag names the settlement asset; the mint identity is derived
	// from it.
	MintTag string `json:"mint_tag" yaml:"mint_tag"`

	// Decimals is the asset's decimal scale.
	Decimals uint8 `json:"decimals" yaml:"decimals"`

	// Accounts are the pre-funded balances.
	Accounts []Account `json:"accounts" yaml:"accounts"`
}

// DefaultConfig returns a genesis with a six-decimal asset and no
// pre-funded accounts.
func DefaultConfig() Config {
	return Config{
		MintTag:  "refereed-settlement",
		Decimals: 6,
	}
}

// MintID derives the mint identity from its tag.
func MintID(tag string) crypto.AccountID {
	prefix := protocol.HashPrefixMint
	hash := common.Sha512Half(prefix[:], []byte(tag))
	var id crypto.AccountID
	copy(id[:], hash[:crypto.AccountIDSize])
	return id
}

// Seed writes the genesis state into an empty ledger: the mint entry plus
// one token account per pre-funded genesis account. It returns the mint
// identity the rest of the system settles in.
func Seed(l *ledger.Ledger, cfg Config) (crypto.AccountID, error) {
	if l.EntryCount() != 0 {
		return crypto.AccountID{}, fmt.Errorf("genesis: ledger is not empty (%d entries)", l.EntryCount())
	}

	mintID := MintID(cfg.MintTag)
	mint := &sle.Mint{ID: mintID, Decimals: cfg.Decimals}
	mintData, err := mint.Bytes()
	if err != nil {
		return crypto.AccountID{}, err
	}
	if err := l.Insert(keylet.Mint(mintID), mintData); err != nil {
		return crypto.AccountID{}, err
	}

	for _, account := range cfg.Accounts {
		owner, err := addresscodec.DecodeAccountID(account.Address)
		if err != nil {
			return crypto.AccountID{}, fmt.Errorf("genesis: account %q: %w", account.Address, err)
		}
		tokenAccount := &sle.TokenAccount{Owner: owner, Mint: mintID, Balance: account.Balance}
		data, err := tokenAccount.Bytes()
		if err != nil {
			return crypto.AccountID{}, err
		}
		if err := l.Insert(keylet.TokenAccount(owner, mintID), data); err != nil {
			return crypto.AccountID{}, fmt.Errorf("genesis: account %q: %w", account.Address, err)
		}
	}
	return mintID, nil
}
