// Package testing provides a test ledger environment for transaction tests:
// a genesis-seeded ledger, deterministic named accounts, and submit/balance
// helpers.
package testing

import (
	"testing"

	addresscodec "github.com/refereehq/refereed/internal/codec/address-codec"
	"github.com/refereehq/refereed/internal/core/ledger"
	"github.com/refereehq/refereed/internal/core/ledger/genesis"
	"github.com/refereehq/refereed/internal/core/ledger/keylet"
	"github.com/refereehq/refereed/internal/core/tx"
	"github.com/refereehq/refereed/internal/core/tx/sle"
	"github.com/refereehq/refereed/internal/crypto"
)

// Env manages a test ledger environment.
type Env struct {
	t *testing.T

	// Ledger is the backing state map.
	Ledger *ledger.Ledger

	// Engine applies transactions to the ledger.
	Engine *tx.Engine

	// Mint is the settlement asset seeded at genesis.
	Mint crypto.AccountID

	// MintAddress is the base58 encoding of Mint.
	MintAddress string

	// Decimals is the asset's decimal scale.
	Decimals uint8

	accounts map[string]*Account
}

// NewEnv creates a test environment with a genesis-seeded ledger.
func NewEnv(t *testing.T) *Env {
	t.Helper()

	cfg := genesis.DefaultConfig()
	l := ledger.New()
	mint, err := genesis.Seed(l, cfg)
	if err != nil {
		t.Fatalf("failed to seed genesis: %v", err)
	}

	return &Env{
		t:           t,
		Ledger:      l,
		Engine:      tx.NewEngine(l),
		Mint:        mint,
		MintAddress: addresscodec.EncodeAccountID(mint),
		Decimals:    cfg.Decimals,
		accounts:    make(map[string]*Account),
	}
}

// Account returns the deterministic test account for a name, creating it on
// first use.
func (env *Env) Account(name string) *Account {
	if account, ok := env.accounts[name]; ok {
		return account
	}
	account := NewAccount(name)
	env.accounts[name] = account
	return account
}

// Fund sets an account's token balance, creating the token account entry if
// needed.
func (env *Env) Fund(name string, balance uint64) *Account {
	env.t.Helper()
	account := env.Account(name)
	env.setBalance(account.ID, balance)
	return account
}

func (env *Env) setBalance(owner crypto.AccountID, balance uint64) {
	env.t.Helper()
	k := keylet.TokenAccount(owner, env.Mint)
	tokenAccount := &sle.TokenAccount{Owner: owner, Mint: env.Mint, Balance: balance}
	data, err := tokenAccount.Bytes()
	if err != nil {
		env.t.Fatalf("failed to encode token account: %v", err)
	}
	exists, err := env.Ledger.Exists(k)
	if err != nil {
		env.t.Fatalf("failed to check token account: %v", err)
	}
	if exists {
		err = env.Ledger.Update(k, data)
	} else {
		err = env.Ledger.Insert(k, data)
	}
	if err != nil {
		env.t.Fatalf("failed to write token account: %v", err)
	}
}

// Submit applies a transaction and returns the result.
func (env *Env) Submit(txn tx.Transaction) tx.ApplyResult {
	env.t.Helper()
	result := env.Engine.Apply(txn)
	if result.Applied {
		env.Ledger.BumpSeq()
	}
	return result
}

// SubmitOK applies a transaction and fails the test unless it succeeds.
func (env *Env) SubmitOK(txn tx.Transaction) tx.ApplyResult {
	env.t.Helper()
	result := env.Submit(txn)
	if result.Result != tx.TesSUCCESS {
		env.t.Fatalf("expected tesSUCCESS, got %s: %s", result.Result, result.Message)
	}
	return result
}

// Balance returns an account's token balance. Missing accounts read as zero.
func (env *Env) Balance(name string) uint64 {
	env.t.Helper()
	return env.balanceOf(env.Account(name).ID)
}

func (env *Env) balanceOf(owner crypto.AccountID) uint64 {
	env.t.Helper()
	data, err := env.Ledger.Read(keylet.TokenAccount(owner, env.Mint))
	if err != nil {
		env.t.Fatalf("failed to read token account: %v", err)
	}
	if data == nil {
		return 0
	}
	tokenAccount, err := sle.ParseTokenAccount(data)
	if err != nil {
		env.t.Fatalf("failed to parse token account: %v", err)
	}
	return tokenAccount.Balance
}

// VaultBalance returns the vault balance for a session.
func (env *Env) VaultBalance(game *Account, seed uint64) uint64 {
	env.t.Helper()
	return env.balanceOf(keylet.SessionOwner(game.ID, seed))
}

// Session reads a session entry, or nil if it does not exist.
func (env *Env) Session(game *Account, seed uint64) *sle.GameSession {
	env.t.Helper()
	data, err := env.Ledger.Read(keylet.GameSession(game.ID, seed))
	if err != nil {
		env.t.Fatalf("failed to read session: %v", err)
	}
	if data == nil {
		return nil
	}
	session, err := sle.ParseGameSession(data)
	if err != nil {
		env.t.Fatalf("failed to parse session: %v", err)
	}
	return session
}

// Config reads a program config entry, or nil if it does not exist.
func (env *Env) Config(game *Account) *sle.ProgramConfig {
	env.t.Helper()
	data, err := env.Ledger.Read(keylet.ProgramConfig(game.ID))
	if err != nil {
		env.t.Fatalf("failed to read config: %v", err)
	}
	if data == nil {
		return nil
	}
	cfg, err := sle.ParseProgramConfig(data)
	if err != nil {
		env.t.Fatalf("failed to parse config: %v", err)
	}
	return cfg
}
