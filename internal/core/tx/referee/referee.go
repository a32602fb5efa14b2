// Package referee implements the escrow transactors: program config
// management, session creation, deposits, per-player settlement, and close.
//
// Sessions are keyed by (game, seed); the game identity that created a
// session is its controlling identity, and every settlement operation on it
// must be submitted by that identity. Players authorize only their own
// deposit.
package referee

import (
	addresscodec "github.com/refereehq/refereed/internal/codec/address-codec"
	"github.com/refereehq/refereed/internal/core/ledger/keylet"
	"github.com/refereehq/refereed/internal/core/tx"
	"github.com/refereehq/refereed/internal/core/tx/sle"
	"github.com/refereehq/refereed/internal/crypto"
)

// loadConfig reads the program config for a game. A missing entry is
// reported as TecNO_ENTRY.
func loadConfig(view tx.LedgerView, game crypto.AccountID) (*sle.ProgramConfig, tx.Result) {
	data, err := view.Read(keylet.ProgramConfig(game))
	if err != nil {
		return nil, tx.TefINTERNAL
	}
	if data == nil {
		return nil, tx.TecNO_ENTRY
	}
	cfg, err := sle.ParseProgramConfig(data)
	if err != nil {
		return nil, tx.TefINTERNAL
	}
	return cfg, tx.TesSUCCESS
}

// loadSession reads the session for a (game, seed) pair.
func loadSession(view tx.LedgerView, game crypto.AccountID, seed uint64) (*sle.GameSession, tx.Result) {
	data, err := view.Read(keylet.GameSession(game, seed))
	if err != nil {
		return nil, tx.TefINTERNAL
	}
	if data == nil {
		return nil, tx.TecNO_ENTRY
	}
	session, err := sle.ParseGameSession(data)
	if err != nil {
		return nil, tx.TefINTERNAL
	}
	return session, tx.TesSUCCESS
}

// storeSession writes an updated session back to its entry.
func storeSession(view tx.LedgerView, session *sle.GameSession) tx.Result {
	data, err := session.Bytes()
	if err != nil {
		return tx.TefINTERNAL
	}
	if err := view.Update(keylet.GameSession(session.Game, session.Seed), data); err != nil {
		return tx.TefINTERNAL
	}
	return tx.TesSUCCESS
}

// loadMintDecimals reads the decimal scale of a mint entry.
func loadMintDecimals(view tx.LedgerView, mint crypto.AccountID) (uint8, tx.Result) {
	data, err := view.Read(keylet.Mint(mint))
	if err != nil {
		return 0, tx.TefINTERNAL
	}
	if data == nil {
		return 0, tx.TecNO_ENTRY
	}
	m, err := sle.ParseMint(data)
	if err != nil {
		return 0, tx.TefINTERNAL
	}
	return m.Decimals, tx.TesSUCCESS
}

// decodePlayer decodes a player address field during preflight.
func decodePlayer(address string) (crypto.AccountID, error) {
	id, err := addresscodec.DecodeAccountID(address)
	if err != nil {
		return crypto.AccountID{}, tx.NewResultError(tx.TemMALFORMED, "invalid player address: "+address)
	}
	return id, nil
}
