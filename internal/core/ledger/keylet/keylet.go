// Package keylet derives ledger keys for refereed state entries.
//
// A keylet is a deterministic, collision-free mapping from a namespace tag
// plus owning identities (and, for sessions, a caller-chosen seed) to a
// 256-bit ledger key. It replaces a central index: any party that knows the
// inputs can locate the entry.
package keylet

import (
	"encoding/binary"

	"github.com/refereehq/refereed/internal/core/ledger/entry"
	"github.com/refereehq/refereed/internal/crypto"
	common "github.com/refereehq/refereed/internal/crypto/common"
)

// Namespace identifiers for keylet generation.
const (
	spaceProgramConfig uint16 = 'c' // per-game fee configuration
	spaceGameSession   uint16 = 'g' // wagering session
	spaceTokenAccount  uint16 = 't' // token balance record
	spaceMint          uint16 = 'm' // asset definition
	spaceSessionOwner  uint16 = 'v' // derived owner identity for session vaults
)

// Keylet represents an addressable location in the ledger state.
// It combines an entry type with a 256-bit key.
type Keylet struct {
	Type entry.Type
	Key  [32]byte
}

// indexHash computes a keylet key by hashing the namespace and key parts.
func indexHash(space uint16, data ...[]byte) [32]byte {
	spaceBytes := make([]byte, 2)
	binary.BigEndian.PutUint16(spaceBytes, space)

	inputs := make([][]byte, 0, len(data)+1)
	inputs = append(inputs, spaceBytes)
	inputs = append(inputs, data...)

	return common.Sha512Half(inputs...)
}

// ProgramConfig returns the keylet for a game's fee configuration entry.
func ProgramConfig(game crypto.AccountID) Keylet {
	return Keylet{
		Type: entry.TypeProgramConfig,
		Key:  indexHash(spaceProgramConfig, game[:]),
	}
}

// GameSession returns the keylet for the session created by game with the
// given seed.
func GameSession(game crypto.AccountID, seed uint64) Keylet {
	seedBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(seedBytes, seed)
	return Keylet{
		Type: entry.TypeGameSession,
		Key:  indexHash(spaceGameSession, game[:], seedBytes),
	}
}

// TokenAccount returns the keylet for the balance record of (owner, mint).
func TokenAccount(owner, mint crypto.AccountID) Keylet {
	return Keylet{
		Type: entry.TypeTokenAccount,
		Key:  indexHash(spaceTokenAccount, owner[:], mint[:]),
	}
}

// Mint returns the keylet for an asset definition entry.
func Mint(id crypto.AccountID) Keylet {
	return Keylet{
		Type: entry.TypeMint,
		Key:  indexHash(spaceMint, id[:]),
	}
}

// SessionOwner derives the owner identity for a session's vault. The vault
// is an ordinary token account whose owner is this derived identity, so no
// external party can control it.
func SessionOwner(game crypto.AccountID, seed uint64) crypto.AccountID {
	seedBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(seedBytes, seed)
	h := indexHash(spaceSessionOwner, game[:], seedBytes)
	return crypto.AccountIDFromBytes(h[:crypto.AccountIDSize])
}

// Vault returns the keylet for a session's escrow balance record.
func Vault(game crypto.AccountID, seed uint64, mint crypto.AccountID) Keylet {
	return TokenAccount(SessionOwner(game, seed), mint)
}
