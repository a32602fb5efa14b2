package keylet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/refereehq/refereed/internal/core/ledger/entry"
	"github.com/refereehq/refereed/internal/crypto"
)

func account(seed string) crypto.AccountID {
	return crypto.CalcAccountID([]byte(seed))
}

func TestKeyletsAreDeterministic(t *testing.T) {
	game := account("game")
	mint := account("mint")

	assert.Equal(t, ProgramConfig(game), ProgramConfig(game))
	assert.Equal(t, GameSession(game, 42), GameSession(game, 42))
	assert.Equal(t, TokenAccount(game, mint), TokenAccount(game, mint))
	assert.Equal(t, Vault(game, 42, mint), Vault(game, 42, mint))
}

func TestKeyletsSeparateNamespaces(t *testing.T) {
	game := account("game")

	// The same identity must map to different keys per namespace.
	keys := map[[32]byte]string{}
	keys[ProgramConfig(game).Key] = "config"
	keys[GameSession(game, 0).Key] = "session"
	keys[Mint(game).Key] = "mint"
	keys[TokenAccount(game, game).Key] = "token"
	require.Len(t, keys, 4)
}

func TestGameSessionSeedSensitivity(t *testing.T) {
	game := account("game")
	assert.NotEqual(t, GameSession(game, 1).Key, GameSession(game, 2).Key)
	assert.NotEqual(t, GameSession(account("a"), 1).Key, GameSession(account("b"), 1).Key)
}

func TestEntryTypes(t *testing.T) {
	game := account("game")
	assert.Equal(t, entry.TypeProgramConfig, ProgramConfig(game).Type)
	assert.Equal(t, entry.TypeGameSession, GameSession(game, 7).Type)
	assert.Equal(t, entry.TypeTokenAccount, TokenAccount(game, game).Type)
	assert.Equal(t, entry.TypeMint, Mint(game).Type)
}

func TestSessionOwnerDistinctFromCreator(t *testing.T) {
	game := account("game")
	owner := SessionOwner(game, 9)
	assert.False(t, owner.IsZero())
	assert.NotEqual(t, game, owner)
	assert.NotEqual(t, owner, SessionOwner(game, 10))
}
