package referee

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/refereehq/refereed/internal/core/tx"
	testenv "github.com/refereehq/refereed/internal/testing"
)

func TestConfigCreate(t *testing.T) {
	env := testenv.NewEnv(t)
	admin := env.Account("admin")
	game := env.Account("game")

	env.SubmitOK(NewConfigCreate(admin.Address, game.Address, env.MintAddress, 100))

	cfg := env.Config(game)
	require.NotNil(t, cfg)
	assert.Equal(t, admin.ID, cfg.Admin)
	assert.Equal(t, game.ID, cfg.Game)
	assert.Equal(t, env.Mint, cfg.Mint)
	assert.Equal(t, uint64(100), cfg.FeeBasisPoints)
}

func TestConfigCreateDuplicate(t *testing.T) {
	env := testenv.NewEnv(t)
	admin := env.Account("admin")
	game := env.Account("game")

	env.SubmitOK(NewConfigCreate(admin.Address, game.Address, env.MintAddress, 100))

	result := env.Submit(NewConfigCreate(admin.Address, game.Address, env.MintAddress, 250))
	assert.Equal(t, tx.TecALREADY_INITIALIZED, result.Result)
	assert.False(t, result.Applied)

	// The original config is untouched.
	assert.Equal(t, uint64(100), env.Config(game).FeeBasisPoints)
}

func TestConfigCreateFeeBound(t *testing.T) {
	env := testenv.NewEnv(t)
	admin := env.Account("admin")

	// Exactly 10000 basis points is allowed; only values above are rejected.
	gameA := env.Account("gameA")
	env.SubmitOK(NewConfigCreate(admin.Address, gameA.Address, env.MintAddress, 10_000))

	gameB := env.Account("gameB")
	result := env.Submit(NewConfigCreate(admin.Address, gameB.Address, env.MintAddress, 10_001))
	assert.Equal(t, tx.TemFEE_TOO_HIGH, result.Result)
	assert.Nil(t, env.Config(gameB))
}

func TestConfigCreateUnknownMint(t *testing.T) {
	env := testenv.NewEnv(t)
	admin := env.Account("admin")
	game := env.Account("game")
	stranger := env.Account("stranger")

	result := env.Submit(NewConfigCreate(admin.Address, game.Address, stranger.Address, 100))
	assert.Equal(t, tx.TecNO_ENTRY, result.Result)
	assert.Nil(t, env.Config(game))
}

func TestConfigCreateMalformed(t *testing.T) {
	env := testenv.NewEnv(t)
	admin := env.Account("admin")

	tests := []struct {
		name string
		txn  *ConfigCreate
	}{
		{name: "bad game address", txn: NewConfigCreate(admin.Address, "nonsense", env.MintAddress, 100)},
		{name: "empty game", txn: NewConfigCreate(admin.Address, "", env.MintAddress, 100)},
		{name: "bad mint address", txn: NewConfigCreate(admin.Address, env.Account("game").Address, "nonsense", 100)},
		{name: "bad account", txn: NewConfigCreate("nonsense", env.Account("game").Address, env.MintAddress, 100)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := env.Submit(tt.txn)
			assert.True(t, result.Result.IsTem(), "expected tem result, got %s", result.Result)
			assert.False(t, result.Applied)
		})
	}
}

func TestConfigUpdate(t *testing.T) {
	env := testenv.NewEnv(t)
	admin := env.Account("admin")
	game := env.Account("game")

	env.SubmitOK(NewConfigCreate(admin.Address, game.Address, env.MintAddress, 100))
	env.SubmitOK(NewConfigUpdate(admin.Address, game.Address, 500))

	cfg := env.Config(game)
	assert.Equal(t, uint64(500), cfg.FeeBasisPoints)
	// Admin and mint survive the update.
	assert.Equal(t, admin.ID, cfg.Admin)
	assert.Equal(t, env.Mint, cfg.Mint)
}

func TestConfigUpdateRequiresAdmin(t *testing.T) {
	env := testenv.NewEnv(t)
	admin := env.Account("admin")
	game := env.Account("game")
	intruder := env.Account("intruder")

	env.SubmitOK(NewConfigCreate(admin.Address, game.Address, env.MintAddress, 100))

	result := env.Submit(NewConfigUpdate(intruder.Address, game.Address, 9_999))
	assert.Equal(t, tx.TefNO_AUTHORITY, result.Result)
	assert.Equal(t, uint64(100), env.Config(game).FeeBasisPoints)
}

func TestConfigUpdateMissingConfig(t *testing.T) {
	env := testenv.NewEnv(t)
	admin := env.Account("admin")
	game := env.Account("game")

	result := env.Submit(NewConfigUpdate(admin.Address, game.Address, 100))
	assert.Equal(t, tx.TecNO_ENTRY, result.Result)
}

func TestConfigUpdateFeeBound(t *testing.T) {
	env := testenv.NewEnv(t)
	admin := env.Account("admin")
	game := env.Account("game")

	env.SubmitOK(NewConfigCreate(admin.Address, game.Address, env.MintAddress, 100))

	result := env.Submit(NewConfigUpdate(admin.Address, game.Address, 10_001))
	assert.Equal(t, tx.TemFEE_TOO_HIGH, result.Result)
	assert.Equal(t, uint64(100), env.Config(game).FeeBasisPoints)
}
