package referee

import (
	addresscodec "github.com/refereehq/refereed/internal/codec/address-codec"
	"github.com/refereehq/refereed/internal/core/ledger/keylet"
	"github.com/refereehq/refereed/internal/core/tx"
	"github.com/refereehq/refereed/internal/core/tx/sle"
)

func init() {
	tx.Register(tx.TypeConfigCreate, func() tx.Transaction {
		return &ConfigCreate{BaseTx: *tx.NewBaseTx(tx.TypeConfigCreate, "")}
	})
}

// ConfigCreate creates the program config for a game identity. The
// submitting account becomes the config's admin: the identity that collects
// termination fees and may change the fee rate later.
type ConfigCreate struct {
	tx.BaseTx

	// Game is the game identity this config belongs to (required).
	Game string `json:"Game"`

	// Mint is the asset the game's sessions settle in (required).
	Mint string `json:"Mint"`

	// FeeBasisPoints is the admin fee rate in parts per ten thousand.
	FeeBasisPoints uint64 `json:"FeeBasisPoints"`
}

// NewConfigCreate creates a new ConfigCreate transaction.
func NewConfigCreate(account, game, mint string, feeBasisPoints uint64) *ConfigCreate {
	return &ConfigCreate{
		BaseTx:         *tx.NewBaseTx(tx.TypeConfigCreate, account),
		Game:           game,
		Mint:           mint,
		FeeBasisPoints: feeBasisPoints,
	}
}

// Validate validates the ConfigCreate transaction.
func (c *ConfigCreate) Validate() error {
	if err := c.BaseTx.Validate(); err != nil {
		return err
	}
	if c.Game == "" || !addresscodec.IsValidAddress(c.Game) {
		return tx.NewResultError(tx.TemMALFORMED, "Game is not a valid address")
	}
	if c.Mint == "" || !addresscodec.IsValidAddress(c.Mint) {
		return tx.NewResultError(tx.TemMALFORMED, "Mint is not a valid address")
	}
	if c.FeeBasisPoints > sle.MaxFeeBasisPoints {
		return tx.NewResultError(tx.TemFEE_TOO_HIGH, "FeeBasisPoints exceeds 10000")
	}
	return nil
}

// Flatten returns a flat map of all transaction fields.
func (c *ConfigCreate) Flatten() (map[string]any, error) {
	return tx.ReflectFlatten(c)
}

// Apply creates the config entry.
func (c *ConfigCreate) Apply(ctx *tx.ApplyContext) tx.Result {
	game, err := addresscodec.DecodeAccountID(c.Game)
	if err != nil {
		return tx.TemMALFORMED
	}
	mint, err := addresscodec.DecodeAccountID(c.Mint)
	if err != nil {
		return tx.TemMALFORMED
	}

	configKey := keylet.ProgramConfig(game)
	exists, err := ctx.View.Exists(configKey)
	if err != nil {
		return tx.TefINTERNAL
	}
	if exists {
		return tx.TecALREADY_INITIALIZED
	}

	if _, res := loadMintDecimals(ctx.View, mint); res != tx.TesSUCCESS {
		return res
	}

	cfg := &sle.ProgramConfig{
		Admin:          ctx.AccountID,
		Game:           game,
		Mint:           mint,
		FeeBasisPoints: c.FeeBasisPoints,
	}
	data, err := cfg.Bytes()
	if err != nil {
		return tx.TefINTERNAL
	}
	if err := ctx.View.Insert(configKey, data); err != nil {
		return tx.TefINTERNAL
	}
	return tx.TesSUCCESS
}
