package referee

import (
	addresscodec "github.com/refereehq/refereed/internal/codec/address-codec"
	"github.com/refereehq/refereed/internal/core/ledger/keylet"
	"github.com/refereehq/refereed/internal/core/tx"
	"github.com/refereehq/refereed/internal/core/tx/sle"
)

func init() {
	tx.Register(tx.TypeConfigUpdate, func() tx.Transaction {
		return &ConfigUpdate{BaseTx: *tx.NewBaseTx(tx.TypeConfigUpdate, "")}
	})
}

// ConfigUpdate changes the fee rate of an existing program config. Only the
// config's admin may submit it.
type ConfigUpdate struct {
	tx.BaseTx

	// Game is the game identity whose config is updated (required).
	Game string `json:"Game"`

	// FeeBasisPoints is the new fee rate.
	FeeBasisPoints uint64 `json:"FeeBasisPoints"`
}

// NewConfigUpdate creates a new ConfigUpdate transaction.
func NewConfigUpdate(account, game string, feeBasisPoints uint64) *ConfigUpdate {
	return &ConfigUpdate{
		BaseTx:         *tx.NewBaseTx(tx.TypeConfigUpdate, account),
		Game:           game,
		FeeBasisPoints: feeBasisPoints,
	}
}

// Validate validates the ConfigUpdate transaction.
func (c *ConfigUpdate) Validate() error {
	if err := c.BaseTx.Validate(); err != nil {
		return err
	}
	if c.Game == "" || !addresscodec.IsValidAddress(c.Game) {
		return tx.NewResultError(tx.TemMALFORMED, "Game is not a valid address")
	}
	if c.FeeBasisPoints > sle.MaxFeeBasisPoints {
		return tx.NewResultError(tx.TemFEE_TOO_HIGH, "FeeBasisPoints exceeds 10000")
	}
	return nil
}

// Flatten returns a flat map of all transaction fields.
func (c *ConfigUpdate) Flatten() (map[string]any, error) {
	return tx.ReflectFlatten(c)
}

// Apply updates the fee rate in place. Running sessions keep the termination
// fee computed at their creation; the new rate only affects sessions created
// afterwards.
func (c *ConfigUpdate) Apply(ctx *tx.ApplyContext) tx.Result {
	game, err := addresscodec.DecodeAccountID(c.Game)
	if err != nil {
		return tx.TemMALFORMED
	}

	cfg, res := loadConfig(ctx.View, game)
	if res != tx.TesSUCCESS {
		return res
	}
	if cfg.Admin != ctx.AccountID {
		return tx.TefNO_AUTHORITY
	}

	cfg.FeeBasisPoints = c.FeeBasisPoints
	data, err := cfg.Bytes()
	if err != nil {
		return tx.TefINTERNAL
	}
	if err := ctx.View.Update(keylet.ProgramConfig(game), data); err != nil {
		return tx.TefINTERNAL
	}
	return tx.TesSUCCESS
}
