package referee

import (
	addresscodec "github.com/refereehq/refereed/internal/codec/address-codec"
	"github.com/refereehq/refereed/internal/core/ledger/keylet"
	"github.com/refereehq/refereed/internal/core/tx"
	"github.com/refereehq/refereed/internal/core/tx/settle"
)

func init() {
	tx.Register(tx.TypeDeposit, func() tx.Transaction {
		return &Deposit{BaseTx: *tx.NewBaseTx(tx.TypeDeposit, "")}
	})
}

// Deposit pays a player's entry fee into the session vault. The submitting
// account is the player; only roster members can deposit, and only once.
type Deposit struct {
	tx.BaseTx

	// Game is the identity controlling the session (required).
	Game string `json:"Game"`

	// Seed selects the session under the game identity.
	Seed uint64 `json:"Seed"`
}

// NewDeposit creates a new Deposit transaction.
func NewDeposit(account, game string, seed uint64) *Deposit {
	return &Deposit{
		BaseTx: *tx.NewBaseTx(tx.TypeDeposit, account),
		Game:   game,
		Seed:   seed,
	}
}

// Validate validates the Deposit transaction.
func (d *Deposit) Validate() error {
	if err := d.BaseTx.Validate(); err != nil {
		return err
	}
	if d.Game == "" || !addresscodec.IsValidAddress(d.Game) {
		return tx.NewResultError(tx.TemMALFORMED, "Game is not a valid address")
	}
	return nil
}

// Flatten returns a flat map of all transaction fields.
func (d *Deposit) Flatten() (map[string]any, error) {
	return tx.ReflectFlatten(d)
}

// Apply transfers the per-player entry cost into the vault and marks the
// player paid. The transfer and the flag flip commit together or not at all.
func (d *Deposit) Apply(ctx *tx.ApplyContext) tx.Result {
	game, err := addresscodec.DecodeAccountID(d.Game)
	if err != nil {
		return tx.TemMALFORMED
	}

	session, res := loadSession(ctx.View, game, d.Seed)
	if res != tx.TesSUCCESS {
		return res
	}

	record := session.FindPlayer(ctx.AccountID)
	if record == nil {
		return tx.TecNO_TARGET
	}
	if record.Paid {
		return tx.TecALREADY_PAID
	}

	vaultOwner := keylet.SessionOwner(game, d.Seed)
	executor := settle.NewExecutor(ctx.View)
	if res := executor.Transfer(ctx.AccountID, vaultOwner, session.Mint, session.EntryCostPerPlayer); res != tx.TesSUCCESS {
		return res
	}

	record.Paid = true
	return storeSession(ctx.View, session)
}
