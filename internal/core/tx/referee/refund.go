package referee

import (
	addresscodec "github.com/refereehq/refereed/internal/codec/address-codec"
	"github.com/refereehq/refereed/internal/core/ledger/keylet"
	"github.com/refereehq/refereed/internal/core/tx"
	"github.com/refereehq/refereed/internal/core/tx/settle"
)

func init() {
	tx.Register(tx.TypeRefund, func() tx.Transaction {
		return &Refund{BaseTx: *tx.NewBaseTx(tx.TypeRefund, "")}
	})
}

// Refund returns a player's entry fee from the vault. Only the session's
// controlling game identity may submit it, and only for a player who paid
// and has not yet been refunded or paid out.
type Refund struct {
	tx.BaseTx

	// Seed selects the session under the submitting game identity.
	Seed uint64 `json:"Seed"`

	// Player is the address being refunded (required).
	Player string `json:"Player"`
}

// NewRefund creates a new Refund transaction.
func NewRefund(account string, seed uint64, player string) *Refund {
	return &Refund{
		BaseTx: *tx.NewBaseTx(tx.TypeRefund, account),
		Seed:   seed,
		Player: player,
	}
}

// Validate validates the Refund transaction.
func (r *Refund) Validate() error {
	if err := r.BaseTx.Validate(); err != nil {
		return err
	}
	if r.Player == "" || !addresscodec.IsValidAddress(r.Player) {
		return tx.NewResultError(tx.TemMALFORMED, "Player is not a valid address")
	}
	return nil
}

// Flatten returns a flat map of all transaction fields.
func (r *Refund) Flatten() (map[string]any, error) {
	return tx.ReflectFlatten(r)
}

// Apply transfers the entry cost back to the player and marks them refunded.
func (r *Refund) Apply(ctx *tx.ApplyContext) tx.Result {
	game := ctx.AccountID

	session, res := loadSession(ctx.View, game, r.Seed)
	if res != tx.TesSUCCESS {
		return res
	}

	player, err := addresscodec.DecodeAccountID(r.Player)
	if err != nil {
		return tx.TemMALFORMED
	}
	record := session.FindPlayer(player)
	if record == nil {
		return tx.TecNO_TARGET
	}
	if !record.EligibleForSettlement() {
		return tx.TecNOT_ELIGIBLE_FOR_REFUND
	}

	vaultOwner := keylet.SessionOwner(game, r.Seed)
	executor := settle.NewExecutor(ctx.View)
	if res := executor.Transfer(vaultOwner, player, session.Mint, session.EntryCostPerPlayer); res != tx.TesSUCCESS {
		return res
	}

	record.Refunded = true
	return storeSession(ctx.View, session)
}
