package referee

import (
	"errors"

	addresscodec "github.com/refereehq/refereed/internal/codec/address-codec"
	"github.com/refereehq/refereed/internal/core/fees"
	"github.com/refereehq/refereed/internal/core/ledger/keylet"
	"github.com/refereehq/refereed/internal/core/tx"
	"github.com/refereehq/refereed/internal/core/tx/settle"
)

func init() {
	tx.Register(tx.TypePayout, func() tx.Transaction {
		return &Payout{BaseTx: *tx.NewBaseTx(tx.TypePayout, "")}
	})
}

// Payout pays a winning player their share of the vault. The share is
// computed against the vault balance at the moment of this payout, after
// reserving the termination fee, so the order of settlements matters.
type Payout struct {
	tx.BaseTx

	// Seed selects the session under the submitting game identity.
	Seed uint64 `json:"Seed"`

	// Player is the address being paid out (required).
	Player string `json:"Player"`
}

// NewPayout creates a new Payout transaction.
func NewPayout(account string, seed uint64, player string) *Payout {
	return &Payout{
		BaseTx: *tx.NewBaseTx(tx.TypePayout, account),
		Seed:   seed,
		Player: player,
	}
}

// Validate validates the Payout transaction.
func (p *Payout) Validate() error {
	if err := p.BaseTx.Validate(); err != nil {
		return err
	}
	if p.Player == "" || !addresscodec.IsValidAddress(p.Player) {
		return tx.NewResultError(tx.TemMALFORMED, "Player is not a valid address")
	}
	return nil
}

// Flatten returns a flat map of all transaction fields.
func (p *Payout) Flatten() (map[string]any, error) {
	return tx.ReflectFlatten(p)
}

// Apply transfers the player's winnings and marks them rewarded.
func (p *Payout) Apply(ctx *tx.ApplyContext) tx.Result {
	game := ctx.AccountID

	session, res := loadSession(ctx.View, game, p.Seed)
	if res != tx.TesSUCCESS {
		return res
	}

	player, err := addresscodec.DecodeAccountID(p.Player)
	if err != nil {
		return tx.TemMALFORMED
	}
	record := session.FindPlayer(player)
	if record == nil {
		return tx.TecNO_TARGET
	}
	if !record.EligibleForSettlement() {
		return tx.TecNOT_ELIGIBLE_FOR_PAYOUT
	}

	vaultOwner := keylet.SessionOwner(game, p.Seed)
	executor := settle.NewExecutor(ctx.View)

	vaultBalance, err := executor.BalanceOf(vaultOwner, session.Mint)
	if err != nil {
		return tx.TefINTERNAL
	}
	share, err := fees.PayoutShare(vaultBalance, session.TerminationFee, session.PlayersPerTeam)
	if err != nil {
		if errors.Is(err, fees.ErrInsufficientVault) {
			return tx.TecUNFUNDED
		}
		return tx.TemBAD_AMOUNT
	}

	if res := executor.Transfer(vaultOwner, player, session.Mint, share); res != tx.TesSUCCESS {
		return res
	}

	record.ReceivedRewards = true
	return storeSession(ctx.View, session)
}
