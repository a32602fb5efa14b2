package referee

import (
	"github.com/refereehq/refereed/internal/core/ledger/keylet"
	"github.com/refereehq/refereed/internal/core/tx"
	"github.com/refereehq/refereed/internal/core/tx/settle"
)

func init() {
	tx.Register(tx.TypeSessionClose, func() tx.Transaction {
		return &SessionClose{BaseTx: *tx.NewBaseTx(tx.TypeSessionClose, "")}
	})
}

// SessionClose sweeps the termination fee to the program admin, destroys the
// vault and removes the session entry. It requires every player to have
// reached a terminal state first.
type SessionClose struct {
	tx.BaseTx

	// Seed selects the session under the submitting game identity.
	Seed uint64 `json:"Seed"`
}

// NewSessionClose creates a new SessionClose transaction.
func NewSessionClose(account string, seed uint64) *SessionClose {
	return &SessionClose{
		BaseTx: *tx.NewBaseTx(tx.TypeSessionClose, account),
		Seed:   seed,
	}
}

// Validate validates the SessionClose transaction.
func (s *SessionClose) Validate() error {
	return s.BaseTx.Validate()
}

// Flatten returns a flat map of all transaction fields.
func (s *SessionClose) Flatten() (map[string]any, error) {
	return tx.ReflectFlatten(s)
}

// Apply settles the session terminally. By the conservation invariant the
// vault holds exactly the termination fee once every player is settled; any
// truncation residue left by integer division is destroyed with the vault.
func (s *SessionClose) Apply(ctx *tx.ApplyContext) tx.Result {
	game := ctx.AccountID

	session, res := loadSession(ctx.View, game, s.Seed)
	if res != tx.TesSUCCESS {
		return res
	}
	if !session.AllSettled() {
		return tx.TecPLAYERS_NOT_SETTLED
	}

	cfg, res := loadConfig(ctx.View, game)
	if res != tx.TesSUCCESS {
		return res
	}

	vaultOwner := keylet.SessionOwner(game, s.Seed)
	executor := settle.NewExecutor(ctx.View)
	if session.TerminationFeePaid {
		if res := executor.Transfer(vaultOwner, cfg.Admin, session.Mint, session.TerminationFee); res != tx.TesSUCCESS {
			return res
		}
	}

	if _, res := executor.CloseAccount(vaultOwner, session.Mint); res != tx.TesSUCCESS {
		return res
	}
	if err := ctx.View.Erase(keylet.GameSession(game, s.Seed)); err != nil {
		return tx.TefINTERNAL
	}
	return tx.TesSUCCESS
}
