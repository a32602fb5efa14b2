package referee

import (
	"github.com/refereehq/refereed/internal/core/fees"
	"github.com/refereehq/refereed/internal/core/ledger/keylet"
	"github.com/refereehq/refereed/internal/core/roster"
	"github.com/refereehq/refereed/internal/core/tx"
	"github.com/refereehq/refereed/internal/core/tx/settle"
	"github.com/refereehq/refereed/internal/core/tx/sle"
	"github.com/refereehq/refereed/internal/crypto"
)

func init() {
	tx.Register(tx.TypeSessionCreate, func() tx.Transaction {
		return &SessionCreate{BaseTx: *tx.NewBaseTx(tx.TypeSessionCreate, "")}
	})
}

// SessionCreate opens a new escrow session. The submitting account is the
// game identity: it must carry a program config, and it pays the termination
// fee into the session vault up front.
type SessionCreate struct {
	tx.BaseTx

	// Seed is the caller-chosen discriminator for the session (required;
	// a game may run many sessions concurrently under distinct seeds).
	Seed uint64 `json:"Seed"`

	// EntryCostPerTeam is the entry cost per team in whole asset units.
	EntryCostPerTeam uint64 `json:"EntryCostPerTeam"`

	// Teams is the roster: an ordered list of teams, each an ordered list
	// of player addresses.
	Teams [][]string `json:"Teams"`
}

// NewSessionCreate creates a new SessionCreate transaction.
func NewSessionCreate(account string, seed, entryCostPerTeam uint64, teams [][]string) *SessionCreate {
	return &SessionCreate{
		BaseTx:           *tx.NewBaseTx(tx.TypeSessionCreate, account),
		Seed:             seed,
		EntryCostPerTeam: entryCostPerTeam,
		Teams:            teams,
	}
}

func rosterResult(err error) error {
	switch err {
	case nil:
		return nil
	case roster.ErrTooManyTeams:
		return tx.NewResultError(tx.TemTOO_MANY_TEAMS, err.Error())
	case roster.ErrTeamTooLarge:
		return tx.NewResultError(tx.TemTEAM_TOO_LARGE, err.Error())
	case roster.ErrEmptyTeam:
		return tx.NewResultError(tx.TemEMPTY_TEAM, err.Error())
	case roster.ErrTeamLengthMismatch:
		return tx.NewResultError(tx.TemTEAM_LENGTH_MISMATCH, err.Error())
	case roster.ErrDuplicatePlayer:
		return tx.NewResultError(tx.TemDUPLICATE_PLAYER, err.Error())
	default:
		return tx.NewResultError(tx.TemMALFORMED, err.Error())
	}
}

// decodeTeams decodes the roster addresses into account IDs.
func (s *SessionCreate) decodeTeams() ([][]crypto.AccountID, error) {
	teams := make([][]crypto.AccountID, len(s.Teams))
	for i, team := range s.Teams {
		teams[i] = make([]crypto.AccountID, len(team))
		for j, address := range team {
			player, err := decodePlayer(address)
			if err != nil {
				return nil, err
			}
			teams[i][j] = player
		}
	}
	return teams, nil
}

// Validate validates the SessionCreate transaction, including the full
// roster shape. Validation is pure; no ledger state is touched.
func (s *SessionCreate) Validate() error {
	if err := s.BaseTx.Validate(); err != nil {
		return err
	}
	if s.EntryCostPerTeam == 0 {
		return tx.NewResultError(tx.TemBAD_AMOUNT, "EntryCostPerTeam must be positive")
	}
	teams, err := s.decodeTeams()
	if err != nil {
		return err
	}
	return rosterResult(roster.Validate(teams))
}

// Flatten returns a flat map of all transaction fields.
func (s *SessionCreate) Flatten() (map[string]any, error) {
	return tx.ReflectFlatten(s)
}

// Apply creates the session entry and escrows the termination fee.
func (s *SessionCreate) Apply(ctx *tx.ApplyContext) tx.Result {
	game := ctx.AccountID

	cfg, res := loadConfig(ctx.View, game)
	if res != tx.TesSUCCESS {
		return res
	}

	sessionKey := keylet.GameSession(game, s.Seed)
	exists, err := ctx.View.Exists(sessionKey)
	if err != nil {
		return tx.TefINTERNAL
	}
	if exists {
		return tx.TecSESSION_EXISTS
	}

	decimals, res := loadMintDecimals(ctx.View, cfg.Mint)
	if res != tx.TesSUCCESS {
		return res
	}

	teams, err := s.decodeTeams()
	if err != nil {
		return tx.TemMALFORMED
	}
	playersPerTeam := uint8(len(teams[0]))

	scaledCostPerTeam, err := fees.ScaledCostPerTeam(s.EntryCostPerTeam, decimals)
	if err != nil {
		return tx.TemBAD_AMOUNT
	}
	costPerPlayer, err := fees.EntryCostPerPlayer(s.EntryCostPerTeam, decimals, playersPerTeam)
	if err != nil {
		return tx.TemBAD_AMOUNT
	}
	terminationFee, err := fees.TerminationFee(s.EntryCostPerTeam, decimals, uint8(len(teams)), cfg.FeeBasisPoints)
	if err != nil {
		return tx.TemBAD_AMOUNT
	}

	records := make([][]sle.PlayerRecord, len(teams))
	for i, team := range teams {
		records[i] = make([]sle.PlayerRecord, len(team))
		for j, player := range team {
			records[i][j] = sle.PlayerRecord{Player: player}
		}
	}

	session := &sle.GameSession{
		Seed:               s.Seed,
		Game:               game,
		Mint:               cfg.Mint,
		EntryCostPerTeam:   scaledCostPerTeam,
		EntryCostPerPlayer: costPerPlayer,
		AmountOfTeams:      uint8(len(teams)),
		PlayersPerTeam:     playersPerTeam,
		Teams:              records,
		TerminationFee:     terminationFee,
	}

	// The fee moves before the entry is written; if the game identity
	// cannot cover it, no session is created.
	vaultOwner := keylet.SessionOwner(game, s.Seed)
	executor := settle.NewExecutor(ctx.View)
	if res := executor.Transfer(game, vaultOwner, cfg.Mint, terminationFee); res != tx.TesSUCCESS {
		return res
	}
	session.TerminationFeePaid = true

	data, err := session.Bytes()
	if err != nil {
		return tx.TefINTERNAL
	}
	if err := ctx.View.Insert(sessionKey, data); err != nil {
		return tx.TefINTERNAL
	}
	return tx.TesSUCCESS
}
