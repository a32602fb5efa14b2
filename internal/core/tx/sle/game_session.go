package sle

// PlayerRecord tracks one player's settlement state within a session.
//
// The three flags are monotonic: each is set true at most once and never
// reset. Refunded and ReceivedRewards are mutually exclusive and both
// require Paid.
type PlayerRecord struct {
	Player          AccountID `codec:"player"`
	Paid            bool      `codec:"paid"`
	Refunded        bool      `codec:"refunded"`
	ReceivedRewards bool      `codec:"received_rewards"`
}

// Settled reports whether the player's escrow position is terminal.
func (p *PlayerRecord) Settled() bool {
	return p.Refunded || p.ReceivedRewards
}

// EligibleForSettlement reports whether the player can still be refunded or
// paid out: they must have deposited and not yet reached a terminal state.
func (p *PlayerRecord) EligibleForSettlement() bool {
	return p.Paid && !p.Refunded && !p.ReceivedRewards
}

// GameSession is the escrow session entry for one (game, seed) pair.
// The roster is immutable after creation; only player flags change.
type GameSession struct {
	// Seed is the caller-chosen 64-bit discriminator for this session.
	Seed uint64 `codec:"seed"`

	// Game is the identity that created and controls the session.
	Game AccountID `codec:"game"`

	// Mint is the asset the session settles in.
	Mint AccountID `codec:"mint"`

	// EntryCostPerTeam is the entry cost per team in asset base units.
	EntryCostPerTeam uint64 `codec:"entry_cost_per_team"`

	// EntryCostPerPlayer is EntryCostPerTeam divided by the team size,
	// truncated, in asset base units.
	EntryCostPerPlayer uint64 `codec:"entry_cost_per_player"`

	// AmountOfTeams and PlayersPerTeam are derived from the roster.
	AmountOfTeams  uint8 `codec:"amount_of_teams"`
	PlayersPerTeam uint8 `codec:"players_per_team"`

	// Teams is the ordered roster; each team is an ordered sequence of
	// player records.
	Teams [][]PlayerRecord `codec:"teams"`

	// TerminationFee is the upfront platform reserve in asset base units.
	TerminationFee uint64 `codec:"termination_fee"`

	// TerminationFeePaid is set once the fee has been escrowed.
	TerminationFeePaid bool `codec:"termination_fee_paid"`
}

// ParseGameSession parses a GameSession ledger entry.
func ParseGameSession(data []byte) (*GameSession, error) {
	var s GameSession
	if err := Decode(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Bytes serializes the entry.
func (s *GameSession) Bytes() ([]byte, error) {
	return Encode(s)
}

// FindPlayer returns the record for the given player, or nil if the player
// is not a member of the session.
func (s *GameSession) FindPlayer(player AccountID) *PlayerRecord {
	for i := range s.Teams {
		for j := range s.Teams[i] {
			if s.Teams[i][j].Player == player {
				return &s.Teams[i][j]
			}
		}
	}
	return nil
}

// AllSettled reports whether every player has reached a terminal state.
func (s *GameSession) AllSettled() bool {
	for i := range s.Teams {
		for j := range s.Teams[i] {
			if !s.Teams[i][j].Settled() {
				return false
			}
		}
	}
	return true
}
