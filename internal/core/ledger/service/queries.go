package service

import (
	"fmt"
	"time"

	addresscodec "github.com/refereehq/refereed/internal/codec/address-codec"
	"github.com/refereehq/refereed/internal/core/ledger/keylet"
	"github.com/refereehq/refereed/internal/core/tx/sle"
	"github.com/refereehq/refereed/internal/crypto"
)

// PlayerInfo is one roster slot in a session view.
type PlayerInfo struct {
	Account         string `json:"account"`
	Paid            bool   `json:"paid"`
	Refunded        bool   `json:"refunded"`
	ReceivedRewards bool   `json:"received_rewards"`
}

// SessionInfo is the query view of a wagering session.
type SessionInfo struct {
	Game               string         `json:"game"`
	Seed               uint64         `json:"seed"`
	Mint               string         `json:"mint"`
	EntryCostPerTeam   uint64         `json:"entry_cost_per_team"`
	EntryCostPerPlayer uint64         `json:"entry_cost_per_player"`
	AmountOfTeams      uint8          `json:"amount_of_teams"`
	PlayersPerTeam     uint8          `json:"players_per_team"`
	Teams              [][]PlayerInfo `json:"teams"`
	TerminationFee     uint64         `json:"termination_fee"`
	TerminationFeePaid bool           `json:"termination_fee_paid"`
	VaultBalance       uint64         `json:"vault_balance"`
	AllSettled         bool           `json:"all_settled"`
}

// ConfigInfo is the query view of a game's fee configuration.
type ConfigInfo struct {
	Game           string `json:"game"`
	Admin          string `json:"admin"`
	Mint           string `json:"mint"`
	FeeBasisPoints uint64 `json:"fee_basis_points"`
}

// Info is the query view of the daemon itself.
type Info struct {
	LedgerSeq     uint64         `json:"ledger_seq"`
	Entries       int            `json:"state_entries"`
	Mint          string         `json:"mint"`
	MintDecimals  uint8          `json:"mint_decimals"`
	UptimeSeconds int64          `json:"uptime_seconds"`
	Store         map[string]any `json:"store,omitempty"`
}

// SessionInfo returns the session opened by game for the given seed.
func (s *Service) SessionInfo(game string, seed uint64) (*SessionInfo, error) {
	gameID, err := addresscodec.DecodeAccountID(game)
	if err != nil {
		return nil, fmt.Errorf("service: bad game address: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.ledger.Read(keylet.GameSession(gameID, seed))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, ErrNotFound
	}
	session, err := sle.ParseGameSession(data)
	if err != nil {
		return nil, fmt.Errorf("service: parse session: %w", err)
	}

	teams := make([][]PlayerInfo, len(session.Teams))
	for i, team := range session.Teams {
		teams[i] = make([]PlayerInfo, len(team))
		for j, rec := range team {
			teams[i][j] = PlayerInfo{
				Account:         addresscodec.EncodeAccountID(rec.Player),
				Paid:            rec.Paid,
				Refunded:        rec.Refunded,
				ReceivedRewards: rec.ReceivedRewards,
			}
		}
	}

	return &SessionInfo{
		Game:               game,
		Seed:               seed,
		Mint:               addresscodec.EncodeAccountID(session.Mint),
		EntryCostPerTeam:   session.EntryCostPerTeam,
		EntryCostPerPlayer: session.EntryCostPerPlayer,
		AmountOfTeams:      session.AmountOfTeams,
		PlayersPerTeam:     session.PlayersPerTeam,
		Teams:              teams,
		TerminationFee:     session.TerminationFee,
		TerminationFeePaid: session.TerminationFeePaid,
		VaultBalance:       s.balanceOf(keylet.SessionOwner(gameID, seed), session.Mint),
		AllSettled:         session.AllSettled(),
	}, nil
}

// ConfigInfo returns the fee configuration for a game.
func (s *Service) ConfigInfo(game string) (*ConfigInfo, error) {
	gameID, err := addresscodec.DecodeAccountID(game)
	if err != nil {
		return nil, fmt.Errorf("service: bad game address: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.ledger.Read(keylet.ProgramConfig(gameID))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, ErrNotFound
	}
	cfg, err := sle.ParseProgramConfig(data)
	if err != nil {
		return nil, fmt.Errorf("service: parse config: %w", err)
	}

	return &ConfigInfo{
		Game:           game,
		Admin:          addresscodec.EncodeAccountID(cfg.Admin),
		Mint:           addresscodec.EncodeAccountID(cfg.Mint),
		FeeBasisPoints: cfg.FeeBasisPoints,
	}, nil
}

// AccountBalance returns an account's balance in the settlement asset.
// Accounts with no token entry read as zero.
func (s *Service) AccountBalance(account string) (uint64, error) {
	owner, err := addresscodec.DecodeAccountID(account)
	if err != nil {
		return 0, fmt.Errorf("service: bad account address: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balanceOf(owner, s.mint), nil
}

func (s *Service) balanceOf(owner, mint crypto.AccountID) uint64 {
	data, err := s.ledger.Read(keylet.TokenAccount(owner, mint))
	if err != nil || data == nil {
		return 0
	}
	account, err := sle.ParseTokenAccount(data)
	if err != nil {
		return 0
	}
	return account.Balance
}

// ServerInfo reports daemon status.
func (s *Service) ServerInfo() *Info {
	s.mu.Lock()
	defer s.mu.Unlock()

	info := &Info{
		LedgerSeq:     s.ledger.Seq(),
		Entries:       s.ledger.EntryCount(),
		Mint:          addresscodec.EncodeAccountID(s.mint),
		MintDecimals:  s.decimals,
		UptimeSeconds: int64(time.Since(s.started).Seconds()),
	}
	if s.store != nil {
		stats := s.store.Stats()
		info.Store = map[string]any{
			"backend":      stats.BackendName,
			"reads":        stats.Reads,
			"writes":       stats.Writes,
			"deletes":      stats.Deletes,
			"cache_hits":   stats.CacheHits,
			"cache_misses": stats.CacheMisses,
		}
	}
	return info
}
