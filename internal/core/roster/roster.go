// Package roster validates the team layout supplied at session creation.
package roster

import (
	"errors"

	"github.com/refereehq/refereed/internal/crypto"
)

const (
	// MaxTeams is the largest number of teams a session can hold.
	MaxTeams = 2

	// MaxPlayersPerTeam is the per-team player cap.
	MaxPlayersPerTeam = 5
)

var (
	ErrTooManyTeams       = errors.New("roster: too many teams")
	ErrTeamTooLarge       = errors.New("roster: team exceeds player cap")
	ErrEmptyTeam          = errors.New("roster: team has no players")
	ErrTeamLengthMismatch = errors.New("roster: teams are not the same length")
	ErrDuplicatePlayer    = errors.New("roster: players are not unique")
)

// Validate checks the shape of a session roster. It is pure and total: any
// slice of teams yields either nil or one of the package sentinel errors,
// checked in a fixed order so that a roster with several defects always
// reports the same one.
func Validate(teams [][]crypto.AccountID) error {
	if len(teams) > MaxTeams {
		return ErrTooManyTeams
	}
	for _, team := range teams {
		if len(team) > MaxPlayersPerTeam {
			return ErrTeamTooLarge
		}
	}
	if len(teams) == 0 {
		return ErrEmptyTeam
	}
	first := len(teams[0])
	for _, team := range teams {
		if len(team) != first {
			return ErrTeamLengthMismatch
		}
	}
	if first == 0 {
		return ErrEmptyTeam
	}
	seen := make(map[crypto.AccountID]struct{}, len(teams)*first)
	for _, team := range teams {
		for _, player := range team {
			if _, dup := seen[player]; dup {
				return ErrDuplicatePlayer
			}
			seen[player] = struct{}{}
		}
	}
	return nil
}
