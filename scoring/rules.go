// Package scoring holds the pure scoring and elimination rules of the event.
// Every function here mutates a *models.Team in memory; persistence and
// locking are the caller's job.
package scoring

import (
	"errors"

	"github.com/Dosada05/scoreboard/models"
)

const (
	// PlayersPerTeam is the squad size; player indices run 0..PlayersPerTeam-1.
	PlayersPerTeam = 4
	// DefaultKillPointMultiplier is the canonical points-per-kill value.
	DefaultKillPointMultiplier = 1

	// Upper bounds keep every stored counter and the team total inside a
	// Postgres INTEGER.
	MaxRoundNumber         = 1_000
	MaxKills               = 10_000
	MaxPosition            = 1_000
	MaxKillPointMultiplier = 10
)

var (
	ErrInvalidRoundNumber = errors.New("invalid round number")
	ErrDuplicateRound     = errors.New("round already exists for team")
	ErrRoundNotFound      = errors.New("round not found for team")
	ErrNoActiveRound      = errors.New("no active round found")
	ErrInvalidKills       = errors.New("invalid kills value")
	ErrInvalidPlayerIndex = errors.New("invalid player index (0-3 required)")
	ErrInvalidPosition    = errors.New("invalid position")
	ErrInvariantViolation = errors.New("team scoring invariant violated")
)

var positionPoints = map[int]int{
	1:  10,
	2:  6,
	3:  5,
	4:  4,
	5:  3,
	6:  2,
	7:  1,
	8:  1,
	9:  0,
	10: 0,
}

// PositionPoints returns the placement points for a final position. Unset (0)
// and positions outside the table score nothing.
func PositionPoints(position int) int {
	return positionPoints[position]
}

// Rules carries the business switches that differed between historical
// versions of the scoreboard.
type Rules struct {
	KillPointMultiplier int
	// StrictRoundSequencing requires a new round to be exactly latest+1 for
	// the team. Without it any number above the team's latest round is accepted.
	StrictRoundSequencing bool
}

func DefaultRules() Rules {
	return Rules{KillPointMultiplier: DefaultKillPointMultiplier}
}

func (r Rules) multiplier() int {
	if r.KillPointMultiplier <= 0 || r.KillPointMultiplier > MaxKillPointMultiplier {
		return DefaultKillPointMultiplier
	}
	return r.KillPointMultiplier
}

// IsEliminated reports whether a round with the given elimination count knocks the team out.
func IsEliminated(eliminationCount int) bool {
	return eliminationCount == PlayersPerTeam
}

func StatusFor(eliminationCount int) models.RoundStatus {
	if IsEliminated(eliminationCount) {
		return models.RoundStatusEliminated
	}
	return models.RoundStatusAlive
}
