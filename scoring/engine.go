package scoring

import (
	"fmt"
	"slices"

	"github.com/Dosada05/scoreboard/models"
)

// CreateRound appends a zeroed round to the team and makes it current.
func (r Rules) CreateRound(t *models.Team, roundNumber int) error {
	if roundNumber < 1 || roundNumber > MaxRoundNumber {
		return fmt.Errorf("%w: %d", ErrInvalidRoundNumber, roundNumber)
	}
	if t.RoundByNumber(roundNumber) != nil {
		return fmt.Errorf("%w: round %d, slot %d", ErrDuplicateRound, roundNumber, t.Slot)
	}

	latest := latestRound(t)
	if r.StrictRoundSequencing {
		if roundNumber != latest+1 {
			return fmt.Errorf("%w: round %d must directly follow round %d", ErrInvalidRoundNumber, roundNumber, latest)
		}
	} else if roundNumber <= latest {
		return fmt.Errorf("%w: round %d must be after round %d", ErrInvalidRoundNumber, roundNumber, latest)
	}

	t.Rounds = append(t.Rounds, models.Round{
		RoundNumber:       roundNumber,
		EliminatedPlayers: []int{},
		Status:            models.RoundStatusAlive,
	})
	t.CurrentRound = roundNumber
	t.IsEliminated = false
	return nil
}

// DeleteRound removes a round and takes its points out of the team total.
func (r Rules) DeleteRound(t *models.Team, roundNumber int) error {
	idx := slices.IndexFunc(t.Rounds, func(rd models.Round) bool { return rd.RoundNumber == roundNumber })
	if idx < 0 {
		return fmt.Errorf("%w: round %d, slot %d", ErrRoundNotFound, roundNumber, t.Slot)
	}

	removed := t.Rounds[idx]
	t.Rounds = slices.Delete(t.Rounds, idx, idx+1)
	t.TotalPoints -= removed.Points()

	t.CurrentRound = latestRound(t)
	active := t.ActiveRound()
	t.IsEliminated = active != nil && IsEliminated(active.EliminationCount)
	return nil
}

// AdjustKills adds delta (which may be negative) to the current round's kills.
func (r Rules) AdjustKills(t *models.Team, delta int) error {
	round := t.ActiveRound()
	if round == nil {
		return ErrNoActiveRound
	}
	if delta > MaxKills || delta < -MaxKills {
		return fmt.Errorf("%w: delta %d out of range", ErrInvalidKills, delta)
	}
	kills := round.Kills + delta
	if kills < 0 {
		return fmt.Errorf("%w: kills would drop to %d", ErrInvalidKills, kills)
	}
	if kills > MaxKills {
		return fmt.Errorf("%w: kills would reach %d, limit %d", ErrInvalidKills, kills, MaxKills)
	}
	r.applyKills(t, round, kills)
	return nil
}

// SetKills overwrites the current round's kills with an absolute value.
func (r Rules) SetKills(t *models.Team, kills int) error {
	if kills < 0 || kills > MaxKills {
		return fmt.Errorf("%w: %d", ErrInvalidKills, kills)
	}
	round := t.ActiveRound()
	if round == nil {
		return ErrNoActiveRound
	}
	r.applyKills(t, round, kills)
	return nil
}

func (r Rules) applyKills(t *models.Team, round *models.Round, kills int) {
	killPoints := kills * r.multiplier()
	t.TotalPoints += killPoints - round.KillPoints
	round.Kills = kills
	round.KillPoints = killPoints
}

// TogglePlayerElimination flips one player's eliminated flag in the current
// round. It reports true when the player was marked eliminated and false when
// the mark was removed.
func (r Rules) TogglePlayerElimination(t *models.Team, playerIndex int) (bool, error) {
	if playerIndex < 0 || playerIndex >= PlayersPerTeam {
		return false, fmt.Errorf("%w: got %d", ErrInvalidPlayerIndex, playerIndex)
	}
	round := t.ActiveRound()
	if round == nil {
		return false, ErrNoActiveRound
	}

	added := false
	if idx := slices.Index(round.EliminatedPlayers, playerIndex); idx >= 0 {
		round.EliminatedPlayers = slices.Delete(round.EliminatedPlayers, idx, idx+1)
	} else {
		round.EliminatedPlayers = append(round.EliminatedPlayers, playerIndex)
		added = true
	}

	round.EliminationCount = min(max(len(round.EliminatedPlayers), 0), PlayersPerTeam)
	round.Status = StatusFor(round.EliminationCount)
	t.IsEliminated = IsEliminated(round.EliminationCount)
	return added, nil
}

// SetPosition records a round placement and moves the team total by the
// change in position points, so repeating a call leaves the total unchanged.
func (r Rules) SetPosition(t *models.Team, roundNumber, position int) error {
	if position < 0 || position > MaxPosition {
		return fmt.Errorf("%w: %d", ErrInvalidPosition, position)
	}
	round := t.RoundByNumber(roundNumber)
	if round == nil {
		return fmt.Errorf("%w: round %d, slot %d", ErrRoundNotFound, roundNumber, t.Slot)
	}

	points := PositionPoints(position)
	t.TotalPoints += points - round.PositionPoints
	round.Position = position
	round.PositionPoints = points
	return nil
}

func latestRound(t *models.Team) int {
	latest := 0
	for _, rd := range t.Rounds {
		latest = max(latest, rd.RoundNumber)
	}
	return latest
}
