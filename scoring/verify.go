package scoring

import (
	"fmt"

	"github.com/Dosada05/scoreboard/models"
)

// Verify checks the derived fields of a team against its rounds and returns
// the first inconsistency found.
func Verify(t *models.Team) error {
	sum := 0
	seen := make(map[int]bool, len(t.Rounds))
	for _, rd := range t.Rounds {
		if rd.RoundNumber < 1 {
			return fmt.Errorf("%w: round number %d", ErrInvariantViolation, rd.RoundNumber)
		}
		if seen[rd.RoundNumber] {
			return fmt.Errorf("%w: round %d appears twice", ErrInvariantViolation, rd.RoundNumber)
		}
		seen[rd.RoundNumber] = true

		if err := verifyRound(rd); err != nil {
			return err
		}
		sum += rd.Points()
	}

	if t.TotalPoints != sum {
		return fmt.Errorf("%w: total points %d, rounds add up to %d", ErrInvariantViolation, t.TotalPoints, sum)
	}
	if latest := latestRound(t); t.CurrentRound != latest {
		return fmt.Errorf("%w: current round %d, latest round %d", ErrInvariantViolation, t.CurrentRound, latest)
	}
	active := t.ActiveRound()
	wantEliminated := active != nil && IsEliminated(active.EliminationCount)
	if t.IsEliminated != wantEliminated {
		return fmt.Errorf("%w: is_eliminated %t, current round says %t", ErrInvariantViolation, t.IsEliminated, wantEliminated)
	}
	return nil
}

func verifyRound(rd models.Round) error {
	if rd.Kills < 0 {
		return fmt.Errorf("%w: round %d has %d kills", ErrInvariantViolation, rd.RoundNumber, rd.Kills)
	}
	if rd.PositionPoints != PositionPoints(rd.Position) {
		return fmt.Errorf("%w: round %d position %d scored %d", ErrInvariantViolation, rd.RoundNumber, rd.Position, rd.PositionPoints)
	}
	if rd.EliminationCount < 0 || rd.EliminationCount > PlayersPerTeam {
		return fmt.Errorf("%w: round %d elimination count %d", ErrInvariantViolation, rd.RoundNumber, rd.EliminationCount)
	}
	if rd.EliminationCount != len(rd.EliminatedPlayers) {
		return fmt.Errorf("%w: round %d elimination count %d, %d players marked", ErrInvariantViolation, rd.RoundNumber, rd.EliminationCount, len(rd.EliminatedPlayers))
	}
	players := make(map[int]bool, len(rd.EliminatedPlayers))
	for _, p := range rd.EliminatedPlayers {
		if p < 0 || p >= PlayersPerTeam || players[p] {
			return fmt.Errorf("%w: round %d eliminated players %v", ErrInvariantViolation, rd.RoundNumber, rd.EliminatedPlayers)
		}
		players[p] = true
	}
	if rd.Status != StatusFor(rd.EliminationCount) {
		return fmt.Errorf("%w: round %d status %q with %d eliminations", ErrInvariantViolation, rd.RoundNumber, rd.Status, rd.EliminationCount)
	}
	return nil
}
