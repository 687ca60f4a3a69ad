package models

type RoundStatus string

const (
	RoundStatusAlive      RoundStatus = "alive"
	RoundStatusEliminated RoundStatus = "eliminated"
)

// Round holds one team's scoring state for a single round.
type Round struct {
	RoundNumber       int         `json:"round_number"`
	Kills             int         `json:"kills"`
	KillPoints        int         `json:"kill_points"`
	Position          int         `json:"position"`
	PositionPoints    int         `json:"position_points"`
	EliminationCount  int         `json:"elimination_count"`
	EliminatedPlayers []int       `json:"eliminated_players"`
	Status            RoundStatus `json:"status"`
}

// Points is the round's contribution to the team total.
func (r Round) Points() int {
	return r.KillPoints + r.PositionPoints
}
