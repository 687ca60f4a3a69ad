package models

import "time"

// Team is the scoring document of one team. Rounds are embedded in the
// document and are never stored or referenced on their own.
type Team struct {
	ID           int       `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Slot         int       `json:"slot" db:"slot"`
	CurrentRound int       `json:"current_round" db:"current_round"`
	TotalPoints  int       `json:"total_points" db:"total_points"`
	IsEliminated bool      `json:"is_eliminated" db:"is_eliminated"`
	Rounds       []Round   `json:"rounds" db:"rounds"`
	Version      int       `json:"version" db:"version"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`

	LogoKey *string `json:"-" db:"logo_key"`
	LogoURL string  `json:"logo" db:"logo_url"`
}

// RoundByNumber returns a pointer into t.Rounds, so callers can mutate the round in place.
func (t *Team) RoundByNumber(roundNumber int) *Round {
	for i := range t.Rounds {
		if t.Rounds[i].RoundNumber == roundNumber {
			return &t.Rounds[i]
		}
	}
	return nil
}

// ActiveRound is the round matching CurrentRound, nil when the team has no rounds.
func (t *Team) ActiveRound() *Round {
	if t.CurrentRound == 0 {
		return nil
	}
	return t.RoundByNumber(t.CurrentRound)
}
