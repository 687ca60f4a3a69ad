package models

import "time"

// EliminationNotification is the display projection of a team's status in
// one round. There is at most one per (TeamID, RoundNumber). Ranked marks that
// EliminationOrder was assigned, since the countdown can legitimately reach 0.
type EliminationNotification struct {
	ID               int         `json:"id" db:"id"`
	TeamID           int         `json:"team_id" db:"team_id"`
	TeamName         string      `json:"team_name" db:"team_name"`
	RoundNumber      int         `json:"round_number" db:"round_number"`
	Status           RoundStatus `json:"status" db:"status"`
	Displayed        bool        `json:"displayed" db:"displayed"`
	EliminationOrder int         `json:"elimination_order" db:"elimination_order"`
	Ranked           bool        `json:"ranked" db:"ranked"`
	KillCount        int         `json:"kill_count" db:"kill_count"`
	Position         int         `json:"position" db:"position"`
	CreatedAt        time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at" db:"updated_at"`

	TeamLogo string `json:"team_logo,omitempty" db:"-"`
}

// DisplayStatus answers whether a (team, round) pair is tracked and shown.
type DisplayStatus struct {
	Tracked      bool                     `json:"tracked"`
	Displayed    bool                     `json:"displayed"`
	Notification *EliminationNotification `json:"tracking,omitempty"`
}
