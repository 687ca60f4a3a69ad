package models

// TeamSelector picks teams for a cross-team operation by slot and/or by id.
type TeamSelector struct {
	Slots   []int `json:"slots,omitempty"`
	TeamIDs []int `json:"team_ids,omitempty"`
}

func (s TeamSelector) Empty() bool {
	return len(s.Slots) == 0 && len(s.TeamIDs) == 0
}

type SlotPosition struct {
	Slot     int `json:"slot"`
	Position int `json:"position"`
}

// BatchFailure reports why one member of a batch was not updated.
type BatchFailure struct {
	Slot   int    `json:"slot,omitempty"`
	TeamID int    `json:"team_id,omitempty"`
	Kind   string `json:"kind"`
	Error  string `json:"error"`

	Err error `json:"-"`
}

// BatchResult is the partial-success report of a cross-team operation.
type BatchResult struct {
	Teams    []*Team        `json:"teams"`
	Failures []BatchFailure `json:"failures"`
}

func (b *BatchResult) Partial() bool {
	return len(b.Failures) > 0 && len(b.Teams) > 0
}

func (b *BatchResult) AllFailed() bool {
	return len(b.Failures) > 0 && len(b.Teams) == 0
}
