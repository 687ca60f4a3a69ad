package scoring

import (
	"cmp"
	"slices"

	"github.com/Dosada05/scoreboard/models"
)

// AssignEliminationOrder ranks eliminated notifications that have no rank yet.
// Ranks count down from aliveCount in creation order, so the earliest
// elimination gets the highest rank and the tail may reach 0 or below; Ranked
// is what marks an entry as done. Already ranked or alive entries are
// skipped and keep their values. The ranked entries are returned in the order
// they were assigned.
func AssignEliminationOrder(aliveCount int, pending []*models.EliminationNotification) []*models.EliminationNotification {
	unranked := make([]*models.EliminationNotification, 0, len(pending))
	for _, n := range pending {
		if n != nil && n.Status == models.RoundStatusEliminated && !n.Ranked {
			unranked = append(unranked, n)
		}
	}

	slices.SortStableFunc(unranked, func(a, b *models.EliminationNotification) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	order := aliveCount
	for _, n := range unranked {
		n.EliminationOrder = order
		n.Ranked = true
		order--
	}
	return unranked
}
