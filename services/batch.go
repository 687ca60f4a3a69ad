package services

import (
	"context"
	"fmt"

	"github.com/Dosada05/scoreboard/models"
	"golang.org/x/sync/errgroup"
)

type batchTarget struct {
	slot   int
	teamID int
	err    error // цель не найдена еще до запуска
}

// resolveTargets turns a selector into per-team targets in request order:
// slots first, then team ids not already selected through a slot. Unknown
// slots and ids become not-found targets.
func (s *teamService) resolveTargets(ctx context.Context, selector models.TeamSelector) ([]batchTarget, error) {
	if selector.Empty() {
		return nil, ErrSelectorEmpty
	}

	targets := make([]batchTarget, 0, len(selector.Slots)+len(selector.TeamIDs))
	seenTeams := make(map[int]bool)

	if len(selector.Slots) > 0 {
		teams, err := s.teamRepo.ListBySlots(ctx, selector.Slots)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve slots: %w", err)
		}
		bySlot := make(map[int]*models.Team, len(teams))
		for _, t := range teams {
			bySlot[t.Slot] = t
		}
		seenSlots := make(map[int]bool)
		for _, slot := range selector.Slots {
			if seenSlots[slot] {
				continue
			}
			seenSlots[slot] = true
			team, ok := bySlot[slot]
			if !ok {
				targets = append(targets, batchTarget{slot: slot, err: fmt.Errorf("%w: no team in slot %d", ErrTeamNotFound, slot)})
				continue
			}
			seenTeams[team.ID] = true
			targets = append(targets, batchTarget{slot: slot, teamID: team.ID})
		}
	}

	if len(selector.TeamIDs) > 0 {
		teams, err := s.teamRepo.ListByIDs(ctx, selector.TeamIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve team ids: %w", err)
		}
		byID := make(map[int]*models.Team, len(teams))
		for _, t := range teams {
			byID[t.ID] = t
		}
		for _, id := range selector.TeamIDs {
			if seenTeams[id] {
				continue
			}
			seenTeams[id] = true
			team, ok := byID[id]
			if !ok {
				targets = append(targets, batchTarget{teamID: id, err: fmt.Errorf("%w: id %d", ErrTeamNotFound, id)})
				continue
			}
			targets = append(targets, batchTarget{slot: team.Slot, teamID: team.ID})
		}
	}

	return targets, nil
}

func (s *teamService) runSelectorBatch(ctx context.Context, op string, selector models.TeamSelector, fn func(*models.Team) error) (*models.BatchResult, error) {
	targets, err := s.resolveTargets(ctx, selector)
	if err != nil {
		return nil, err
	}
	return s.runBatch(ctx, op, targets, fn), nil
}

// runBatch applies fn to every target, each in its own transaction. A failing
// team is reported and never affects the others.
func (s *teamService) runBatch(ctx context.Context, op string, targets []batchTarget, fn func(*models.Team) error) *models.BatchResult {
	teams := make([]*models.Team, len(targets))
	errs := make([]error, len(targets))

	var g errgroup.Group
	g.SetLimit(s.limit)
	for i, target := range targets {
		if target.err != nil {
			errs[i] = target.err
			continue
		}
		g.Go(func() error {
			teams[i], errs[i] = s.mutate(ctx, op, target.teamID, fn)
			return nil
		})
	}
	_ = g.Wait()

	result := &models.BatchResult{
		Teams:    make([]*models.Team, 0, len(targets)),
		Failures: make([]models.BatchFailure, 0),
	}
	for i, target := range targets {
		if errs[i] != nil {
			result.Failures = append(result.Failures, models.BatchFailure{
				Slot:   target.slot,
				TeamID: target.teamID,
				Kind:   string(KindOf(errs[i])),
				Error:  errs[i].Error(),
				Err:    errs[i],
			})
			continue
		}
		result.Teams = append(result.Teams, teams[i])
	}

	if len(result.Failures) > 0 {
		s.logger.WarnContext(ctx, "Batch finished with failures",
			"operation", op,
			"succeeded", len(result.Teams),
			"failed", len(result.Failures),
		)
	}
	return result
}
