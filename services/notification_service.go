package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/scoreboard/metrics"
	"github.com/Dosada05/scoreboard/models"
	"github.com/Dosada05/scoreboard/repositories"
	"github.com/Dosada05/scoreboard/scoring"
)

// NotificationService projects team round state into elimination
// notifications that the overlay reveals one by one.
type NotificationService interface {
	Sync(ctx context.Context) (*SyncResult, error)
	Track(ctx context.Context, teamID, roundNumber int) (*models.EliminationNotification, error)
	CheckDisplayStatus(ctx context.Context, teamID, roundNumber int) (*models.DisplayStatus, error)
	MarkDisplayed(ctx context.Context, teamID, roundNumber int) (*models.EliminationNotification, error)
	MarkDisplayedByID(ctx context.Context, id int) (*models.EliminationNotification, error)
	PendingNotifications(ctx context.Context, roundNumber *int) ([]*models.EliminationNotification, error)
	AllNotifications(ctx context.Context, roundNumber *int) ([]*models.EliminationNotification, error)
	ResetRound(ctx context.Context, roundNumber int) (int64, error)
	ResetAll(ctx context.Context) (int64, error)
}

type SyncResult struct {
	Synced int `json:"synced"`
	Ranked int `json:"ranked"`
}

type notificationService struct {
	notificationRepo repositories.NotificationRepository
	teamRepo         repositories.TeamRepository
	broadcaster
}

func NewNotificationService(
	notificationRepo repositories.NotificationRepository,
	teamRepo repositories.TeamRepository,
	notifier Notifier,
	logger *slog.Logger,
	m *metrics.Metrics,
) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		teamRepo:         teamRepo,
		broadcaster:      broadcaster{notifier: notifier, logger: logger, metrics: m},
	}
}

func snapshot(team *models.Team, round *models.Round) *models.EliminationNotification {
	return &models.EliminationNotification{
		TeamID:      team.ID,
		TeamName:    team.Name,
		RoundNumber: round.RoundNumber,
		Status:      scoring.StatusFor(round.EliminationCount),
		KillCount:   round.Kills,
		Position:    round.Position,
	}
}

func (s *notificationService) Sync(ctx context.Context) (*SyncResult, error) {
	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSyncFailed, err)
	}

	result := &SyncResult{}
	for _, team := range teams {
		for i := range team.Rounds {
			changed, err := s.notificationRepo.UpsertOnStatusChange(ctx, snapshot(team, &team.Rounds[i]))
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrSyncFailed, err)
			}
			if changed {
				result.Synced++
			}
		}
	}

	result.Ranked, err = s.notificationRepo.RankEliminated(ctx, scoring.AssignEliminationOrder)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSyncFailed, err)
	}

	s.metrics.AddSyncChanges(result.Synced)
	s.logger.InfoContext(ctx, "Eliminations synced", slog.Int("synced", result.Synced), slog.Int("ranked", result.Ranked))
	if result.Synced > 0 || result.Ranked > 0 {
		s.broadcast(ctx, EventEliminationsSynced, result)
	}
	return result, nil
}

func (s *notificationService) Track(ctx context.Context, teamID, roundNumber int) (*models.EliminationNotification, error) {
	if teamID <= 0 || roundNumber <= 0 {
		return nil, ErrNotificationRequest
	}

	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to load team %d: %w", teamID, err)
	}
	round := team.RoundByNumber(roundNumber)
	if round == nil {
		return nil, fmt.Errorf("%w: round %d", ErrRoundNotFound, roundNumber)
	}

	notification := snapshot(team, round)
	if err := s.notificationRepo.Upsert(ctx, notification); err != nil {
		return nil, err
	}
	notification.TeamLogo = team.LogoURL

	s.broadcast(ctx, EventNotificationTracked, notification)
	return notification, nil
}

func (s *notificationService) CheckDisplayStatus(ctx context.Context, teamID, roundNumber int) (*models.DisplayStatus, error) {
	notification, err := s.notificationRepo.GetByTeamAndRound(ctx, teamID, roundNumber)
	if err != nil {
		if errors.Is(err, repositories.ErrNotificationNotFound) {
			return &models.DisplayStatus{}, nil
		}
		return nil, fmt.Errorf("failed to check display status: %w", err)
	}
	return &models.DisplayStatus{
		Tracked:      true,
		Displayed:    notification.Displayed,
		Notification: notification,
	}, nil
}

func (s *notificationService) MarkDisplayed(ctx context.Context, teamID, roundNumber int) (*models.EliminationNotification, error) {
	if teamID <= 0 || roundNumber <= 0 {
		return nil, ErrNotificationRequest
	}
	notification, err := s.notificationRepo.MarkDisplayed(ctx, teamID, roundNumber)
	return s.displayed(ctx, notification, err)
}

func (s *notificationService) MarkDisplayedByID(ctx context.Context, id int) (*models.EliminationNotification, error) {
	notification, err := s.notificationRepo.MarkDisplayedByID(ctx, id)
	return s.displayed(ctx, notification, err)
}

func (s *notificationService) displayed(ctx context.Context, notification *models.EliminationNotification, err error) (*models.EliminationNotification, error) {
	if err != nil {
		if errors.Is(err, repositories.ErrNotificationNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, fmt.Errorf("failed to mark notification as displayed: %w", err)
	}
	s.broadcast(ctx, EventNotificationShown, notification)
	return notification, nil
}

func (s *notificationService) PendingNotifications(ctx context.Context, roundNumber *int) ([]*models.EliminationNotification, error) {
	notifications, err := s.notificationRepo.ListPending(ctx, roundNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending notifications: %w", err)
	}
	return notifications, nil
}

func (s *notificationService) AllNotifications(ctx context.Context, roundNumber *int) ([]*models.EliminationNotification, error) {
	notifications, err := s.notificationRepo.ListAll(ctx, roundNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

func (s *notificationService) ResetRound(ctx context.Context, roundNumber int) (int64, error) {
	if roundNumber < 1 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidRoundNumber, roundNumber)
	}
	affected, err := s.notificationRepo.ResetRound(ctx, roundNumber)
	if err != nil {
		return 0, err
	}
	s.logger.InfoContext(ctx, "Round notifications reset", slog.Int("round_number", roundNumber), slog.Int64("affected", affected))
	s.broadcast(ctx, EventNotificationsReset, map[string]interface{}{"round_number": roundNumber, "affected": affected})
	return affected, nil
}

func (s *notificationService) ResetAll(ctx context.Context) (int64, error) {
	affected, err := s.notificationRepo.DeleteAll(ctx)
	if err != nil {
		return 0, err
	}
	s.logger.InfoContext(ctx, "All elimination tracking reset", slog.Int64("affected", affected))
	s.broadcast(ctx, EventNotificationsReset, map[string]interface{}{"affected": affected})
	return affected, nil
}
