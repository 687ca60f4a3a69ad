package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Dosada05/scoreboard/metrics"
	"github.com/Dosada05/scoreboard/models"
	"github.com/Dosada05/scoreboard/realtime"
	"github.com/Dosada05/scoreboard/repositories"
	"github.com/Dosada05/scoreboard/scoring"
	"github.com/Dosada05/scoreboard/storage"
)

const defaultBatchConcurrency = 8

type TeamService interface {
	CreateTeam(ctx context.Context, input CreateTeamInput) (*models.Team, error)
	GetTeam(ctx context.Context, id int) (*models.Team, error)
	ListTeams(ctx context.Context) ([]*models.Team, error)
	DeleteTeam(ctx context.Context, id int) error

	CreateRound(ctx context.Context, selector models.TeamSelector, roundNumber int) (*models.BatchResult, error)
	DeleteRound(ctx context.Context, selector models.TeamSelector, roundNumber int) (*models.BatchResult, error)
	SetRoundPositions(ctx context.Context, roundNumber int, positions []models.SlotPosition) (*models.BatchResult, error)

	AdjustKills(ctx context.Context, id int, delta int) (*models.Team, error)
	SetKills(ctx context.Context, id int, kills int) (*models.Team, error)
	IncrementKills(ctx context.Context, id int) (*models.Team, error)
	DecrementKills(ctx context.Context, id int) (*models.Team, error)
	TogglePlayerElimination(ctx context.Context, id int, playerIndex int) (*models.Team, bool, error)
}

type CreateTeamInput struct {
	Name            string
	Slot            int
	Logo            io.Reader
	LogoContentType string
}

type TeamServiceConfig struct {
	Rules            scoring.Rules
	BatchConcurrency int
}

type teamService struct {
	teamRepo repositories.TeamRepository
	uploader storage.FileUploader
	rules    scoring.Rules
	limit    int
	broadcaster
}

func NewTeamService(
	teamRepo repositories.TeamRepository,
	uploader storage.FileUploader,
	notifier Notifier,
	cfg TeamServiceConfig,
	logger *slog.Logger,
	m *metrics.Metrics,
) TeamService {
	limit := cfg.BatchConcurrency
	if limit <= 0 {
		limit = defaultBatchConcurrency
	}
	return &teamService{
		teamRepo:    teamRepo,
		uploader:    uploader,
		rules:       cfg.Rules,
		limit:       limit,
		broadcaster: broadcaster{notifier: notifier, logger: logger, metrics: m},
	}
}

func (s *teamService) CreateTeam(ctx context.Context, input CreateTeamInput) (*models.Team, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTeamNameRequired
	}
	if input.Slot <= 0 {
		return nil, ErrTeamSlotInvalid
	}
	if input.Logo == nil {
		return nil, ErrLogoRequired
	}
	if !strings.HasPrefix(strings.ToLower(input.LogoContentType), "image/") {
		return nil, fmt.Errorf("%w: got content type '%s'", ErrLogoNotImage, input.LogoContentType)
	}

	// Занятый слот отсекаем до загрузки логотипа
	if _, err := s.teamRepo.GetBySlot(ctx, input.Slot); err == nil {
		return nil, ErrSlotConflict
	} else if !errors.Is(err, repositories.ErrTeamNotFound) {
		return nil, fmt.Errorf("%w: %w", ErrTeamCreationFailed, err)
	}

	key, err := storage.TeamLogoKey(input.LogoContentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLogoNotImage, err)
	}

	uploaded, err := s.uploader.Upload(ctx, key, input.LogoContentType, input.Logo)
	if err != nil {
		s.logger.ErrorContext(ctx, "Team logo upload failed", slog.String("key", key), slog.Any("error", err))
		return nil, fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}

	team := &models.Team{
		Name:    name,
		Slot:    input.Slot,
		LogoKey: &uploaded.Key,
		LogoURL: uploaded.Location,
		Rounds:  []models.Round{},
	}

	err = s.teamRepo.Create(ctx, team)
	s.metrics.ObserveMutation("create_team", err)
	if err != nil {
		s.removeLogo(ctx, uploaded.Key)
		switch {
		case errors.Is(err, repositories.ErrTeamSlotConflict):
			return nil, ErrSlotConflict
		case errors.Is(err, repositories.ErrTeamNameConflict):
			return nil, ErrTeamNameConflict
		default:
			return nil, fmt.Errorf("%w: %w", ErrTeamCreationFailed, err)
		}
	}

	s.logger.InfoContext(ctx, "Team created", slog.Int("team_id", team.ID), slog.Int("slot", team.Slot))
	s.broadcast(ctx, EventTeamCreated, team)
	return team, nil
}

func (s *teamService) GetTeam(ctx context.Context, id int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team by id %d: %w", id, err)
	}
	return team, nil
}

func (s *teamService) ListTeams(ctx context.Context) ([]*models.Team, error) {
	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	if teams == nil {
		return []*models.Team{}, nil
	}
	return teams, nil
}

func (s *teamService) DeleteTeam(ctx context.Context, id int) error {
	team, err := s.teamRepo.Delete(ctx, id)
	s.metrics.ObserveMutation("delete_team", err)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("%w (id: %d): %w", ErrTeamDeleteFailed, id, err)
	}

	if team.LogoKey != nil {
		s.removeLogo(ctx, *team.LogoKey)
	}

	s.logger.InfoContext(ctx, "Team deleted", slog.Int("team_id", id))
	s.broadcast(ctx, EventTeamDeleted, map[string]int{"id": team.ID, "slot": team.Slot})
	return nil
}

func (s *teamService) CreateRound(ctx context.Context, selector models.TeamSelector, roundNumber int) (*models.BatchResult, error) {
	if roundNumber < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRoundNumber, roundNumber)
	}
	result, err := s.runSelectorBatch(ctx, "create_round", selector, func(team *models.Team) error {
		return s.rules.CreateRound(team, roundNumber)
	})
	if err != nil {
		return nil, err
	}

	if len(result.Teams) > 0 {
		payload := map[string]interface{}{"round_number": roundNumber, "teams": result.Teams}
		s.broadcast(ctx, EventRoundCreated, payload)
		s.broadcastToRoom(ctx, realtime.RoundRoom(roundNumber), EventRoundUpdated, payload)
	}
	return result, nil
}

func (s *teamService) DeleteRound(ctx context.Context, selector models.TeamSelector, roundNumber int) (*models.BatchResult, error) {
	if roundNumber < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRoundNumber, roundNumber)
	}
	result, err := s.runSelectorBatch(ctx, "delete_round", selector, func(team *models.Team) error {
		return s.rules.DeleteRound(team, roundNumber)
	})
	if err != nil {
		return nil, err
	}

	if len(result.Teams) > 0 {
		payload := map[string]interface{}{"round_number": roundNumber, "teams": result.Teams}
		s.broadcast(ctx, EventRoundDeleted, payload)
		s.broadcastToRoom(ctx, realtime.RoundRoom(roundNumber), EventRoundUpdated, payload)
	}
	return result, nil
}

func (s *teamService) SetRoundPositions(ctx context.Context, roundNumber int, positions []models.SlotPosition) (*models.BatchResult, error) {
	if roundNumber < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRoundNumber, roundNumber)
	}
	if len(positions) == 0 {
		return nil, ErrSlotPositionsEmpty
	}
	for _, p := range positions {
		if p.Position < 0 {
			return nil, fmt.Errorf("%w: slot %d position %d", ErrInvalidPosition, p.Slot, p.Position)
		}
	}

	slots := make([]int, 0, len(positions))
	positionBySlot := make(map[int]int, len(positions))
	for _, p := range positions {
		if _, seen := positionBySlot[p.Slot]; !seen {
			slots = append(slots, p.Slot)
		}
		// При повторе слота побеждает последнее значение
		positionBySlot[p.Slot] = p.Position
	}

	targets, err := s.resolveTargets(ctx, models.TeamSelector{Slots: slots})
	if err != nil {
		return nil, err
	}
	result := s.runBatch(ctx, "set_position", targets, func(team *models.Team) error {
		return s.rules.SetPosition(team, roundNumber, positionBySlot[team.Slot])
	})

	if len(result.Teams) > 0 {
		payload := map[string]interface{}{"round_number": roundNumber, "teams": result.Teams}
		s.broadcast(ctx, EventPositionsUpdated, payload)
		s.broadcastToRoom(ctx, realtime.RoundRoom(roundNumber), EventRoundUpdated, payload)
	}
	return result, nil
}

func (s *teamService) AdjustKills(ctx context.Context, id int, delta int) (*models.Team, error) {
	team, err := s.mutate(ctx, "adjust_kills", id, func(t *models.Team) error {
		return s.rules.AdjustKills(t, delta)
	})
	if err != nil {
		return nil, err
	}
	s.teamUpdated(ctx, EventTeamUpdated, team)
	return team, nil
}

func (s *teamService) SetKills(ctx context.Context, id int, kills int) (*models.Team, error) {
	team, err := s.mutate(ctx, "set_kills", id, func(t *models.Team) error {
		return s.rules.SetKills(t, kills)
	})
	if err != nil {
		return nil, err
	}
	s.teamUpdated(ctx, EventTeamUpdated, team)
	return team, nil
}

func (s *teamService) IncrementKills(ctx context.Context, id int) (*models.Team, error) {
	return s.AdjustKills(ctx, id, 1)
}

func (s *teamService) DecrementKills(ctx context.Context, id int) (*models.Team, error) {
	return s.AdjustKills(ctx, id, -1)
}

func (s *teamService) TogglePlayerElimination(ctx context.Context, id int, playerIndex int) (*models.Team, bool, error) {
	var added bool
	team, err := s.mutate(ctx, "toggle_elimination", id, func(t *models.Team) error {
		var err error
		added, err = s.rules.TogglePlayerElimination(t, playerIndex)
		return err
	})
	if err != nil {
		return nil, false, err
	}
	s.teamUpdated(ctx, EventEliminationUpdated, team)
	return team, added, nil
}

// mutate applies fn to the team under the repository row lock and refuses to
// store a document whose invariants do not hold.
func (s *teamService) mutate(ctx context.Context, op string, id int, fn func(*models.Team) error) (*models.Team, error) {
	team, err := s.teamRepo.Update(ctx, id, func(t *models.Team) error {
		if err := fn(t); err != nil {
			return err
		}
		return scoring.Verify(t)
	})
	s.metrics.ObserveMutation(op, err)
	if err != nil {
		if errors.Is(err, scoring.ErrInvariantViolation) {
			s.logger.ErrorContext(ctx, "Refusing to store inconsistent team", slog.Int("team_id", id), slog.String("operation", op), slog.Any("error", err))
		}
		return nil, translateTeamError(err, id)
	}
	return team, nil
}

func (s *teamService) teamUpdated(ctx context.Context, event string, team *models.Team) {
	s.broadcast(ctx, event, team)
	s.broadcastToRoom(ctx, realtime.TeamRoom(team.ID), event, team)
	if team.CurrentRound > 0 {
		s.broadcastToRoom(ctx, realtime.RoundRoom(team.CurrentRound), EventRoundUpdated, team)
	}
}

func (s *teamService) removeLogo(ctx context.Context, key string) {
	if err := s.uploader.Delete(ctx, key); err != nil {
		s.logger.WarnContext(ctx, "Failed to remove team logo", slog.String("key", key), slog.Any("error", err))
	}
}

func translateTeamError(err error, id int) error {
	switch {
	case errors.Is(err, repositories.ErrTeamNotFound):
		return ErrTeamNotFound
	case errors.Is(err, repositories.ErrTeamVersionConflict):
		return ErrConcurrentModified
	case KindOf(err) != KindInternal:
		// Ошибки правил подсчета уже являются сервисными
		return err
	case errors.Is(err, scoring.ErrInvariantViolation):
		return err
	default:
		return fmt.Errorf("%w (id: %d): %w", ErrTeamUpdateFailed, id, err)
	}
}
