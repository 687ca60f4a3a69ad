package handlers

import (
	"context"

	"github.com/Dosada05/scoreboard/models"
	"github.com/Dosada05/scoreboard/services"
	"github.com/go-chi/chi/v5"
)

// stubTeamService answers with the configured funcs; calling anything else
// panics through the nil embedded interface.
type stubTeamService struct {
	services.TeamService

	createTeam  func(ctx context.Context, input services.CreateTeamInput) (*models.Team, error)
	getTeam     func(ctx context.Context, id int) (*models.Team, error)
	createRound func(ctx context.Context, selector models.TeamSelector, n int) (*models.BatchResult, error)
	deleteRound func(ctx context.Context, selector models.TeamSelector, n int) (*models.BatchResult, error)
	positions   func(ctx context.Context, n int, positions []models.SlotPosition) (*models.BatchResult, error)
	adjustKills func(ctx context.Context, id, delta int) (*models.Team, error)
	setKills    func(ctx context.Context, id, kills int) (*models.Team, error)
	decrement   func(ctx context.Context, id int) (*models.Team, error)
	toggle      func(ctx context.Context, id, playerIndex int) (*models.Team, bool, error)
}

func (s *stubTeamService) CreateTeam(ctx context.Context, input services.CreateTeamInput) (*models.Team, error) {
	return s.createTeam(ctx, input)
}

func (s *stubTeamService) GetTeam(ctx context.Context, id int) (*models.Team, error) {
	return s.getTeam(ctx, id)
}

func (s *stubTeamService) CreateRound(ctx context.Context, selector models.TeamSelector, n int) (*models.BatchResult, error) {
	return s.createRound(ctx, selector, n)
}

func (s *stubTeamService) DeleteRound(ctx context.Context, selector models.TeamSelector, n int) (*models.BatchResult, error) {
	return s.deleteRound(ctx, selector, n)
}

func (s *stubTeamService) SetRoundPositions(ctx context.Context, n int, positions []models.SlotPosition) (*models.BatchResult, error) {
	return s.positions(ctx, n, positions)
}

func (s *stubTeamService) AdjustKills(ctx context.Context, id, delta int) (*models.Team, error) {
	return s.adjustKills(ctx, id, delta)
}

func (s *stubTeamService) SetKills(ctx context.Context, id, kills int) (*models.Team, error) {
	return s.setKills(ctx, id, kills)
}

func (s *stubTeamService) DecrementKills(ctx context.Context, id int) (*models.Team, error) {
	return s.decrement(ctx, id)
}

func (s *stubTeamService) TogglePlayerElimination(ctx context.Context, id, playerIndex int) (*models.Team, bool, error) {
	return s.toggle(ctx, id, playerIndex)
}

type stubNotificationService struct {
	services.NotificationService

	check   func(ctx context.Context, teamID, roundNumber int) (*models.DisplayStatus, error)
	pending func(ctx context.Context, roundNumber *int) ([]*models.EliminationNotification, error)
	reset   func(ctx context.Context, roundNumber int) (int64, error)
}

func (s *stubNotificationService) CheckDisplayStatus(ctx context.Context, teamID, roundNumber int) (*models.DisplayStatus, error) {
	return s.check(ctx, teamID, roundNumber)
}

func (s *stubNotificationService) PendingNotifications(ctx context.Context, roundNumber *int) ([]*models.EliminationNotification, error) {
	return s.pending(ctx, roundNumber)
}

func (s *stubNotificationService) ResetRound(ctx context.Context, roundNumber int) (int64, error) {
	return s.reset(ctx, roundNumber)
}

// newTestRouter mounts the handlers on the same paths the API uses.
func newTestRouter(ts services.TeamService, ns services.NotificationService) chi.Router {
	teams := NewTeamHandler(ts)
	rounds := NewRoundHandler(ts)
	notifications := NewNotificationHandler(ns)

	r := chi.NewRouter()
	r.Post("/teams", teams.CreateTeam)
	r.Get("/teams/{teamID}", teams.GetTeamByID)
	r.Put("/teams/{teamID}/kills", teams.UpdateKills)
	r.Post("/teams/{teamID}/kills/decrement", teams.DecrementKills)
	r.Put("/teams/{teamID}/elimination", teams.TogglePlayerElimination)
	r.Post("/rounds", rounds.CreateRound)
	r.Delete("/rounds/{roundNumber}", rounds.DeleteRound)
	r.Put("/rounds/{roundNumber}/positions", rounds.SetPositions)
	r.Get("/elimination/check/{teamID}/{roundNumber}", notifications.CheckDisplayStatus)
	r.Get("/elimination/pending", notifications.Pending)
	r.Patch("/elimination/round/{roundNumber}/reset", notifications.ResetRound)
	return r
}
