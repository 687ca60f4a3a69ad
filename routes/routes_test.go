package routes

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Dosada05/scoreboard/handlers"
	"github.com/Dosada05/scoreboard/models"
	"github.com/Dosada05/scoreboard/realtime"
	"github.com/Dosada05/scoreboard/services"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTeams struct {
	services.TeamService
}

func (stubTeams) ListTeams(ctx context.Context) ([]*models.Team, error) {
	return []*models.Team{{ID: 1, Name: "Alpha", Slot: 1}}, nil
}

type stubNotifications struct {
	services.NotificationService
}

func (stubNotifications) Sync(ctx context.Context) (*services.SyncResult, error) {
	return &services.SyncResult{}, nil
}

func (stubNotifications) CheckDisplayStatus(ctx context.Context, teamID, roundNumber int) (*models.DisplayStatus, error) {
	return &models.DisplayStatus{}, nil
}

func (stubNotifications) PendingNotifications(ctx context.Context, roundNumber *int) ([]*models.EliminationNotification, error) {
	return []*models.EliminationNotification{}, nil
}

func (stubNotifications) AllNotifications(ctx context.Context, roundNumber *int) ([]*models.EliminationNotification, error) {
	return []*models.EliminationNotification{}, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub := realtime.NewHub(logger, nil)
	teams, notifications := stubTeams{}, stubNotifications{}

	router := chi.NewRouter()
	SetupRoutes(router, Handlers{
		Team:         handlers.NewTeamHandler(teams),
		Round:        handlers.NewRoundHandler(teams),
		Notification: handlers.NewNotificationHandler(notifications),
		WebSocket:    handlers.NewWebSocketHandler(hub, teams, notifications, []string{"*"}, logger),
	}, Options{
		CORSOrigins: []string{"*"},
		Logger:      logger,
		Hub:         hub,
		Gatherer:    prometheus.NewRegistry(),
	})
	return router
}

func TestEliminationRoutesAreMountedUnderBothPrefixes(t *testing.T) {
	router := newTestRouter(t)

	for _, prefix := range []string{"/api/v1/elimination", "/api/v1/elimination-notification"} {
		requests := []struct {
			method string
			path   string
		}{
			{http.MethodGet, prefix + "/pending"},
			{http.MethodGet, prefix + "/pending?round=2"},
			{http.MethodGet, prefix + "/all"},
			{http.MethodGet, prefix + "/check/1/2"},
			{http.MethodPost, prefix + "/sync"},
		}
		for _, req := range requests {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(req.method, req.path, nil))
			assert.Equal(t, http.StatusOK, rec.Code, "%s %s", req.method, req.path)
		}
	}
}

func TestRouteTable(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/api/v1/teams", http.StatusOK},
		{http.MethodGet, "/api/v1/teams/abc", http.StatusBadRequest},
		{http.MethodPost, "/api/v1/teams/1/kills/increment/extra", http.StatusNotFound},
		{http.MethodPatch, "/api/v1/teams", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/v1/rounds", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/v1/unknown", http.StatusNotFound},
		{http.MethodGet, "/metrics", http.StatusOK},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
		assert.Equal(t, tt.want, rec.Code, "%s %s", tt.method, tt.path)
	}
}

func TestHealthzReportsWebSocketClients(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.EqualValues(t, 0, body["websocket_clients"])
}

func TestSwaggerServesRegisteredDocument(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "/elimination/sync"))
	assert.Contains(t, rec.Body.String(), "/teams/{teamID}/kills/decrement")
}
