package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Dosada05/scoreboard/models"
	"github.com/Dosada05/scoreboard/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchResultStatus(t *testing.T) {
	alpha := &models.Team{ID: 1, Name: "Alpha", Slot: 1}
	notFound := models.BatchFailure{Slot: 42, Kind: string(services.KindNotFound), Error: services.ErrTeamNotFound.Error()}
	duplicate := models.BatchFailure{TeamID: 2, Kind: string(services.KindConflict), Error: services.ErrDuplicateRound.Error()}

	tests := []struct {
		name       string
		result     *models.BatchResult
		wantStatus int
	}{
		{name: "all applied", result: &models.BatchResult{Teams: []*models.Team{alpha}}, wantStatus: http.StatusOK},
		{name: "mixed", result: &models.BatchResult{Teams: []*models.Team{alpha}, Failures: []models.BatchFailure{notFound}}, wantStatus: http.StatusMultiStatus},
		{name: "only unknown slots", result: &models.BatchResult{Failures: []models.BatchFailure{notFound, duplicate}}, wantStatus: http.StatusNotFound},
		{name: "only duplicates", result: &models.BatchResult{Failures: []models.BatchFailure{duplicate}}, wantStatus: http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := &stubTeamService{
				createRound: func(_ context.Context, _ models.TeamSelector, _ int) (*models.BatchResult, error) {
					return tt.result, nil
				},
			}
			router := newTestRouter(ts, nil)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/rounds", strings.NewReader(`{"round_number": 1, "slots": [1, 42]}`)))

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decodeBody(t, rec)
			assert.Len(t, body["failures"], len(tt.result.Failures))
		})
	}
}

func TestCreateRoundPassesSelector(t *testing.T) {
	var gotSelector models.TeamSelector
	var gotRound int
	ts := &stubTeamService{
		createRound: func(_ context.Context, selector models.TeamSelector, n int) (*models.BatchResult, error) {
			gotSelector, gotRound = selector, n
			return nil, services.ErrSelectorEmpty
		},
	}
	router := newTestRouter(ts, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/rounds", strings.NewReader(`{"round_number": 3, "slots": [2], "team_ids": [9]}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, models.TeamSelector{Slots: []int{2}, TeamIDs: []int{9}}, gotSelector)
	assert.Equal(t, 3, gotRound)
}

func TestDeleteRoundReadsURLAndBody(t *testing.T) {
	var gotRound int
	ts := &stubTeamService{
		deleteRound: func(_ context.Context, selector models.TeamSelector, n int) (*models.BatchResult, error) {
			gotRound = n
			require.Equal(t, []int{5}, selector.Slots)
			return &models.BatchResult{Teams: []*models.Team{{ID: 1}}}, nil
		},
	}
	router := newTestRouter(ts, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/rounds/2", strings.NewReader(`{"slots": [5]}`)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, gotRound)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/rounds/x", strings.NewReader(`{"slots": [5]}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSetPositionsDecodesSlotPositions(t *testing.T) {
	var got []models.SlotPosition
	ts := &stubTeamService{
		positions: func(_ context.Context, n int, positions []models.SlotPosition) (*models.BatchResult, error) {
			got = positions
			return &models.BatchResult{Teams: []*models.Team{{ID: 1}, {ID: 2}}}, nil
		},
	}
	router := newTestRouter(ts, nil)

	rec := httptest.NewRecorder()
	body := `{"slot_positions": [{"slot": 1, "position": 10}, {"slot": 2, "position": 6}]}`
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/rounds/1/positions", strings.NewReader(body)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []models.SlotPosition{{Slot: 1, Position: 10}, {Slot: 2, Position: 6}}, got)
}
