package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/Dosada05/scoreboard/models"
	"github.com/Dosada05/scoreboard/services"
)

const maxLogoFormSize = 32 << 20

type TeamHandler struct {
	teamService services.TeamService
}

func NewTeamHandler(ts services.TeamService) *TeamHandler {
	return &TeamHandler{
		teamService: ts,
	}
}

type killsRequest struct {
	Delta *int `json:"delta"`
	Kills *int `json:"kills"`
}

type eliminationRequest struct {
	PlayerIndex *int `json:"player_index"`
}

func (h *TeamHandler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	err := r.ParseMultipartForm(maxLogoFormSize)
	if err != nil {
		badRequestResponse(w, r, fmt.Errorf("failed to parse multipart form: %w", err))
		return
	}

	slotStr := strings.TrimSpace(r.FormValue("slot"))
	slot, err := strconv.Atoi(slotStr)
	if err != nil {
		badRequestResponse(w, r, fmt.Errorf("invalid slot: %q", slotStr))
		return
	}

	input := services.CreateTeamInput{
		Name: r.FormValue("name"),
		Slot: slot,
	}

	file, header, err := r.FormFile("logo")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		// сервис вернет ErrLogoRequired
	case err != nil:
		badRequestResponse(w, r, fmt.Errorf("failed to get logo file from form: %w", err))
		return
	default:
		defer file.Close()
		input.Logo = file
		input.LogoContentType = header.Header.Get("Content-Type")
	}

	team, err := h.teamService.CreateTeam(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"team": team,
	}

	err = writeJSON(w, http.StatusCreated, response, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TeamHandler) ListTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.teamService.ListTeams(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	err = writeJSON(w, http.StatusOK, jsonResponse{"teams": teams}, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TeamHandler) GetTeamByID(w http.ResponseWriter, r *http.Request) {
	teamID, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	team, err := h.teamService.GetTeam(r.Context(), teamID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	err = writeJSON(w, http.StatusOK, jsonResponse{"team": team}, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TeamHandler) DeleteTeam(w http.ResponseWriter, r *http.Request) {
	teamID, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	err = h.teamService.DeleteTeam(r.Context(), teamID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UpdateKills accepts either {"delta": n} or {"kills": n}.
func (h *TeamHandler) UpdateKills(w http.ResponseWriter, r *http.Request) {
	teamID, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input killsRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if (input.Delta == nil) == (input.Kills == nil) {
		badRequestResponse(w, r, errors.New("exactly one of delta or kills is required"))
		return
	}

	if input.Delta != nil {
		h.respondTeam(w, r, func() (*models.Team, error) {
			return h.teamService.AdjustKills(r.Context(), teamID, *input.Delta)
		})
		return
	}
	h.respondTeam(w, r, func() (*models.Team, error) {
		return h.teamService.SetKills(r.Context(), teamID, *input.Kills)
	})
}

func (h *TeamHandler) IncrementKills(w http.ResponseWriter, r *http.Request) {
	teamID, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	h.respondTeam(w, r, func() (*models.Team, error) {
		return h.teamService.IncrementKills(r.Context(), teamID)
	})
}

func (h *TeamHandler) DecrementKills(w http.ResponseWriter, r *http.Request) {
	teamID, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	h.respondTeam(w, r, func() (*models.Team, error) {
		return h.teamService.DecrementKills(r.Context(), teamID)
	})
}

func (h *TeamHandler) TogglePlayerElimination(w http.ResponseWriter, r *http.Request) {
	teamID, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input eliminationRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.PlayerIndex == nil {
		badRequestResponse(w, r, errors.New("player_index is required"))
		return
	}

	team, added, err := h.teamService.TogglePlayerElimination(r.Context(), teamID, *input.PlayerIndex)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"team":       team,
		"eliminated": added,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TeamHandler) respondTeam(w http.ResponseWriter, r *http.Request, op func() (*models.Team, error)) {
	team, err := op()
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"team": team}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
