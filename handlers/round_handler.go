package handlers

import (
	"net/http"

	"github.com/Dosada05/scoreboard/models"
	"github.com/Dosada05/scoreboard/services"
)

type RoundHandler struct {
	teamService services.TeamService
}

func NewRoundHandler(ts services.TeamService) *RoundHandler {
	return &RoundHandler{teamService: ts}
}

type createRoundRequest struct {
	RoundNumber int   `json:"round_number"`
	Slots       []int `json:"slots"`
	TeamIDs     []int `json:"team_ids"`
}

type selectorRequest struct {
	Slots   []int `json:"slots"`
	TeamIDs []int `json:"team_ids"`
}

type positionsRequest struct {
	SlotPositions []models.SlotPosition `json:"slot_positions"`
}

func (h *RoundHandler) CreateRound(w http.ResponseWriter, r *http.Request) {
	var input createRoundRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	selector := models.TeamSelector{Slots: input.Slots, TeamIDs: input.TeamIDs}
	result, err := h.teamService.CreateRound(r.Context(), selector, input.RoundNumber)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeBatchResult(w, r, result)
}

func (h *RoundHandler) DeleteRound(w http.ResponseWriter, r *http.Request) {
	roundNumber, err := getIDFromURL(r, "roundNumber")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input selectorRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	selector := models.TeamSelector{Slots: input.Slots, TeamIDs: input.TeamIDs}
	result, err := h.teamService.DeleteRound(r.Context(), selector, roundNumber)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeBatchResult(w, r, result)
}

func (h *RoundHandler) SetPositions(w http.ResponseWriter, r *http.Request) {
	roundNumber, err := getIDFromURL(r, "roundNumber")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input positionsRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.teamService.SetRoundPositions(r.Context(), roundNumber, input.SlotPositions)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeBatchResult(w, r, result)
}
