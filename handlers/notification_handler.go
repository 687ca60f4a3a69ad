package handlers

import (
	"net/http"

	"github.com/Dosada05/scoreboard/services"
)

type NotificationHandler struct {
	notificationService services.NotificationService
}

func NewNotificationHandler(ns services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: ns}
}

type teamRoundRequest struct {
	TeamID      int `json:"team_id"`
	RoundNumber int `json:"round_number"`
}

func (h *NotificationHandler) Track(w http.ResponseWriter, r *http.Request) {
	var input teamRoundRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	notification, err := h.notificationService.Track(r.Context(), input.TeamID, input.RoundNumber)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"notification": notification}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *NotificationHandler) MarkDisplayed(w http.ResponseWriter, r *http.Request) {
	var input teamRoundRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	notification, err := h.notificationService.MarkDisplayed(r.Context(), input.TeamID, input.RoundNumber)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"notification": notification}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *NotificationHandler) MarkDisplayedByID(w http.ResponseWriter, r *http.Request) {
	notificationID, err := getIDFromURL(r, "notificationID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	notification, err := h.notificationService.MarkDisplayedByID(r.Context(), notificationID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"notification": notification}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CheckDisplayStatus never answers 404: an untracked pair is reported as such.
func (h *NotificationHandler) CheckDisplayStatus(w http.ResponseWriter, r *http.Request) {
	teamID, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	roundNumber, err := getIDFromURL(r, "roundNumber")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	status, err := h.notificationService.CheckDisplayStatus(r.Context(), teamID, roundNumber)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, status, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *NotificationHandler) Sync(w http.ResponseWriter, r *http.Request) {
	result, err := h.notificationService.Sync(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *NotificationHandler) Pending(w http.ResponseWriter, r *http.Request) {
	round, err := optionalRoundQuery(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	notifications, err := h.notificationService.PendingNotifications(r.Context(), round)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"notifications": notifications}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *NotificationHandler) All(w http.ResponseWriter, r *http.Request) {
	round, err := optionalRoundQuery(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	notifications, err := h.notificationService.AllNotifications(r.Context(), round)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"notifications": notifications}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *NotificationHandler) ResetRound(w http.ResponseWriter, r *http.Request) {
	roundNumber, err := getIDFromURL(r, "roundNumber")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	affected, err := h.notificationService.ResetRound(r.Context(), roundNumber)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"affected": affected}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *NotificationHandler) ResetAll(w http.ResponseWriter, r *http.Request) {
	affected, err := h.notificationService.ResetAll(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"affected": affected}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
