package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/courtpulse/badminton-system/middleware"
	"github.com/courtpulse/badminton-system/services"
	"github.com/go-chi/chi/v5"
)

type AchievementHandler struct {
	achievementService services.AchievementService
}

func NewAchievementHandler(achievementService services.AchievementService) *AchievementHandler {
	return &AchievementHandler{achievementService: achievementService}
}

func (h *AchievementHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	statuses, err := h.achievementService.ListForUser(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"achievements": statuses}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Grant awards a manual achievement to a user. Admin only; the route
// guards the role.
func (h *AchievementHandler) Grant(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.Atoi(chi.URLParam(r, "userID"))
	if err != nil || userID <= 0 {
		badRequestResponse(w, r, errors.New("invalid user ID"))
		return
	}

	var input struct {
		AchievementID string `json:"achievement_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.AchievementID == "" {
		badRequestResponse(w, r, errors.New("achievement_id is required"))
		return
	}

	if err := h.achievementService.Grant(r.Context(), userID, input.AchievementID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"granted": true}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
