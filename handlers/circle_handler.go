package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/courtpulse/badminton-system/middleware"
	"github.com/courtpulse/badminton-system/services"
	"github.com/go-chi/chi/v5"
)

type CircleHandler struct {
	circleService services.CircleService
	inviteService services.InviteService
}

func NewCircleHandler(circleService services.CircleService, inviteService services.InviteService) *CircleHandler {
	return &CircleHandler{
		circleService: circleService,
		inviteService: inviteService,
	}
}

func (h *CircleHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	var input services.CreateCircleInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	circle, err := h.circleService.Create(r.Context(), userID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"circle": circle}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CircleHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	circleID, err := circleIDParam(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	circle, err := h.circleService.GetByID(r.Context(), circleID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"circle": circle}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CircleHandler) List(w http.ResponseWriter, r *http.Request) {
	// The optional q parameter switches listing into search.
	term := r.URL.Query().Get("q")

	circles, err := h.circleService.Search(r.Context(), term)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"circles": circles}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CircleHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	memberships, err := h.circleService.ListForUser(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"memberships": memberships}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CircleHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}
	circleID, err := circleIDParam(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpdateCircleInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	circle, err := h.circleService.Update(r.Context(), circleID, userID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"circle": circle}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CircleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}
	role, err := middleware.GetUserRoleFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}
	circleID, err := circleIDParam(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.circleService.Delete(r.Context(), circleID, userID, role); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CircleHandler) Join(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}
	circleID, err := circleIDParam(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	membership, err := h.circleService.Join(r.Context(), circleID, userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"membership": membership}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CircleHandler) Leave(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}
	circleID, err := circleIDParam(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.circleService.Leave(r.Context(), circleID, userID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CircleHandler) Members(w http.ResponseWriter, r *http.Request) {
	circleID, err := circleIDParam(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	members, err := h.circleService.Members(r.Context(), circleID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"members": members}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CircleHandler) ApproveMember(w http.ResponseWriter, r *http.Request) {
	approverID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}
	circleID, err := circleIDParam(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	memberID, err := strconv.Atoi(chi.URLParam(r, "userID"))
	if err != nil || memberID <= 0 {
		badRequestResponse(w, r, errors.New("invalid user ID"))
		return
	}

	if err := h.circleService.ApproveMember(r.Context(), circleID, approverID, memberID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"approved": true}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CircleHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	actorID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}
	circleID, err := circleIDParam(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	memberID, err := strconv.Atoi(chi.URLParam(r, "userID"))
	if err != nil || memberID <= 0 {
		badRequestResponse(w, r, errors.New("invalid user ID"))
		return
	}

	if err := h.circleService.RemoveMember(r.Context(), circleID, actorID, memberID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CircleHandler) TransferOwnership(w http.ResponseWriter, r *http.Request) {
	ownerID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}
	circleID, err := circleIDParam(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		NewOwnerID int `json:"new_owner_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.circleService.TransferOwnership(r.Context(), circleID, ownerID, input.NewOwnerID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"transferred": true}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CircleHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	circleID, err := circleIDParam(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	entries, err := h.circleService.Leaderboard(r.Context(), circleID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"leaderboard": entries}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CircleHandler) CreateInvite(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}
	circleID, err := circleIDParam(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	invite, err := h.inviteService.CreateInvite(r.Context(), circleID, userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	// The token only travels in this response; it is never listed back.
	response := jsonResponse{
		"invite": invite,
		"token":  invite.Token,
	}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CircleHandler) AcceptInvite(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	token := chi.URLParam(r, "token")
	if token == "" {
		badRequestResponse(w, r, errors.New("invite token is required"))
		return
	}

	membership, err := h.inviteService.AcceptInvite(r.Context(), token, userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"membership": membership}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func circleIDParam(r *http.Request) (int, error) {
	circleID, err := strconv.Atoi(chi.URLParam(r, "circleID"))
	if err != nil || circleID <= 0 {
		return 0, errors.New("invalid circle ID")
	}
	return circleID, nil
}
