package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jortiz/teammatch/internal/api/middleware"
	"github.com/jortiz/teammatch/internal/domain"
	"github.com/jortiz/teammatch/internal/service"
)

type ReputationHandler struct {
	reputationService *service.ReputationService
}

func NewReputationHandler(reputationService *service.ReputationService) *ReputationHandler {
	return &ReputationHandler{reputationService: reputationService}
}

type RateRequest struct {
	RatedUserID uuid.UUID `json:"ratedUserId" validate:"required"`
	ProjectID   uuid.UUID `json:"projectId" validate:"required"`
	Rating      int       `json:"rating" validate:"required,min=1,max=5"`
}

func (h *ReputationHandler) Rate(w http.ResponseWriter, r *http.Request) {
	raterID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req RateRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	entry, err := h.reputationService.Rate(r.Context(), raterID, req.RatedUserID, req.ProjectID, req.Rating)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (h *ReputationHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		writeError(w, domain.ErrValidation)
		return
	}

	entries, err := h.reputationService.History(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *ReputationHandler) Summary(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		writeError(w, domain.ErrValidation)
		return
	}

	summary, err := h.reputationService.Summary(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
