package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/jortiz/teammatch/internal/api/middleware"
	"github.com/jortiz/teammatch/internal/repository"
	"github.com/jortiz/teammatch/internal/service"
)

// ProfileHandler exposes the profile-directory writes the ranking engine
// reads from: skill set, domain set and the availability flag.
type ProfileHandler struct {
	userRepo repository.UserRepository
	auth     *service.AuthService
}

func NewProfileHandler(userRepo repository.UserRepository, auth *service.AuthService) *ProfileHandler {
	return &ProfileHandler{userRepo: userRepo, auth: auth}
}

type UpdateSkillsRequest struct {
	SkillIDs []uuid.UUID `json:"skillIds" validate:"required"`
}

type UpdateDomainsRequest struct {
	DomainIDs []uuid.UUID `json:"domainIds" validate:"required"`
}

type UpdateAvailabilityRequest struct {
	IsAvailable *bool `json:"isAvailable" validate:"required"`
}

func (h *ProfileHandler) UpdateSkills(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req UpdateSkillsRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.userRepo.ReplaceSkills(r.Context(), userID, req.SkillIDs); err != nil {
		writeError(w, err)
		return
	}
	h.respondWithUser(w, r, userID)
}

func (h *ProfileHandler) UpdateDomains(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req UpdateDomainsRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.userRepo.ReplaceDomains(r.Context(), userID, req.DomainIDs); err != nil {
		writeError(w, err)
		return
	}
	h.respondWithUser(w, r, userID)
}

func (h *ProfileHandler) UpdateAvailability(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req UpdateAvailabilityRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.userRepo.SetAvailability(r.Context(), userID, *req.IsAvailable); err != nil {
		writeError(w, err)
		return
	}
	h.respondWithUser(w, r, userID)
}

func (h *ProfileHandler) respondWithUser(w http.ResponseWriter, r *http.Request, userID uuid.UUID) {
	user, err := h.auth.GetUserByID(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
