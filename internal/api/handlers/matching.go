package handlers

import (
	"net/http"

	"github.com/jortiz/teammatch/internal/api/middleware"
	"github.com/jortiz/teammatch/internal/service"
)

type MatchingHandler struct {
	matchingService *service.MatchingService
}

func NewMatchingHandler(matchingService *service.MatchingService) *MatchingHandler {
	return &MatchingHandler{matchingService: matchingService}
}

func (h *MatchingHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	candidates, err := h.matchingService.Recommend(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, candidates)
}
