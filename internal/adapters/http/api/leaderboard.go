package api

import (
	"context"
	"net/http"
)

// LeaderboardDependencies defines the interface for leaderboard operations.
type LeaderboardDependencies interface {
	GroupLeaderboard(ctx context.Context, groupID string) (Leaderboard, error)
	CompetitionLeaderboard(ctx context.Context, competitionID string) (Leaderboard, error)
}

// LeaderboardHandler handles leaderboard requests.
type LeaderboardHandler struct {
	deps LeaderboardDependencies
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(deps LeaderboardDependencies) *LeaderboardHandler {
	return &LeaderboardHandler{deps: deps}
}

// HandleGroup handles GET /groups/{id}/leaderboard requests.
func (h *LeaderboardHandler) HandleGroup(w http.ResponseWriter, r *http.Request) {
	lb, err := h.deps.GroupLeaderboard(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lb)
}

// HandleCompetition handles GET /competitions/{id}/leaderboard requests.
func (h *LeaderboardHandler) HandleCompetition(w http.ResponseWriter, r *http.Request) {
	lb, err := h.deps.CompetitionLeaderboard(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lb)
}
