package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
)

const defaultMaxRankingLimit = 1000

// RankingDependencies defines the interface for ranking operations.
type RankingDependencies interface {
	ContinentalRanking(ctx context.Context, scope string) (Ranking, error)
}

// RankingHandler handles continental ranking requests.
type RankingHandler struct {
	deps     RankingDependencies
	maxLimit int
}

// NewRankingHandler creates a new ranking handler.
func NewRankingHandler(deps RankingDependencies, maxLimit int) *RankingHandler {
	if maxLimit <= 0 {
		maxLimit = defaultMaxRankingLimit
	}
	return &RankingHandler{deps: deps, maxLimit: maxLimit}
}

type rankingResponse struct {
	Ranking
	Total int `json:"total"`
}

// HandleGetRankings handles GET /rankings?scope=S&limit=N requests.
// limit defaults to and is capped by the handler maximum.
func (h *RankingHandler) HandleGetRankings(w http.ResponseWriter, r *http.Request) {
	limit := h.maxLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request",
				fmt.Errorf("%w: limit must be a positive integer", ErrBadRequest))
			return
		}
		limit = min(n, h.maxLimit)
	}

	ranking, err := h.deps.ContinentalRanking(r.Context(), r.URL.Query().Get("scope"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	total := len(ranking.Entries)
	if total > limit {
		ranking.Entries = ranking.Entries[:limit]
	}
	writeJSON(w, http.StatusOK, rankingResponse{Ranking: ranking, Total: total})
}
