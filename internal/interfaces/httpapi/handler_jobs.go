package httpapi

import (
	"fmt"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/predictball/predictor-league/internal/usecase"
)

func (h *Handler) RunGameweek(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunGameweek")
	defer span.End()

	if h.runService == nil {
		writeError(ctx, w, fmt.Errorf("%w: gameweek run service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	var req runGameweekRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	summary, err := h.runService.RunForGameweek(ctx, req.Gameweek)
	if err != nil {
		h.logger.WarnContext(ctx, "run gameweek job failed", "gameweek", req.Gameweek, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, summary)
}

func (h *Handler) BackfillLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.BackfillLeague")
	defer span.End()

	if h.aggregationService == nil {
		writeError(ctx, w, fmt.Errorf("%w: league aggregation service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	var req backfillLeagueRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.aggregationService.BackfillLeague(ctx, req.LeagueID, req.ThroughGameweek)
	if err != nil {
		h.logger.WarnContext(ctx, "backfill league job failed", "league_id", req.LeagueID, "through_gameweek", req.ThroughGameweek, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, backfillLeagueResponse{
		LeagueID:        req.LeagueID,
		ThroughGameweek: req.ThroughGameweek,
		Processed:       result.Processed,
		Skipped:         result.Skipped,
	})
}

type runGameweekRequest struct {
	Gameweek int `json:"gameweek" validate:"required,gte=1"`
}

type backfillLeagueRequest struct {
	LeagueID        string `json:"leagueId" validate:"required"`
	ThroughGameweek int    `json:"throughGameweek" validate:"required,gte=1"`
}

type backfillLeagueResponse struct {
	LeagueID        string `json:"leagueId"`
	ThroughGameweek int    `json:"throughGameweek"`
	Processed       int    `json:"processed"`
	Skipped         int    `json:"skipped"`
}
