package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/predictball/predictor-league/internal/domain/fixture"
	"github.com/predictball/predictor-league/internal/domain/prediction"
	"github.com/predictball/predictor-league/internal/usecase"
)

func (h *Handler) SubmitPredictions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitPredictions")
	defer span.End()

	currentUser, ok := currentUserFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: user is missing from request context", usecase.ErrUnauthorized))
		return
	}
	gameweek, err := gameweekFromPath(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req submitPredictionsRequest
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

	record, err := h.predictionService.SubmitPredictions(ctx, usecase.SubmitPredictionsInput{
		UserID:   currentUser.ID,
		Gameweek: gameweek,
		Entries:  entriesFromRequest(req.Entries),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "submit predictions failed", "user_id", currentUser.ID, "gameweek", gameweek, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, predictionRecordToDTO(record))
}

func (h *Handler) GetMyPredictions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMyPredictions")
	defer span.End()

	currentUser, ok := currentUserFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: user is missing from request context", usecase.ErrUnauthorized))
		return
	}
	gameweek, err := gameweekFromPath(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	record, err := h.predictionService.GetMyPredictions(ctx, currentUser.ID, gameweek)
	if err != nil {
		h.logger.WarnContext(ctx, "get my predictions failed", "user_id", currentUser.ID, "gameweek", gameweek, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, predictionRecordToDTO(record))
}

func gameweekFromPath(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.PathValue("gameweek"))
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("%w: gameweek must be a positive integer", usecase.ErrInvalidInput)
	}
	return value, nil
}

type statPredictionPayload struct {
	Identifier string `json:"identifier" validate:"required,oneof=goal assist"`
	PlayerID   string `json:"playerId" validate:"required"`
}

type predictionEntryPayload struct {
	FixtureID          string                  `json:"fixtureId" validate:"required"`
	PredictedHomeScore int                     `json:"predictedHomeScore" validate:"gte=0"`
	PredictedAwayScore int                     `json:"predictedAwayScore" validate:"gte=0"`
	IsCaptain          bool                    `json:"isCaptain"`
	StatPredictions    []statPredictionPayload `json:"statPredictions" validate:"dive"`
}

type submitPredictionsRequest struct {
	Entries []predictionEntryPayload `json:"entries" validate:"required,min=1,dive"`
}

type predictionScoreDTO struct {
	ScorelinePoints int `json:"scorelinePoints"`
	GoalsPoints     int `json:"goalsPoints"`
	AssistsPoints   int `json:"assistsPoints"`
	Total           int `json:"total"`
}

type predictionEntryDTO struct {
	FixtureID          string                  `json:"fixtureId"`
	PredictedHomeScore int                     `json:"predictedHomeScore"`
	PredictedAwayScore int                     `json:"predictedAwayScore"`
	IsCaptain          bool                    `json:"isCaptain"`
	StatPredictions    []statPredictionPayload `json:"statPredictions"`
	Score              *predictionScoreDTO     `json:"score,omitempty"`
	ComputedTotal      *int                    `json:"computedTotal,omitempty"`
}

type predictionRecordDTO struct {
	UserID    string               `json:"userId"`
	Gameweek  int                  `json:"gameweek"`
	Entries   []predictionEntryDTO `json:"entries"`
	UpdatedAt time.Time            `json:"updatedAt"`
}

func entriesFromRequest(payloads []predictionEntryPayload) []prediction.Entry {
	entries := make([]prediction.Entry, 0, len(payloads))
	for _, payload := range payloads {
		stats := make([]prediction.StatPrediction, 0, len(payload.StatPredictions))
		for _, pick := range payload.StatPredictions {
			stats = append(stats, prediction.StatPrediction{
				Identifier: fixture.StatIdentifier(pick.Identifier),
				PlayerID:   pick.PlayerID,
			})
		}
		entries = append(entries, prediction.Entry{
			FixtureID:          payload.FixtureID,
			PredictedHomeScore: payload.PredictedHomeScore,
			PredictedAwayScore: payload.PredictedAwayScore,
			IsCaptain:          payload.IsCaptain,
			StatPredictions:    stats,
		})
	}
	return entries
}

func predictionRecordToDTO(record prediction.Record) predictionRecordDTO {
	entries := make([]predictionEntryDTO, 0, len(record.Entries))
	for _, entry := range record.Entries {
		stats := make([]statPredictionPayload, 0, len(entry.StatPredictions))
		for _, pick := range entry.StatPredictions {
			stats = append(stats, statPredictionPayload{
				Identifier: string(pick.Identifier),
				PlayerID:   pick.PlayerID,
			})
		}
		dto := predictionEntryDTO{
			FixtureID:          entry.FixtureID,
			PredictedHomeScore: entry.PredictedHomeScore,
			PredictedAwayScore: entry.PredictedAwayScore,
			IsCaptain:          entry.IsCaptain,
			StatPredictions:    stats,
		}
		if entry.Score != nil {
			dto.Score = &predictionScoreDTO{
				ScorelinePoints: entry.Score.ScorelinePoints,
				GoalsPoints:     entry.Score.GoalsPoints,
				AssistsPoints:   entry.Score.AssistsPoints,
				Total:           entry.Score.Total(),
			}
		}
		if entry.ComputedTotal != nil {
			total := *entry.ComputedTotal
			dto.ComputedTotal = &total
		}
		entries = append(entries, dto)
	}

	return predictionRecordDTO{
		UserID:    record.UserID,
		Gameweek:  record.Gameweek,
		Entries:   entries,
		UpdatedAt: record.UpdatedAt,
	}
}
