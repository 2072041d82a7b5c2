package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/predictball/predictor-league/internal/domain/prediction"
)

type SubmitPredictionsInput struct {
	UserID   string
	Gameweek int
	Entries  []prediction.Entry
}

// PredictionService accepts whole-gameweek prediction submissions and reads
// them back. A submission always replaces the user's record for the
// gameweek, including any scores a previous run attached.
type PredictionService struct {
	predictionRepo prediction.Repository
	now            func() time.Time
}

func NewPredictionService(predictionRepo prediction.Repository) *PredictionService {
	return &PredictionService{
		predictionRepo: predictionRepo,
		now:            time.Now,
	}
}

func (s *PredictionService) SubmitPredictions(ctx context.Context, input SubmitPredictionsInput) (prediction.Record, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.SubmitPredictions")
	defer span.End()

	input.UserID = strings.TrimSpace(input.UserID)
	if input.UserID == "" {
		return prediction.Record{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if input.Gameweek < 1 {
		return prediction.Record{}, fmt.Errorf("%w: gameweek must be greater than zero", ErrInvalidInput)
	}
	if len(input.Entries) == 0 {
		return prediction.Record{}, fmt.Errorf("%w: at least one prediction entry is required", ErrInvalidInput)
	}

	record := prediction.Record{
		UserID:    input.UserID,
		Gameweek:  input.Gameweek,
		Entries:   input.Entries,
		UpdatedAt: s.now().UTC(),
	}
	if err := record.Validate(); err != nil {
		return prediction.Record{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.predictionRepo.Upsert(ctx, record); err != nil {
		return prediction.Record{}, fmt.Errorf("upsert prediction record: %w", err)
	}

	return record, nil
}

func (s *PredictionService) GetMyPredictions(ctx context.Context, userID string, gameweek int) (prediction.Record, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.GetMyPredictions")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return prediction.Record{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if gameweek < 1 {
		return prediction.Record{}, fmt.Errorf("%w: gameweek must be greater than zero", ErrInvalidInput)
	}

	record, exists, err := s.predictionRepo.Get(ctx, userID, gameweek)
	if err != nil {
		return prediction.Record{}, fmt.Errorf("get prediction record: %w", err)
	}
	if !exists {
		return prediction.Record{}, fmt.Errorf("%w: no predictions for user=%s gameweek=%d", ErrNotFound, userID, gameweek)
	}

	return record, nil
}
