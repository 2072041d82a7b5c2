package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/predictball/predictor-league/internal/domain/prediction"
	predictionmock "github.com/predictball/predictor-league/internal/mocks/domain/prediction"
)

func TestPredictionService_SubmitPredictions_PersistsWholeRecordUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	predictionRepo := predictionmock.NewRepository(t)
	service := NewPredictionService(predictionRepo)

	predictionRepo.
		On("Upsert", mock.Anything, mock.MatchedBy(func(record prediction.Record) bool {
			return record.UserID == "u1" &&
				record.Gameweek == 4 &&
				len(record.Entries) == 1 &&
				!record.UpdatedAt.IsZero()
		})).
		Return(nil).
		Once()

	got, err := service.SubmitPredictions(ctx, SubmitPredictionsInput{
		UserID:   "u1",
		Gameweek: 4,
		Entries: []prediction.Entry{
			{FixtureID: "fx1", PredictedHomeScore: 2, PredictedAwayScore: 1, IsCaptain: true},
		},
	})
	if err != nil {
		t.Fatalf("submit predictions: %v", err)
	}
	if got.UserID != "u1" || got.Gameweek != 4 {
		t.Fatalf("unexpected record identity: %s/%d", got.UserID, got.Gameweek)
	}
}

func TestPredictionService_GetMyPredictions_RepoErrorUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	predictionRepo := predictionmock.NewRepository(t)
	service := NewPredictionService(predictionRepo)

	repoErr := errors.New("connection reset")
	predictionRepo.
		On("Get", mock.Anything, "u1", 4).
		Return(prediction.Record{}, false, repoErr).
		Once()

	_, err := service.GetMyPredictions(ctx, "u1", 4)
	if !errors.Is(err, repoErr) {
		t.Fatalf("expected repo error, got %v", err)
	}
}
