package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/predictball/predictor-league/internal/domain/prediction"
	"github.com/predictball/predictor-league/internal/infrastructure/repository/memory"
)

func TestSubmitPredictions_ReplacesWholeRecord(t *testing.T) {
	ctx := context.Background()
	total := 15
	repo := memory.NewPredictionRepository([]prediction.Record{
		{
			UserID:   "u1",
			Gameweek: 4,
			Entries: []prediction.Entry{
				{FixtureID: "fx1", PredictedHomeScore: 2, PredictedAwayScore: 0, ComputedTotal: &total},
			},
		},
	})

	svc := NewPredictionService(repo)

	record, err := svc.SubmitPredictions(ctx, SubmitPredictionsInput{
		UserID:   "u1",
		Gameweek: 4,
		Entries: []prediction.Entry{
			{FixtureID: "fx1", PredictedHomeScore: 1, PredictedAwayScore: 1},
			{FixtureID: "fx2", PredictedHomeScore: 0, PredictedAwayScore: 2, IsCaptain: true},
		},
	})
	if err != nil {
		t.Fatalf("submit predictions: %v", err)
	}
	if len(record.Entries) != 2 {
		t.Fatalf("unexpected entry count: got=%d want=2", len(record.Entries))
	}

	stored, _, _ := repo.Get(ctx, "u1", 4)
	if stored.Entries[0].ComputedTotal != nil {
		t.Fatalf("resubmission must drop stale computed fields")
	}
}

func TestSubmitPredictions_Validation(t *testing.T) {
	svc := NewPredictionService(memory.NewPredictionRepository(nil))

	cases := []SubmitPredictionsInput{
		{Gameweek: 1, Entries: []prediction.Entry{{FixtureID: "fx1"}}},
		{UserID: "u1", Entries: []prediction.Entry{{FixtureID: "fx1"}}},
		{UserID: "u1", Gameweek: 1},
		{UserID: "u1", Gameweek: 1, Entries: []prediction.Entry{
			{FixtureID: "fx1", IsCaptain: true},
			{FixtureID: "fx2", IsCaptain: true},
		}},
		{UserID: "u1", Gameweek: 1, Entries: []prediction.Entry{
			{FixtureID: "fx1", PredictedHomeScore: -1},
		}},
	}
	for _, input := range cases {
		if _, err := svc.SubmitPredictions(context.Background(), input); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput for %+v, got %v", input, err)
		}
	}
}

func TestGetMyPredictions_NotFound(t *testing.T) {
	svc := NewPredictionService(memory.NewPredictionRepository(nil))

	_, err := svc.GetMyPredictions(context.Background(), "u1", 4)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
