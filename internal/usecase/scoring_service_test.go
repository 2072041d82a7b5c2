package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/predictball/predictor-league/internal/domain/fixture"
	"github.com/predictball/predictor-league/internal/domain/prediction"
	"github.com/predictball/predictor-league/internal/infrastructure/repository/memory"
)

func testScoringPoints() ScoringPoints {
	return ScoringPoints{CorrectScoreline: 10, GoalScored: 5, Assist: 3}
}

func TestScoreEntry_ExactScorelineWithStats(t *testing.T) {
	fx := fixture.Fixture{
		ID:        "fx1",
		HomeScore: 2,
		AwayScore: 1,
		StatEvents: []fixture.StatEvent{
			{Identifier: fixture.StatGoal, PlayerID: "p1"},
			{Identifier: fixture.StatGoal, PlayerID: "p2"},
			{Identifier: fixture.StatAssist, PlayerID: "p3"},
		},
	}
	entry := prediction.Entry{
		FixtureID:          "fx1",
		PredictedHomeScore: 2,
		PredictedAwayScore: 1,
		StatPredictions: []prediction.StatPrediction{
			{Identifier: fixture.StatGoal, PlayerID: "p1"},
			{Identifier: fixture.StatGoal, PlayerID: "p9"},
			{Identifier: fixture.StatAssist, PlayerID: "p4"},
		},
	}

	got := scoreEntry(entry, fx, testScoringPoints())
	if got.Total() != 15 {
		t.Fatalf("unexpected total: got=%d want=15", got.Total())
	}
	if got.ScorelinePoints != 10 || got.GoalsPoints != 5 || got.AssistsPoints != 0 {
		t.Fatalf("unexpected breakdown: %+v", got)
	}
}

func TestScoreEntry_WrongScorelineVoidsEverything(t *testing.T) {
	fx := fixture.Fixture{
		ID:        "fx1",
		HomeScore: 0,
		AwayScore: 0,
		StatEvents: []fixture.StatEvent{
			{Identifier: fixture.StatGoal, PlayerID: "p1"},
		},
	}
	entry := prediction.Entry{
		FixtureID:          "fx1",
		PredictedHomeScore: 1,
		PredictedAwayScore: 0,
		StatPredictions: []prediction.StatPrediction{
			{Identifier: fixture.StatGoal, PlayerID: "p1"},
		},
	}

	got := scoreEntry(entry, fx, testScoringPoints())
	if got.Total() != 0 {
		t.Fatalf("wrong scoreline must void all categories: got=%d want=0", got.Total())
	}
}

func TestScoreEntry_DuplicatePicksCountOnce(t *testing.T) {
	fx := fixture.Fixture{
		ID:        "fx1",
		HomeScore: 1,
		AwayScore: 0,
		StatEvents: []fixture.StatEvent{
			{Identifier: fixture.StatGoal, PlayerID: "p1"},
			{Identifier: fixture.StatGoal, PlayerID: "p1"},
		},
	}
	entry := prediction.Entry{
		FixtureID:          "fx1",
		PredictedHomeScore: 1,
		PredictedAwayScore: 0,
		StatPredictions: []prediction.StatPrediction{
			{Identifier: fixture.StatGoal, PlayerID: "p1"},
			{Identifier: fixture.StatGoal, PlayerID: "p1"},
		},
	}

	got := scoreEntry(entry, fx, testScoringPoints())
	if got.GoalsPoints != 5 {
		t.Fatalf("duplicated pick must count once: got=%d want=5", got.GoalsPoints)
	}
}

func TestScoreUserGameweek_PersistsAndIsIdempotent(t *testing.T) {
	ctx := context.Background()

	repo := memory.NewPredictionRepository([]prediction.Record{
		{
			UserID:   "u1",
			Gameweek: 7,
			Entries: []prediction.Entry{
				{FixtureID: "fx1", PredictedHomeScore: 2, PredictedAwayScore: 1},
				{FixtureID: "fx2", PredictedHomeScore: 0, PredictedAwayScore: 0},
			},
		},
	})
	fixtures := []fixture.Fixture{
		{ID: "fx1", Gameweek: 7, HomeScore: 2, AwayScore: 1, Finished: true},
		{ID: "fx2", Gameweek: 7, HomeScore: 3, AwayScore: 0, Finished: true},
	}

	svc := NewScoringService(repo, testScoringPoints())

	first, err := svc.ScoreUserGameweek(ctx, "u1", 7, fixtures)
	if err != nil {
		t.Fatalf("score gameweek: %v", err)
	}
	if first.GameweekTotal() != 10 {
		t.Fatalf("unexpected gameweek total: got=%d want=10", first.GameweekTotal())
	}

	stored, exists, err := repo.Get(ctx, "u1", 7)
	if err != nil || !exists {
		t.Fatalf("stored record missing: exists=%v err=%v", exists, err)
	}
	if stored.Entries[0].Score == nil || stored.Entries[0].ComputedTotal == nil {
		t.Fatalf("scored fields must be persisted")
	}

	second, err := svc.ScoreUserGameweek(ctx, "u1", 7, fixtures)
	if err != nil {
		t.Fatalf("rescore gameweek: %v", err)
	}
	if second.GameweekTotal() != first.GameweekTotal() {
		t.Fatalf("rescoring must be idempotent: got=%d want=%d", second.GameweekTotal(), first.GameweekTotal())
	}
}

func TestScoreUserGameweek_MissingRecord(t *testing.T) {
	svc := NewScoringService(memory.NewPredictionRepository(nil), testScoringPoints())

	_, err := svc.ScoreUserGameweek(context.Background(), "ghost", 3, []fixture.Fixture{{ID: "fx1"}})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestScoreUserGameweek_MissingFixtureFails(t *testing.T) {
	repo := memory.NewPredictionRepository([]prediction.Record{
		{
			UserID:   "u1",
			Gameweek: 7,
			Entries:  []prediction.Entry{{FixtureID: "unknown"}},
		},
	})
	svc := NewScoringService(repo, testScoringPoints())

	_, err := svc.ScoreUserGameweek(context.Background(), "u1", 7, []fixture.Fixture{{ID: "fx1"}})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown fixture, got %v", err)
	}
}
