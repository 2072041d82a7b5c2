package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/predictball/predictor-league/internal/domain/fixture"
	"github.com/predictball/predictor-league/internal/domain/league"
	"github.com/predictball/predictor-league/internal/domain/prediction"
	"github.com/predictball/predictor-league/internal/domain/user"
	"github.com/predictball/predictor-league/internal/infrastructure/repository/memory"
)

type stubResultProvider struct {
	fixtures []fixture.Fixture
	err      error
}

func (p *stubResultProvider) ResultsForGameweek(_ context.Context, _ int) ([]fixture.Fixture, error) {
	return p.fixtures, p.err
}

type runFixture struct {
	svc            *GameweekRunService
	predictionRepo *memory.PredictionRepository
	scoreRepo      *memory.LeagueScoreRepository
}

func newRunFixture(
	t *testing.T,
	users []user.User,
	records []prediction.Record,
	leagues []league.League,
	memberships []league.Membership,
	provider ResultProvider,
) runFixture {
	t.Helper()

	predictionRepo := memory.NewPredictionRepository(records)
	leagueRepo := memory.NewLeagueRepository(leagues)
	for _, m := range memberships {
		if err := leagueRepo.UpsertMembership(context.Background(), m); err != nil {
			t.Fatalf("seed membership: %v", err)
		}
	}
	scoreRepo := memory.NewLeagueScoreRepository()

	scoring := NewScoringService(predictionRepo, testScoringPoints())
	aggregation := NewLeagueAggregationService(leagueRepo, scoreRepo, predictionRepo)

	return runFixture{
		svc: NewGameweekRunService(
			memory.NewUserRepository(users),
			predictionRepo,
			leagueRepo,
			provider,
			scoring,
			aggregation,
			4,
		),
		predictionRepo: predictionRepo,
		scoreRepo:      scoreRepo,
	}
}

func TestRunForGameweek(t *testing.T) {
	ctx := context.Background()

	fixtures := []fixture.Fixture{
		{ID: "fx1", Gameweek: 4, HomeTeamID: "t1", AwayTeamID: "t2", HomeScore: 2, AwayScore: 1, Finished: true},
		{ID: "fx2", Gameweek: 4, HomeTeamID: "t3", AwayTeamID: "t4", HomeScore: 0, AwayScore: 0, Finished: true},
	}
	users := []user.User{
		{ID: "u1", JoinedGameweek: 1},
		{ID: "u2", FavoriteTeamID: "t3", JoinedGameweek: 1},
		{ID: "u3", JoinedGameweek: 9},
	}
	records := []prediction.Record{
		{
			UserID:   "u1",
			Gameweek: 4,
			Entries: []prediction.Entry{
				{FixtureID: "fx1", PredictedHomeScore: 2, PredictedAwayScore: 1},
				{FixtureID: "fx2", PredictedHomeScore: 1, PredictedAwayScore: 0},
			},
		},
	}
	memberships := []league.Membership{
		{LeagueID: "l1", UserID: "u1", JoinedGameweek: 1},
		{LeagueID: "l1", UserID: "u2", JoinedGameweek: 1},
	}

	f := newRunFixture(t, users, records,
		[]league.League{{ID: "l1", Name: "League One", JoinCode: "ABC234"}},
		memberships,
		&stubResultProvider{fixtures: fixtures},
	)

	summary, err := f.svc.RunForGameweek(ctx, 4)
	if err != nil {
		t.Fatalf("run gameweek: %v", err)
	}

	if summary.TotalUsers != 3 {
		t.Fatalf("unexpected total users: got=%d want=3", summary.TotalUsers)
	}
	if summary.SkippedJoinedLater != 1 {
		t.Fatalf("unexpected skipped count: got=%d want=1", summary.SkippedJoinedLater)
	}
	if summary.WithoutPredictions != 1 || summary.DefaultsCreated != 1 {
		t.Fatalf("unexpected defaults: without=%d created=%d", summary.WithoutPredictions, summary.DefaultsCreated)
	}
	if summary.ScoresCalculated != 2 {
		t.Fatalf("unexpected scored count: got=%d want=2", summary.ScoresCalculated)
	}
	if summary.LeaguesUpdated != 1 {
		t.Fatalf("unexpected leagues updated: got=%d want=1", summary.LeaguesUpdated)
	}
	if len(summary.Errors) != 0 {
		t.Fatalf("unexpected errors: %+v", summary.Errors)
	}

	// the defaulted user's record must be a scored 0-0 sheet with the
	// captain on the favorite's fixture
	record, exists, err := f.predictionRepo.Get(ctx, "u2", 4)
	if err != nil || !exists {
		t.Fatalf("default record missing: exists=%v err=%v", exists, err)
	}
	if len(record.Entries) != 2 {
		t.Fatalf("default record must cover every fixture: %d", len(record.Entries))
	}
	for _, entry := range record.Entries {
		if entry.ComputedTotal == nil {
			t.Fatalf("default record must be scored")
		}
		if entry.IsCaptain && entry.FixtureID != "fx2" {
			t.Fatalf("captain must be on the favorite's fixture: %s", entry.FixtureID)
		}
	}
	// u2 predicted 0-0 everywhere; fx2 really finished 0-0
	if record.GameweekTotal() != 10 {
		t.Fatalf("unexpected default total: got=%d want=10", record.GameweekTotal())
	}

	// the league pass must have produced a ranking for the gameweek
	rows, err := f.scoreRepo.ListSnapshotsByGameweek(ctx, "l1", 4)
	if err != nil {
		t.Fatalf("list snapshots: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("unexpected snapshot rows: got=%d want=2", len(rows))
	}
}

func TestRunForGameweek_FixtureFetchIsFatal(t *testing.T) {
	f := newRunFixture(t, []user.User{{ID: "u1", JoinedGameweek: 1}}, nil, nil, nil,
		&stubResultProvider{err: fmt.Errorf("provider down")})

	_, err := f.svc.RunForGameweek(context.Background(), 4)
	if !errors.Is(err, ErrPreconditionFailed) {
		t.Fatalf("expected ErrPreconditionFailed, got %v", err)
	}
}

func TestRunForGameweek_NoFixturesIsFatal(t *testing.T) {
	f := newRunFixture(t, []user.User{{ID: "u1", JoinedGameweek: 1}}, nil, nil, nil,
		&stubResultProvider{})

	_, err := f.svc.RunForGameweek(context.Background(), 4)
	if !errors.Is(err, ErrPreconditionFailed) {
		t.Fatalf("expected ErrPreconditionFailed, got %v", err)
	}
}

func TestRunForGameweek_EmptyRecordIsNotASubmission(t *testing.T) {
	ctx := context.Background()

	f := newRunFixture(t,
		[]user.User{{ID: "u1", JoinedGameweek: 1}},
		[]prediction.Record{{UserID: "u1", Gameweek: 4, Entries: []prediction.Entry{}}},
		nil, nil,
		&stubResultProvider{fixtures: []fixture.Fixture{
			{ID: "fx1", Gameweek: 4, HomeScore: 1, AwayScore: 1, Finished: true},
		}},
	)

	summary, err := f.svc.RunForGameweek(ctx, 4)
	if err != nil {
		t.Fatalf("run gameweek: %v", err)
	}
	if summary.WithoutPredictions != 1 || summary.DefaultsCreated != 1 {
		t.Fatalf("empty record must be replaced by defaults: %+v", summary)
	}

	record, _, _ := f.predictionRepo.Get(ctx, "u1", 4)
	if len(record.Entries) != 1 {
		t.Fatalf("default entries must replace the empty sheet: %d", len(record.Entries))
	}
}

func TestRunForGameweek_DefaultsFlushAcrossBatches(t *testing.T) {
	users := make([]user.User, 0, maxBatchWriteSize+50)
	for idx := 0; idx < maxBatchWriteSize+50; idx++ {
		users = append(users, user.User{ID: fmt.Sprintf("u%04d", idx), JoinedGameweek: 1})
	}

	f := newRunFixture(t, users, nil, nil, nil,
		&stubResultProvider{fixtures: []fixture.Fixture{
			{ID: "fx1", Gameweek: 4, HomeScore: 1, AwayScore: 0, Finished: true},
		}},
	)

	summary, err := f.svc.RunForGameweek(context.Background(), 4)
	if err != nil {
		t.Fatalf("run gameweek: %v", err)
	}
	if summary.DefaultsCreated != maxBatchWriteSize+50 {
		t.Fatalf("every user must receive defaults: got=%d want=%d", summary.DefaultsCreated, maxBatchWriteSize+50)
	}
	if summary.ScoresCalculated != maxBatchWriteSize+50 {
		t.Fatalf("every defaulted user must be scored: got=%d", summary.ScoresCalculated)
	}
}

func TestRunForGameweek_ScoringFailureIsCollected(t *testing.T) {
	// u1's sheet references a fixture missing from the results, which fails
	// that user's scoring without failing the run
	f := newRunFixture(t,
		[]user.User{
			{ID: "u1", JoinedGameweek: 1},
			{ID: "u2", JoinedGameweek: 1},
		},
		[]prediction.Record{
			{UserID: "u1", Gameweek: 4, Entries: []prediction.Entry{{FixtureID: "ghost"}}},
			{UserID: "u2", Gameweek: 4, Entries: []prediction.Entry{{FixtureID: "fx1", PredictedHomeScore: 1, PredictedAwayScore: 1}}},
		},
		nil, nil,
		&stubResultProvider{fixtures: []fixture.Fixture{
			{ID: "fx1", Gameweek: 4, HomeScore: 1, AwayScore: 1, Finished: true},
		}},
	)

	summary, err := f.svc.RunForGameweek(context.Background(), 4)
	if err != nil {
		t.Fatalf("run gameweek: %v", err)
	}
	if summary.ScoresCalculated != 1 {
		t.Fatalf("unexpected scored count: got=%d want=1", summary.ScoresCalculated)
	}
	if len(summary.Errors) != 1 {
		t.Fatalf("expected one collected failure, got %+v", summary.Errors)
	}
	if summary.Errors[0].Stage != "scoring" || summary.Errors[0].ID != "u1" {
		t.Fatalf("unexpected failure row: %+v", summary.Errors[0])
	}
}
