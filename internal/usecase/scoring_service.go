package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/predictball/predictor-league/internal/domain/fixture"
	"github.com/predictball/predictor-league/internal/domain/prediction"
)

// ScoringPoints holds the configured point values per scoring category.
type ScoringPoints struct {
	CorrectScoreline int
	GoalScored       int
	Assist           int
}

// ScoringService turns a user's scoreline and stat predictions plus the
// actual gameweek results into computed point totals.
type ScoringService struct {
	predictionRepo prediction.Repository
	points         ScoringPoints
	now            func() time.Time
}

func NewScoringService(predictionRepo prediction.Repository, points ScoringPoints) *ScoringService {
	return &ScoringService{
		predictionRepo: predictionRepo,
		points:         points,
		now:            time.Now,
	}
}

// ScoreUserGameweek scores one user's prediction record against the full
// fixture set of a gameweek and persists the whole record in one write.
// Rescoring overwrites the computed fields wholesale, so a retry with
// unchanged inputs yields an identical total.
func (s *ScoringService) ScoreUserGameweek(ctx context.Context, userID string, gameweek int, fixtures []fixture.Fixture) (prediction.Record, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.ScoreUserGameweek")
	defer span.End()

	if userID == "" {
		return prediction.Record{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if gameweek < 1 {
		return prediction.Record{}, fmt.Errorf("%w: gameweek must be greater than zero", ErrInvalidInput)
	}

	record, exists, err := s.predictionRepo.Get(ctx, userID, gameweek)
	if err != nil {
		return prediction.Record{}, fmt.Errorf("get prediction user=%s gameweek=%d: %w", userID, gameweek, err)
	}
	if !exists {
		return prediction.Record{}, fmt.Errorf("%w: prediction user=%s gameweek=%d", ErrNotFound, userID, gameweek)
	}

	byID := make(map[string]fixture.Fixture, len(fixtures))
	for _, item := range fixtures {
		byID[item.ID] = item
	}

	scored, err := scoreEntries(record.Entries, byID, s.points)
	if err != nil {
		return prediction.Record{}, err
	}

	record.Entries = scored
	record.UpdatedAt = s.now().UTC()
	if err := s.predictionRepo.Upsert(ctx, record); err != nil {
		return prediction.Record{}, fmt.Errorf("persist scored prediction user=%s gameweek=%d: %w", userID, gameweek, err)
	}

	return record, nil
}

func scoreEntries(entries []prediction.Entry, fixturesByID map[string]fixture.Fixture, points ScoringPoints) ([]prediction.Entry, error) {
	out := make([]prediction.Entry, len(entries))
	for idx, entry := range entries {
		fx, ok := fixturesByID[entry.FixtureID]
		if !ok {
			return nil, fmt.Errorf("%w: fixture=%s", ErrNotFound, entry.FixtureID)
		}

		score := scoreEntry(entry, fx, points)
		total := score.Total()
		entry.Score = &score
		entry.ComputedTotal = &total
		out[idx] = entry
	}
	return out, nil
}

// scoreEntry applies the all-or-nothing scoreline gate: a wrong scoreline
// voids every category, stat predictions included. An exact scoreline earns
// the scoreline points plus per-player points for predicted scorers and
// assisters that actually appear in the stat events. Player matching is a
// set intersection, so a scorer predicted twice still counts once.
func scoreEntry(entry prediction.Entry, fx fixture.Fixture, points ScoringPoints) prediction.Score {
	if entry.PredictedHomeScore != fx.HomeScore || entry.PredictedAwayScore != fx.AwayScore {
		return prediction.Score{}
	}

	goals := intersectionSize(entry.PredictedPlayerSet(fixture.StatGoal), fx.PlayerSet(fixture.StatGoal))
	assists := intersectionSize(entry.PredictedPlayerSet(fixture.StatAssist), fx.PlayerSet(fixture.StatAssist))

	return prediction.Score{
		ScorelinePoints: points.CorrectScoreline,
		GoalsPoints:     points.GoalScored * goals,
		AssistsPoints:   points.Assist * assists,
	}
}

func intersectionSize(a, b map[string]struct{}) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	count := 0
	for key := range a {
		if _, ok := b[key]; ok {
			count++
		}
	}
	return count
}
