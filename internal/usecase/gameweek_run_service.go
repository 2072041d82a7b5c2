package usecase

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	concpool "github.com/sourcegraph/conc/pool"

	"github.com/predictball/predictor-league/internal/domain/fixture"
	leaguedomain "github.com/predictball/predictor-league/internal/domain/league"
	"github.com/predictball/predictor-league/internal/domain/prediction"
	"github.com/predictball/predictor-league/internal/domain/user"
)

// maxBatchWriteSize keeps every batch write comfortably under the backend's
// 500-operation ceiling.
const maxBatchWriteSize = 400

const defaultScoringWorkers = 8
const defaultLeagueWorkers = 4
const runUserPageSize = 100

const (
	runStageScoring = "scoring"
	runStageLeague  = "league"
)

type GameweekRunError struct {
	Stage   string `json:"stage"`
	ID      string `json:"id"`
	Message string `json:"message"`
}

type GameweekRunSummary struct {
	Gameweek           int                `json:"gameweek"`
	TotalUsers         int                `json:"totalUsers"`
	WithoutPredictions int                `json:"withoutPredictions"`
	SkippedJoinedLater int                `json:"skippedJoinedLater"`
	DefaultsCreated    int                `json:"defaultsCreated"`
	ScoresCalculated   int                `json:"scoresCalculated"`
	LeaguesUpdated     int                `json:"leaguesUpdated"`
	Errors             []GameweekRunError `json:"errors,omitempty"`
}

// GameweekRunService orchestrates the end-of-gameweek run: fetch final
// results, fill in default predictions for users who never submitted, score
// everyone, then update every league's aggregates and standings.
//
// Missing fixtures abort the whole run; everything after that collects
// per-item failures and keeps going.
type GameweekRunService struct {
	userRepo       user.Repository
	predictionRepo prediction.Repository
	leagueRepo     leaguedomain.Repository
	results        ResultProvider
	scoring        *ScoringService
	aggregation    *LeagueAggregationService
	maxWorkers     int
	now            func() time.Time
}

func NewGameweekRunService(
	userRepo user.Repository,
	predictionRepo prediction.Repository,
	leagueRepo leaguedomain.Repository,
	results ResultProvider,
	scoring *ScoringService,
	aggregation *LeagueAggregationService,
	maxWorkers int,
) *GameweekRunService {
	if maxWorkers < 1 {
		maxWorkers = defaultScoringWorkers
	}
	return &GameweekRunService{
		userRepo:       userRepo,
		predictionRepo: predictionRepo,
		leagueRepo:     leagueRepo,
		results:        results,
		scoring:        scoring,
		aggregation:    aggregation,
		maxWorkers:     maxWorkers,
		now:            time.Now,
	}
}

func (s *GameweekRunService) RunForGameweek(ctx context.Context, gameweek int) (GameweekRunSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameweekRunService.RunForGameweek")
	defer span.End()

	if gameweek < 1 {
		return GameweekRunSummary{}, fmt.Errorf("%w: gameweek must be greater than zero", ErrInvalidInput)
	}

	summary := GameweekRunSummary{Gameweek: gameweek}

	fixtures, err := s.results.ResultsForGameweek(ctx, gameweek)
	if err != nil {
		return summary, fmt.Errorf("%w: fetch results for gameweek %d: %v", ErrPreconditionFailed, gameweek, err)
	}
	if len(fixtures) == 0 {
		return summary, fmt.Errorf("%w: no finished fixtures for gameweek %d", ErrPreconditionFailed, gameweek)
	}

	submitted, err := s.collectSubmittedUsers(ctx, gameweek)
	if err != nil {
		return summary, fmt.Errorf("collect submitted users: %w", err)
	}

	scoreTargets, err := s.runDefaultsPass(ctx, gameweek, fixtures, submitted, &summary)
	if err != nil {
		return summary, err
	}

	if err := s.runScoringPass(ctx, gameweek, fixtures, scoreTargets, &summary); err != nil {
		return summary, err
	}

	if err := s.runLeaguePass(ctx, gameweek, &summary); err != nil {
		return summary, err
	}

	return summary, nil
}

// collectSubmittedUsers walks every prediction record stored for the
// gameweek. A record with zero entries does not count as a submission.
func (s *GameweekRunService) collectSubmittedUsers(ctx context.Context, gameweek int) (map[string]struct{}, error) {
	submitted := make(map[string]struct{})
	cursor := ""
	for {
		page, err := s.predictionRepo.PageByGameweek(ctx, gameweek, cursor, runUserPageSize)
		if err != nil {
			return nil, fmt.Errorf("page prediction records: %w", err)
		}
		for _, record := range page.Records {
			if record.HasSubmission() {
				submitted[record.UserID] = struct{}{}
			}
		}
		if page.NextCursor == "" {
			return submitted, nil
		}
		cursor = page.NextCursor
	}
}

// runDefaultsPass pages through all users, synthesizes default records for
// those without a submission, and returns the ids that need scoring.
func (s *GameweekRunService) runDefaultsPass(
	ctx context.Context,
	gameweek int,
	fixtures []fixture.Fixture,
	submitted map[string]struct{},
	summary *GameweekRunSummary,
) ([]string, error) {
	var scoreTargets []string
	batch := make([]prediction.Record, 0, maxBatchWriteSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := s.predictionRepo.BatchUpsert(ctx, batch); err != nil {
			return fmt.Errorf("batch upsert default predictions: %w", err)
		}
		summary.DefaultsCreated += len(batch)
		batch = batch[:0]
		return nil
	}

	cursor := ""
	for {
		page, err := s.userRepo.PageUsers(ctx, cursor, runUserPageSize)
		if err != nil {
			return nil, fmt.Errorf("page users: %w", err)
		}

		for _, item := range page.Users {
			summary.TotalUsers++

			if item.JoinedGameweek > gameweek {
				summary.SkippedJoinedLater++
				continue
			}

			if _, ok := submitted[item.ID]; ok {
				scoreTargets = append(scoreTargets, item.ID)
				continue
			}

			summary.WithoutPredictions++
			batch = append(batch, prediction.Record{
				UserID:    item.ID,
				Gameweek:  gameweek,
				Entries:   SynthesizeDefaultPredictions(fixtures, item.FavoriteTeamID),
				UpdatedAt: s.now().UTC(),
			})
			scoreTargets = append(scoreTargets, item.ID)

			if len(batch) == maxBatchWriteSize {
				if err := flush(); err != nil {
					return nil, err
				}
			}
		}

		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}

	if err := flush(); err != nil {
		return nil, err
	}
	return scoreTargets, nil
}

func (s *GameweekRunService) runScoringPass(
	ctx context.Context,
	gameweek int,
	fixtures []fixture.Fixture,
	userIDs []string,
	summary *GameweekRunSummary,
) error {
	if len(userIDs) == 0 {
		return nil
	}

	workerCount := s.maxWorkers
	if workerCount > len(userIDs) {
		workerCount = len(userIDs)
	}

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return fmt.Errorf("create scoring worker pool: %w", err)
	}
	defer pool.Release()

	failures := make(chan GameweekRunError, len(userIDs))
	var scored atomic.Int32

	var workers sync.WaitGroup
	for _, userID := range userIDs {
		userID := userID
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			if _, err := s.scoring.ScoreUserGameweek(ctx, userID, gameweek, fixtures); err != nil {
				failures <- GameweekRunError{
					Stage:   runStageScoring,
					ID:      userID,
					Message: err.Error(),
				}
				return
			}
			scored.Add(1)
		}); err != nil {
			workers.Done()
			return fmt.Errorf("submit scoring task: %w", err)
		}
	}

	workers.Wait()
	close(failures)

	summary.ScoresCalculated = int(scored.Load())
	for failure := range failures {
		summary.Errors = append(summary.Errors, failure)
	}
	return nil
}

func (s *GameweekRunService) runLeaguePass(ctx context.Context, gameweek int, summary *GameweekRunSummary) error {
	leagues, err := s.leagueRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("list leagues: %w", err)
	}
	if len(leagues) == 0 {
		return nil
	}

	var mu sync.Mutex
	var updated int

	workers := concpool.New().WithMaxGoroutines(defaultLeagueWorkers)
	for _, item := range leagues {
		item := item
		workers.Go(func() {
			record := func(err error) {
				mu.Lock()
				defer mu.Unlock()
				summary.Errors = append(summary.Errors, GameweekRunError{
					Stage:   runStageLeague,
					ID:      item.ID,
					Message: err.Error(),
				})
			}

			if _, err := s.aggregation.UpdateLeagueForGameweek(ctx, item.ID, gameweek); err != nil {
				record(err)
				return
			}
			if _, err := s.aggregation.CalculateSnapshot(ctx, item.ID, gameweek); err != nil {
				record(err)
				return
			}

			mu.Lock()
			updated++
			mu.Unlock()
		})
	}
	workers.Wait()

	summary.LeaguesUpdated = updated
	return nil
}
