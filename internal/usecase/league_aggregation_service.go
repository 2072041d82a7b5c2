package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/predictball/predictor-league/internal/domain/league"
	"github.com/predictball/predictor-league/internal/domain/leaguescore"
	"github.com/predictball/predictor-league/internal/domain/prediction"
)

// LeagueAggregationService maintains per-(league, user) totals scoped to
// each member's join gameweek. The incremental aggregate is the primary
// strategy; the per-gameweek ranking snapshot is kept alongside it because
// it carries the rank history the table reader serves.
type LeagueAggregationService struct {
	leagueRepo     league.Repository
	scoreRepo      leaguescore.Repository
	predictionRepo prediction.Repository
	now            func() time.Time
}

func NewLeagueAggregationService(
	leagueRepo league.Repository,
	scoreRepo leaguescore.Repository,
	predictionRepo prediction.Repository,
) *LeagueAggregationService {
	return &LeagueAggregationService{
		leagueRepo:     leagueRepo,
		scoreRepo:      scoreRepo,
		predictionRepo: predictionRepo,
		now:            time.Now,
	}
}

// AggregationResult summarizes one incremental pass over a league's members.
type AggregationResult struct {
	Processed int
	Skipped   int
}

// UpdateLeagueForGameweek folds one gameweek's scores into every eligible
// member's running aggregate. Members whose aggregate already covers the
// gameweek are skipped, so reapplying the same gameweek is a no-op; members
// who joined after the gameweek are never touched.
func (s *LeagueAggregationService) UpdateLeagueForGameweek(ctx context.Context, leagueID string, gameweek int) (AggregationResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueAggregationService.UpdateLeagueForGameweek")
	defer span.End()

	if leagueID == "" {
		return AggregationResult{}, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}
	if gameweek < 1 {
		return AggregationResult{}, fmt.Errorf("%w: gameweek must be greater than zero", ErrInvalidInput)
	}

	members, err := s.leagueRepo.ListMembers(ctx, leagueID)
	if err != nil {
		return AggregationResult{}, fmt.Errorf("list members league=%s: %w", leagueID, err)
	}

	result := AggregationResult{}
	for _, member := range members {
		if member.JoinedGameweek > gameweek {
			continue
		}

		applied, err := s.applyGameweek(ctx, member, gameweek)
		if err != nil {
			return result, err
		}
		if applied {
			result.Processed++
		} else {
			result.Skipped++
		}
	}

	return result, nil
}

// BackfillLeague applies every missing gameweek from each member's join
// gameweek through the target, in increasing order. Order matters: the
// already-applied guard would silently drop an out-of-order gameweek. A
// gameweek with no scored prediction yet is skipped for that member and the
// backfill moves on; the resulting under-count is accepted rather than
// aborting the whole pass.
func (s *LeagueAggregationService) BackfillLeague(ctx context.Context, leagueID string, throughGameweek int) (AggregationResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueAggregationService.BackfillLeague")
	defer span.End()

	if leagueID == "" {
		return AggregationResult{}, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}
	if throughGameweek < 1 {
		return AggregationResult{}, fmt.Errorf("%w: target gameweek must be greater than zero", ErrInvalidInput)
	}

	members, err := s.leagueRepo.ListMembers(ctx, leagueID)
	if err != nil {
		return AggregationResult{}, fmt.Errorf("list members league=%s: %w", leagueID, err)
	}

	result := AggregationResult{}
	for _, member := range members {
		for gw := member.JoinedGameweek; gw <= throughGameweek; gw++ {
			if gw < 1 {
				continue
			}
			applied, err := s.applyGameweek(ctx, member, gw)
			if err != nil {
				return result, err
			}
			if applied {
				result.Processed++
			} else {
				result.Skipped++
			}
		}
	}

	return result, nil
}

func (s *LeagueAggregationService) applyGameweek(ctx context.Context, member league.Membership, gameweek int) (bool, error) {
	aggregate, exists, err := s.scoreRepo.GetAggregate(ctx, member.LeagueID, member.UserID)
	if err != nil {
		return false, fmt.Errorf("get aggregate league=%s user=%s: %w", member.LeagueID, member.UserID, err)
	}
	if !exists {
		aggregate = leaguescore.Aggregate{
			LeagueID:       member.LeagueID,
			UserID:         member.UserID,
			JoinedGameweek: member.JoinedGameweek,
			// joinedGameweek-1 so the first applied gameweek is the join one
			LastUpdatedGameweek: member.JoinedGameweek - 1,
		}
	}
	if aggregate.LastUpdatedGameweek >= gameweek {
		return false, nil
	}

	score, scored, err := s.gameweekScore(ctx, member.UserID, gameweek)
	if err != nil {
		return false, err
	}
	if !scored {
		return false, nil
	}

	if !aggregate.Apply(gameweek, score) {
		return false, nil
	}
	aggregate.UpdatedAt = s.now().UTC()

	if err := s.scoreRepo.UpsertAggregate(ctx, aggregate); err != nil {
		return false, fmt.Errorf("upsert aggregate league=%s user=%s: %w", member.LeagueID, member.UserID, err)
	}
	return true, nil
}

// CalculateSnapshot rebuilds the full ranking snapshot for one league and
// gameweek: a resum of every eligible member's totals from their join
// gameweek, ranked and diffed against the previous gameweek's snapshot.
// This is the legacy O(gameweeks) strategy; it stays because snapshot rows
// are the rank history the table reader pages through.
func (s *LeagueAggregationService) CalculateSnapshot(ctx context.Context, leagueID string, gameweek int) ([]leaguescore.Snapshot, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueAggregationService.CalculateSnapshot")
	defer span.End()

	if leagueID == "" {
		return nil, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}
	if gameweek < 1 {
		return []leaguescore.Snapshot{}, nil
	}

	members, err := s.leagueRepo.ListMembers(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("list members league=%s: %w", leagueID, err)
	}

	previousRankByUser := make(map[string]int)
	if gameweek > 1 {
		previous, err := s.scoreRepo.ListSnapshotsByGameweek(ctx, leagueID, gameweek-1)
		if err != nil {
			return nil, fmt.Errorf("list previous snapshots league=%s gameweek=%d: %w", leagueID, gameweek-1, err)
		}
		for _, row := range previous {
			previousRankByUser[row.UserID] = row.Rank
		}
	}

	now := s.now().UTC()
	rows := make([]leaguescore.Snapshot, 0, len(members))
	for _, member := range members {
		if member.JoinedGameweek > gameweek {
			continue
		}

		gameweekScore, _, err := s.gameweekScore(ctx, member.UserID, gameweek)
		if err != nil {
			return nil, err
		}

		total := 0
		for gw := member.JoinedGameweek; gw <= gameweek; gw++ {
			if gw < 1 {
				continue
			}
			score, _, err := s.gameweekScore(ctx, member.UserID, gw)
			if err != nil {
				return nil, err
			}
			total += score
		}

		rows = append(rows, leaguescore.Snapshot{
			LeagueID:      leagueID,
			UserID:        member.UserID,
			Gameweek:      gameweek,
			GameweekScore: gameweekScore,
			TotalScore:    total,
			CalculatedAt:  now,
		})
	}

	// Stable sort with no secondary key: ties keep member encounter order.
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].TotalScore > rows[j].TotalScore
	})

	for idx := range rows {
		rows[idx].Rank = idx + 1
		if previousRank, ok := previousRankByUser[rows[idx].UserID]; ok {
			rows[idx].PreviousRank = previousRank
			rows[idx].RankChange = previousRank - rows[idx].Rank
		} else {
			rows[idx].IsNewMember = true
			rows[idx].RankChange = 0
		}
	}

	if err := s.scoreRepo.ReplaceSnapshots(ctx, leagueID, gameweek, rows); err != nil {
		return nil, fmt.Errorf("replace snapshots league=%s gameweek=%d: %w", leagueID, gameweek, err)
	}

	return rows, nil
}

// gameweekScore resolves one user's computed total for a gameweek. The
// second return value reports whether a prediction record exists at all.
func (s *LeagueAggregationService) gameweekScore(ctx context.Context, userID string, gameweek int) (int, bool, error) {
	record, exists, err := s.predictionRepo.Get(ctx, userID, gameweek)
	if err != nil {
		return 0, false, fmt.Errorf("get prediction user=%s gameweek=%d: %w", userID, gameweek, err)
	}
	if !exists {
		return 0, false, nil
	}
	return record.GameweekTotal(), true, nil
}
