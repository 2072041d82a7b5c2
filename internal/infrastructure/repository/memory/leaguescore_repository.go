package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/predictball/predictor-league/internal/domain/leaguescore"
)

type aggregateKey struct {
	leagueID string
	userID   string
}

type snapshotKey struct {
	leagueID string
	gameweek int
}

type LeagueScoreRepository struct {
	mu         sync.RWMutex
	aggregates map[aggregateKey]leaguescore.Aggregate
	snapshots  map[snapshotKey][]leaguescore.Snapshot
}

func NewLeagueScoreRepository() *LeagueScoreRepository {
	return &LeagueScoreRepository{
		aggregates: make(map[aggregateKey]leaguescore.Aggregate),
		snapshots:  make(map[snapshotKey][]leaguescore.Snapshot),
	}
}

func (r *LeagueScoreRepository) GetAggregate(_ context.Context, leagueID, userID string) (leaguescore.Aggregate, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	aggregate, ok := r.aggregates[aggregateKey{leagueID: leagueID, userID: userID}]
	if !ok {
		return leaguescore.Aggregate{}, false, nil
	}
	return cloneAggregate(aggregate), true, nil
}

func (r *LeagueScoreRepository) ListAggregatesByLeague(_ context.Context, leagueID string) ([]leaguescore.Aggregate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]leaguescore.Aggregate, 0)
	for key, aggregate := range r.aggregates {
		if key.leagueID == leagueID {
			out = append(out, cloneAggregate(aggregate))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (r *LeagueScoreRepository) UpsertAggregate(_ context.Context, aggregate leaguescore.Aggregate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.aggregates[aggregateKey{leagueID: aggregate.LeagueID, userID: aggregate.UserID}] = cloneAggregate(aggregate)
	return nil
}

func (r *LeagueScoreRepository) GetSnapshot(_ context.Context, leagueID string, gameweek int, userID string) (leaguescore.Snapshot, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, row := range r.snapshots[snapshotKey{leagueID: leagueID, gameweek: gameweek}] {
		if row.UserID == userID {
			return row, true, nil
		}
	}
	return leaguescore.Snapshot{}, false, nil
}

func (r *LeagueScoreRepository) ListSnapshotsByGameweek(_ context.Context, leagueID string, gameweek int) ([]leaguescore.Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows := r.snapshots[snapshotKey{leagueID: leagueID, gameweek: gameweek}]
	out := make([]leaguescore.Snapshot, len(rows))
	copy(out, rows)
	return out, nil
}

func (r *LeagueScoreRepository) ReplaceSnapshots(_ context.Context, leagueID string, gameweek int, rows []leaguescore.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := make([]leaguescore.Snapshot, len(rows))
	copy(stored, rows)
	r.snapshots[snapshotKey{leagueID: leagueID, gameweek: gameweek}] = stored
	return nil
}

func (r *LeagueScoreRepository) LatestCalculatedGameweek(_ context.Context, leagueID string) (int, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	latest := 0
	found := false
	for key, rows := range r.snapshots {
		if key.leagueID != leagueID || len(rows) == 0 {
			continue
		}
		if key.gameweek > latest {
			latest = key.gameweek
			found = true
		}
	}
	return latest, found, nil
}

func cloneAggregate(aggregate leaguescore.Aggregate) leaguescore.Aggregate {
	scores := make(map[int]int, len(aggregate.GameweekScores))
	for gameweek, score := range aggregate.GameweekScores {
		scores[gameweek] = score
	}
	aggregate.GameweekScores = scores
	return aggregate
}
