package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/predictball/predictor-league/internal/domain/leaguescore"
	qb "github.com/predictball/predictor-league/internal/platform/querybuilder"
)

// snapshotInsertChunk keeps each multi-row snapshot insert comfortably under
// the backend's 500-operation ceiling.
const snapshotInsertChunk = 400

type LeagueScoreRepository struct {
	db *sqlx.DB
}

func NewLeagueScoreRepository(db *sqlx.DB) *LeagueScoreRepository {
	return &LeagueScoreRepository{db: db}
}

func (r *LeagueScoreRepository) GetAggregate(ctx context.Context, leagueID, userID string) (leaguescore.Aggregate, bool, error) {
	query, args, err := qb.Select("*").From("league_score_aggregates").
		Where(
			qb.Eq("league_id", leagueID),
			qb.Eq("user_id", userID),
		).
		ToSQL()
	if err != nil {
		return leaguescore.Aggregate{}, false, fmt.Errorf("build get aggregate query: %w", err)
	}

	var row leagueScoreAggregateTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return leaguescore.Aggregate{}, false, nil
		}
		return leaguescore.Aggregate{}, false, fmt.Errorf("get aggregate: %w", err)
	}

	aggregate, err := aggregateFromRow(row)
	if err != nil {
		return leaguescore.Aggregate{}, false, err
	}
	return aggregate, true, nil
}

func (r *LeagueScoreRepository) ListAggregatesByLeague(ctx context.Context, leagueID string) ([]leaguescore.Aggregate, error) {
	query, args, err := qb.Select("*").From("league_score_aggregates").
		Where(qb.Eq("league_id", leagueID)).
		OrderBy("user_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list aggregates query: %w", err)
	}

	var rows []leagueScoreAggregateTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list aggregates: %w", err)
	}

	out := make([]leaguescore.Aggregate, 0, len(rows))
	for _, row := range rows {
		aggregate, err := aggregateFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, aggregate)
	}
	return out, nil
}

func (r *LeagueScoreRepository) UpsertAggregate(ctx context.Context, aggregate leaguescore.Aggregate) error {
	scores, err := marshalGameweekScores(aggregate.GameweekScores)
	if err != nil {
		return err
	}

	insertModel := leagueScoreAggregateInsertModel{
		LeagueID:            aggregate.LeagueID,
		UserID:              aggregate.UserID,
		JoinedGameweek:      aggregate.JoinedGameweek,
		TotalScore:          aggregate.TotalScore,
		GameweekScores:      scores,
		LastUpdatedGameweek: aggregate.LastUpdatedGameweek,
		UpdatedAt:           aggregate.UpdatedAt,
	}
	query, args, err := qb.InsertModel("league_score_aggregates", insertModel, `ON CONFLICT (league_id, user_id)
DO UPDATE SET
    joined_gameweek = EXCLUDED.joined_gameweek,
    total_score = EXCLUDED.total_score,
    gameweek_scores = EXCLUDED.gameweek_scores,
    last_updated_gameweek = EXCLUDED.last_updated_gameweek,
    updated_at = EXCLUDED.updated_at`)
	if err != nil {
		return fmt.Errorf("build upsert aggregate query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert aggregate: %w", err)
	}
	return nil
}

func (r *LeagueScoreRepository) GetSnapshot(ctx context.Context, leagueID string, gameweek int, userID string) (leaguescore.Snapshot, bool, error) {
	query, args, err := qb.Select("*").From("league_score_snapshots").
		Where(
			qb.Eq("league_id", leagueID),
			qb.Eq("gameweek", gameweek),
			qb.Eq("user_id", userID),
		).
		ToSQL()
	if err != nil {
		return leaguescore.Snapshot{}, false, fmt.Errorf("build get snapshot query: %w", err)
	}

	var row leagueScoreSnapshotTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return leaguescore.Snapshot{}, false, nil
		}
		return leaguescore.Snapshot{}, false, fmt.Errorf("get snapshot: %w", err)
	}

	return snapshotFromRow(row), true, nil
}

func (r *LeagueScoreRepository) ListSnapshotsByGameweek(ctx context.Context, leagueID string, gameweek int) ([]leaguescore.Snapshot, error) {
	query, args, err := qb.Select("*").From("league_score_snapshots").
		Where(
			qb.Eq("league_id", leagueID),
			qb.Eq("gameweek", gameweek),
		).
		OrderBy("rank").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list snapshots query: %w", err)
	}

	var rows []leagueScoreSnapshotTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}

	out := make([]leaguescore.Snapshot, 0, len(rows))
	for _, row := range rows {
		out = append(out, snapshotFromRow(row))
	}
	return out, nil
}

// ReplaceSnapshots overwrites the whole gameweek ranking for a league. The
// delete and the chunked inserts commit independently, so a mid-sequence
// failure leaves earlier chunks in place; the next recalculation repairs it.
func (r *LeagueScoreRepository) ReplaceSnapshots(ctx context.Context, leagueID string, gameweek int, rows []leaguescore.Snapshot) error {
	query, args, err := qb.DeleteFrom("league_score_snapshots").
		Where(
			qb.Eq("league_id", leagueID),
			qb.Eq("gameweek", gameweek),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete snapshots query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete snapshots: %w", err)
	}

	for start := 0; start < len(rows); start += snapshotInsertChunk {
		end := start + snapshotInsertChunk
		if end > len(rows) {
			end = len(rows)
		}

		models := make([]any, 0, end-start)
		for _, row := range rows[start:end] {
			models = append(models, snapshotInsertFromRow(row))
		}

		insert, insertArgs, err := qb.InsertModels("league_score_snapshots", models, "")
		if err != nil {
			return fmt.Errorf("build insert snapshots query: %w", err)
		}
		if _, err := r.db.ExecContext(ctx, insert, insertArgs...); err != nil {
			return fmt.Errorf("insert snapshots: %w", err)
		}
	}
	return nil
}

func (r *LeagueScoreRepository) LatestCalculatedGameweek(ctx context.Context, leagueID string) (int, bool, error) {
	query, args, err := qb.Select("COALESCE(MAX(gameweek), 0)").From("league_score_snapshots").
		Where(qb.Eq("league_id", leagueID)).
		ToSQL()
	if err != nil {
		return 0, false, fmt.Errorf("build latest gameweek query: %w", err)
	}

	var latest int
	if err := r.db.GetContext(ctx, &latest, query, args...); err != nil {
		return 0, false, fmt.Errorf("latest calculated gameweek: %w", err)
	}
	return latest, latest > 0, nil
}
