package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/predictball/predictor-league/internal/domain/prediction"
	qb "github.com/predictball/predictor-league/internal/platform/querybuilder"
)

const predictionUpsertSuffix = `ON CONFLICT (user_id, gameweek)
DO UPDATE SET
    entries = EXCLUDED.entries,
    updated_at = EXCLUDED.updated_at`

type PredictionRepository struct {
	db *sqlx.DB
}

func NewPredictionRepository(db *sqlx.DB) *PredictionRepository {
	return &PredictionRepository{db: db}
}

func (r *PredictionRepository) Get(ctx context.Context, userID string, gameweek int) (prediction.Record, bool, error) {
	query, args, err := qb.Select("*").From("predictions").
		Where(
			qb.Eq("user_id", userID),
			qb.Eq("gameweek", gameweek),
		).
		ToSQL()
	if err != nil {
		return prediction.Record{}, false, fmt.Errorf("build get prediction query: %w", err)
	}

	var row predictionTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return prediction.Record{}, false, nil
		}
		return prediction.Record{}, false, fmt.Errorf("get prediction: %w", err)
	}

	record, err := recordFromRow(row)
	if err != nil {
		return prediction.Record{}, false, err
	}
	return record, true, nil
}

func (r *PredictionRepository) Upsert(ctx context.Context, record prediction.Record) error {
	insertModel, err := predictionInsertFromRecord(record)
	if err != nil {
		return err
	}

	query, args, err := qb.InsertModel("predictions", insertModel, predictionUpsertSuffix)
	if err != nil {
		return fmt.Errorf("build upsert prediction query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert prediction: %w", err)
	}
	return nil
}

// BatchUpsert writes one pre-chunked batch in a single multi-row statement.
func (r *PredictionRepository) BatchUpsert(ctx context.Context, records []prediction.Record) error {
	if len(records) == 0 {
		return nil
	}

	models := make([]any, 0, len(records))
	for _, record := range records {
		insertModel, err := predictionInsertFromRecord(record)
		if err != nil {
			return err
		}
		models = append(models, insertModel)
	}

	query, args, err := qb.InsertModels("predictions", models, predictionUpsertSuffix)
	if err != nil {
		return fmt.Errorf("build batch upsert predictions query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("batch upsert predictions: %w", err)
	}
	return nil
}

func (r *PredictionRepository) PageByGameweek(ctx context.Context, gameweek int, cursor string, limit int) (prediction.Page, error) {
	if limit < 1 {
		return prediction.Page{}, fmt.Errorf("page limit must be greater than zero, got %d", limit)
	}

	conditions := []qb.Condition{qb.Eq("gameweek", gameweek)}
	if cursor != "" {
		conditions = append(conditions, qb.Gt("user_id", cursor))
	}

	query, args, err := qb.Select("*").From("predictions").
		Where(conditions...).
		OrderBy("user_id").
		Limit(limit + 1).
		ToSQL()
	if err != nil {
		return prediction.Page{}, fmt.Errorf("build page predictions query: %w", err)
	}

	var rows []predictionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return prediction.Page{}, fmt.Errorf("page predictions: %w", err)
	}

	page := prediction.Page{}
	hasMore := len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}
	for _, row := range rows {
		record, err := recordFromRow(row)
		if err != nil {
			return prediction.Page{}, err
		}
		page.Records = append(page.Records, record)
	}
	if hasMore {
		page.NextCursor = rows[len(rows)-1].UserID
	}
	return page, nil
}

func (r *PredictionRepository) DeleteAll(ctx context.Context) (int, error) {
	query, args, err := qb.DeleteFrom("predictions").ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build delete predictions query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete predictions: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count deleted predictions: %w", err)
	}
	return int(affected), nil
}
