package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/predictball/predictor-league/internal/domain/user"
	qb "github.com/predictball/predictor-league/internal/platform/querybuilder"
)

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, userID string) (user.User, bool, error) {
	query, args, err := qb.Select("*").From("users").
		Where(qb.Eq("id", userID)).
		ToSQL()
	if err != nil {
		return user.User{}, false, fmt.Errorf("build get user by id query: %w", err)
	}

	var row userTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return user.User{}, false, nil
		}
		return user.User{}, false, fmt.Errorf("get user by id: %w", err)
	}

	return userFromRow(row), true, nil
}

// PageUsers walks the user population in id order with a keyset cursor, so
// pages stay stable while users are inserted elsewhere.
func (r *UserRepository) PageUsers(ctx context.Context, cursor string, limit int) (user.Page, error) {
	if limit < 1 {
		return user.Page{}, fmt.Errorf("page limit must be greater than zero, got %d", limit)
	}

	builder := qb.Select("*").From("users").
		OrderBy("id").
		Limit(limit + 1)
	if cursor != "" {
		builder = builder.Where(qb.Gt("id", cursor))
	}
	query, args, err := builder.ToSQL()
	if err != nil {
		return user.Page{}, fmt.Errorf("build page users query: %w", err)
	}

	var rows []userTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return user.Page{}, fmt.Errorf("page users: %w", err)
	}

	page := user.Page{}
	hasMore := len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}
	for _, row := range rows {
		page.Users = append(page.Users, userFromRow(row))
	}
	if hasMore {
		page.NextCursor = rows[len(rows)-1].ID
	}
	return page, nil
}

func userFromRow(row userTableModel) user.User {
	return user.User{
		ID:             row.ID,
		DisplayName:    row.DisplayName,
		FavoriteTeamID: row.FavoriteTeamID,
		JoinedGameweek: row.JoinedGameweek,
	}
}
