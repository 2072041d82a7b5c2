package postgres

import "time"

type leagueTableModel struct {
	ID            string    `db:"id"`
	Name          string    `db:"name"`
	CreatorUserID string    `db:"creator_user_id"`
	IsPrivate     bool      `db:"is_private"`
	JoinCode      string    `db:"join_code"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

type leagueInsertModel struct {
	ID            string    `db:"id"`
	Name          string    `db:"name"`
	CreatorUserID string    `db:"creator_user_id"`
	IsPrivate     bool      `db:"is_private"`
	JoinCode      string    `db:"join_code"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

type leagueMemberTableModel struct {
	LeagueID       string    `db:"league_id"`
	UserID         string    `db:"user_id"`
	JoinedGameweek int       `db:"joined_gameweek"`
	JoinedAt       time.Time `db:"joined_at"`
}

type leagueMemberInsertModel struct {
	LeagueID       string    `db:"league_id"`
	UserID         string    `db:"user_id"`
	JoinedGameweek int       `db:"joined_gameweek"`
	JoinedAt       time.Time `db:"joined_at"`
}
