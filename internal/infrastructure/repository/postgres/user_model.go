package postgres

import "time"

type userTableModel struct {
	ID             string    `db:"id"`
	DisplayName    string    `db:"display_name"`
	FavoriteTeamID string    `db:"favorite_team_id"`
	JoinedGameweek int       `db:"joined_gameweek"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}
