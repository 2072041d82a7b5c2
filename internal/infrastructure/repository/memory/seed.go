package memory

import (
	"github.com/predictball/predictor-league/internal/domain/user"
)

// SeedUsers provides a handful of accounts for local development without a
// database. IDs line up with the X-User-ID header values in the dev docs.
func SeedUsers() []user.User {
	return []user.User{
		{ID: "dev-alice", DisplayName: "Alice", FavoriteTeamID: "eng-ars", JoinedGameweek: 1},
		{ID: "dev-bob", DisplayName: "Bob", FavoriteTeamID: "eng-liv", JoinedGameweek: 1},
		{ID: "dev-carol", DisplayName: "Carol", FavoriteTeamID: "", JoinedGameweek: 2},
	}
}
