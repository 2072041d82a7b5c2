package user

// User is the slice of the account record the scoring engine needs:
// identity, favorite team for default captaincy, and the gameweek the
// account was created in.
type User struct {
	ID             string
	DisplayName    string
	FavoriteTeamID string
	JoinedGameweek int
}
