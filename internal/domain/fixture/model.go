package fixture

// StatIdentifier names a per-player stat category recorded for a match.
type StatIdentifier string

const (
	StatGoal   StatIdentifier = "goal"
	StatAssist StatIdentifier = "assist"
)

// StatEvent records one player involvement (a goal or an assist) in a match.
type StatEvent struct {
	Identifier StatIdentifier
	PlayerID   string
}

// Fixture is one match of a gameweek together with its authoritative result.
// Fixtures are provider-sourced and read-only from the engine's perspective.
type Fixture struct {
	ID         string
	Gameweek   int
	HomeTeamID string
	AwayTeamID string
	HomeScore  int
	AwayScore  int
	StatEvents []StatEvent
	Finished   bool
}

// Involves reports whether the team plays in this fixture, home or away.
func (f Fixture) Involves(teamID string) bool {
	if teamID == "" {
		return false
	}
	return f.HomeTeamID == teamID || f.AwayTeamID == teamID
}

// PlayerSet collects the distinct player ids behind one stat identifier.
func (f Fixture) PlayerSet(identifier StatIdentifier) map[string]struct{} {
	out := make(map[string]struct{})
	for _, event := range f.StatEvents {
		if event.Identifier != identifier || event.PlayerID == "" {
			continue
		}
		out[event.PlayerID] = struct{}{}
	}
	return out
}
