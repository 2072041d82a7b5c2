package leaguescore

import "time"

// Snapshot is the immutable per-(league, user, gameweek) ranking record.
// A league's gameweek ranking is rebuilt wholesale each time it is
// recalculated; recomputing gameweek N needs the rank data of N-1.
type Snapshot struct {
	LeagueID      string
	UserID        string
	Gameweek      int
	GameweekScore int
	TotalScore    int
	Rank          int
	PreviousRank  int
	RankChange    int
	IsNewMember   bool
	CalculatedAt  time.Time
}

// Aggregate is the mutable per-(league, user) running total. Gameweeks are
// applied incrementally in increasing order; LastUpdatedGameweek guards
// against double-applying the same gameweek.
type Aggregate struct {
	LeagueID            string
	UserID              string
	JoinedGameweek      int
	TotalScore          int
	GameweekScores      map[int]int
	LastUpdatedGameweek int
	UpdatedAt           time.Time
}

// Apply adds one gameweek's score into the running total. It returns false
// without mutating when the gameweek has already been applied, so a retry of
// the same gameweek is a no-op rather than a re-add.
func (a *Aggregate) Apply(gameweek, score int) bool {
	if gameweek <= a.LastUpdatedGameweek {
		return false
	}
	if a.GameweekScores == nil {
		a.GameweekScores = make(map[int]int)
	}
	a.TotalScore += score
	a.GameweekScores[gameweek] = score
	a.LastUpdatedGameweek = gameweek
	return true
}
