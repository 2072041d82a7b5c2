package prediction

import (
	"fmt"
	"time"

	"github.com/predictball/predictor-league/internal/domain/fixture"
)

// StatPrediction is a user's pick of one player for one stat category.
type StatPrediction struct {
	Identifier fixture.StatIdentifier
	PlayerID   string
}

// Score holds the per-category points awarded to a single fixture entry.
type Score struct {
	ScorelinePoints int
	GoalsPoints     int
	AssistsPoints   int
}

func (s Score) Total() int {
	return s.ScorelinePoints + s.GoalsPoints + s.AssistsPoints
}

// Entry is one predicted fixture inside a gameweek record. Score and
// ComputedTotal stay nil until the scoring engine has run; rescoring
// overwrites them wholesale.
type Entry struct {
	FixtureID          string
	PredictedHomeScore int
	PredictedAwayScore int
	IsCaptain          bool
	StatPredictions    []StatPrediction
	Score              *Score
	ComputedTotal      *int
}

// PredictedPlayerSet collects the distinct player ids the entry predicts for
// one stat category. Duplicated picks collapse into one.
func (e Entry) PredictedPlayerSet(identifier fixture.StatIdentifier) map[string]struct{} {
	out := make(map[string]struct{})
	for _, pick := range e.StatPredictions {
		if pick.Identifier != identifier || pick.PlayerID == "" {
			continue
		}
		out[pick.PlayerID] = struct{}{}
	}
	return out
}

// Record is one user's full prediction for one gameweek. (UserID, Gameweek)
// is the composite identity.
type Record struct {
	UserID    string
	Gameweek  int
	Entries   []Entry
	UpdatedAt time.Time
}

func (r Record) Validate() error {
	if r.UserID == "" {
		return fmt.Errorf("prediction user id is required")
	}
	if r.Gameweek < 1 {
		return fmt.Errorf("prediction gameweek must be greater than zero")
	}

	captains := 0
	for _, entry := range r.Entries {
		if entry.FixtureID == "" {
			return fmt.Errorf("prediction entry fixture id is required")
		}
		if entry.PredictedHomeScore < 0 || entry.PredictedAwayScore < 0 {
			return fmt.Errorf("predicted scores must be non-negative for fixture=%s", entry.FixtureID)
		}
		if entry.IsCaptain {
			captains++
		}
	}
	if captains > 1 {
		return fmt.Errorf("at most one captain entry is allowed, got %d", captains)
	}

	return nil
}

// HasSubmission reports whether the record counts as a real submission. An
// existing record with no entries does not.
func (r Record) HasSubmission() bool {
	return len(r.Entries) > 0
}

// GameweekTotal sums the computed totals of all scored entries. Unscored
// entries contribute nothing.
func (r Record) GameweekTotal() int {
	total := 0
	for _, entry := range r.Entries {
		if entry.ComputedTotal != nil {
			total += *entry.ComputedTotal
		}
	}
	return total
}
