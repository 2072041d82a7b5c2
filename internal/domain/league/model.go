package league

import (
	"fmt"
	"time"
)

// League is a private or public competitive grouping of users with its own
// independent ranking and join code.
type League struct {
	ID            string
	Name          string
	CreatorUserID string
	IsPrivate     bool
	JoinCode      string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (l League) Validate() error {
	if l.ID == "" {
		return fmt.Errorf("league id is required")
	}
	if l.Name == "" {
		return fmt.Errorf("league name is required")
	}
	if l.CreatorUserID == "" {
		return fmt.Errorf("league creator user id is required")
	}
	if len(l.JoinCode) != 6 {
		return fmt.Errorf("league join code must be 6 characters")
	}
	return nil
}

// Membership ties a user to a league. JoinedGameweek freezes the first
// gameweek the member's totals accumulate from.
type Membership struct {
	LeagueID       string
	UserID         string
	JoinedGameweek int
	JoinedAt       time.Time
}
