package postgres

import (
	"fmt"
	"strconv"
	"time"

	"github.com/bytedance/sonic"

	"github.com/predictball/predictor-league/internal/domain/leaguescore"
)

type leagueScoreAggregateTableModel struct {
	LeagueID            string    `db:"league_id"`
	UserID              string    `db:"user_id"`
	JoinedGameweek      int       `db:"joined_gameweek"`
	TotalScore          int       `db:"total_score"`
	GameweekScores      []byte    `db:"gameweek_scores"`
	LastUpdatedGameweek int       `db:"last_updated_gameweek"`
	UpdatedAt           time.Time `db:"updated_at"`
}

type leagueScoreAggregateInsertModel struct {
	LeagueID            string    `db:"league_id"`
	UserID              string    `db:"user_id"`
	JoinedGameweek      int       `db:"joined_gameweek"`
	TotalScore          int       `db:"total_score"`
	GameweekScores      []byte    `db:"gameweek_scores"`
	LastUpdatedGameweek int       `db:"last_updated_gameweek"`
	UpdatedAt           time.Time `db:"updated_at"`
}

type leagueScoreSnapshotTableModel struct {
	LeagueID      string    `db:"league_id"`
	UserID        string    `db:"user_id"`
	Gameweek      int       `db:"gameweek"`
	GameweekScore int       `db:"gameweek_score"`
	TotalScore    int       `db:"total_score"`
	Rank          int       `db:"rank"`
	PreviousRank  int       `db:"previous_rank"`
	RankChange    int       `db:"rank_change"`
	IsNewMember   bool      `db:"is_new_member"`
	CalculatedAt  time.Time `db:"calculated_at"`
}

type leagueScoreSnapshotInsertModel struct {
	LeagueID      string    `db:"league_id"`
	UserID        string    `db:"user_id"`
	Gameweek      int       `db:"gameweek"`
	GameweekScore int       `db:"gameweek_score"`
	TotalScore    int       `db:"total_score"`
	Rank          int       `db:"rank"`
	PreviousRank  int       `db:"previous_rank"`
	RankChange    int       `db:"rank_change"`
	IsNewMember   bool      `db:"is_new_member"`
	CalculatedAt  time.Time `db:"calculated_at"`
}

// gameweek scores live in JSONB keyed by the gameweek number as a string
func marshalGameweekScores(scores map[int]int) ([]byte, error) {
	doc := make(map[string]int, len(scores))
	for gameweek, score := range scores {
		doc[strconv.Itoa(gameweek)] = score
	}
	payload, err := sonic.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal gameweek scores: %w", err)
	}
	return payload, nil
}

func unmarshalGameweekScores(payload []byte) (map[int]int, error) {
	scores := make(map[int]int)
	if len(payload) == 0 {
		return scores, nil
	}

	var doc map[string]int
	if err := sonic.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal gameweek scores: %w", err)
	}
	for key, score := range doc {
		gameweek, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("parse gameweek score key %q: %w", key, err)
		}
		scores[gameweek] = score
	}
	return scores, nil
}

func aggregateFromRow(row leagueScoreAggregateTableModel) (leaguescore.Aggregate, error) {
	scores, err := unmarshalGameweekScores(row.GameweekScores)
	if err != nil {
		return leaguescore.Aggregate{}, err
	}
	return leaguescore.Aggregate{
		LeagueID:            row.LeagueID,
		UserID:              row.UserID,
		JoinedGameweek:      row.JoinedGameweek,
		TotalScore:          row.TotalScore,
		GameweekScores:      scores,
		LastUpdatedGameweek: row.LastUpdatedGameweek,
		UpdatedAt:           row.UpdatedAt,
	}, nil
}

func snapshotFromRow(row leagueScoreSnapshotTableModel) leaguescore.Snapshot {
	return leaguescore.Snapshot{
		LeagueID:      row.LeagueID,
		UserID:        row.UserID,
		Gameweek:      row.Gameweek,
		GameweekScore: row.GameweekScore,
		TotalScore:    row.TotalScore,
		Rank:          row.Rank,
		PreviousRank:  row.PreviousRank,
		RankChange:    row.RankChange,
		IsNewMember:   row.IsNewMember,
		CalculatedAt:  row.CalculatedAt,
	}
}

func snapshotInsertFromRow(row leaguescore.Snapshot) leagueScoreSnapshotInsertModel {
	return leagueScoreSnapshotInsertModel{
		LeagueID:      row.LeagueID,
		UserID:        row.UserID,
		Gameweek:      row.Gameweek,
		GameweekScore: row.GameweekScore,
		TotalScore:    row.TotalScore,
		Rank:          row.Rank,
		PreviousRank:  row.PreviousRank,
		RankChange:    row.RankChange,
		IsNewMember:   row.IsNewMember,
		CalculatedAt:  row.CalculatedAt,
	}
}
