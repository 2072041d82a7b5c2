package postgres

import (
	"fmt"
	"time"

	"github.com/bytedance/sonic"

	"github.com/predictball/predictor-league/internal/domain/fixture"
	"github.com/predictball/predictor-league/internal/domain/prediction"
)

type predictionTableModel struct {
	UserID    string    `db:"user_id"`
	Gameweek  int       `db:"gameweek"`
	Entries   []byte    `db:"entries"`
	UpdatedAt time.Time `db:"updated_at"`
}

type predictionInsertModel struct {
	UserID    string    `db:"user_id"`
	Gameweek  int       `db:"gameweek"`
	Entries   []byte    `db:"entries"`
	UpdatedAt time.Time `db:"updated_at"`
}

// predictionEntryDoc is the JSONB shape of one fixture entry. The computed
// fields stay null until the scoring engine has run.
type predictionEntryDoc struct {
	FixtureID          string              `json:"fixtureId"`
	PredictedHomeScore int                 `json:"predictedHomeScore"`
	PredictedAwayScore int                 `json:"predictedAwayScore"`
	IsCaptain          bool                `json:"isCaptain,omitempty"`
	StatPredictions    []predictionStatDoc `json:"statPredictions"`
	Score              *predictionScoreDoc `json:"score,omitempty"`
	ComputedTotal      *int                `json:"computedTotal,omitempty"`
}

type predictionStatDoc struct {
	Identifier string `json:"identifier"`
	PlayerID   string `json:"playerId"`
}

type predictionScoreDoc struct {
	ScorelinePoints int `json:"scorelinePoints"`
	GoalsPoints     int `json:"goalsPoints"`
	AssistsPoints   int `json:"assistsPoints"`
}

func marshalEntries(entries []prediction.Entry) ([]byte, error) {
	docs := make([]predictionEntryDoc, 0, len(entries))
	for _, entry := range entries {
		doc := predictionEntryDoc{
			FixtureID:          entry.FixtureID,
			PredictedHomeScore: entry.PredictedHomeScore,
			PredictedAwayScore: entry.PredictedAwayScore,
			IsCaptain:          entry.IsCaptain,
			StatPredictions:    make([]predictionStatDoc, 0, len(entry.StatPredictions)),
			ComputedTotal:      entry.ComputedTotal,
		}
		for _, pick := range entry.StatPredictions {
			doc.StatPredictions = append(doc.StatPredictions, predictionStatDoc{
				Identifier: string(pick.Identifier),
				PlayerID:   pick.PlayerID,
			})
		}
		if entry.Score != nil {
			doc.Score = &predictionScoreDoc{
				ScorelinePoints: entry.Score.ScorelinePoints,
				GoalsPoints:     entry.Score.GoalsPoints,
				AssistsPoints:   entry.Score.AssistsPoints,
			}
		}
		docs = append(docs, doc)
	}

	payload, err := sonic.Marshal(docs)
	if err != nil {
		return nil, fmt.Errorf("marshal prediction entries: %w", err)
	}
	return payload, nil
}

func unmarshalEntries(payload []byte) ([]prediction.Entry, error) {
	if len(payload) == 0 {
		return []prediction.Entry{}, nil
	}

	var docs []predictionEntryDoc
	if err := sonic.Unmarshal(payload, &docs); err != nil {
		return nil, fmt.Errorf("unmarshal prediction entries: %w", err)
	}

	entries := make([]prediction.Entry, 0, len(docs))
	for _, doc := range docs {
		entry := prediction.Entry{
			FixtureID:          doc.FixtureID,
			PredictedHomeScore: doc.PredictedHomeScore,
			PredictedAwayScore: doc.PredictedAwayScore,
			IsCaptain:          doc.IsCaptain,
			StatPredictions:    make([]prediction.StatPrediction, 0, len(doc.StatPredictions)),
			ComputedTotal:      doc.ComputedTotal,
		}
		for _, pick := range doc.StatPredictions {
			entry.StatPredictions = append(entry.StatPredictions, prediction.StatPrediction{
				Identifier: fixture.StatIdentifier(pick.Identifier),
				PlayerID:   pick.PlayerID,
			})
		}
		if doc.Score != nil {
			entry.Score = &prediction.Score{
				ScorelinePoints: doc.Score.ScorelinePoints,
				GoalsPoints:     doc.Score.GoalsPoints,
				AssistsPoints:   doc.Score.AssistsPoints,
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func predictionInsertFromRecord(record prediction.Record) (predictionInsertModel, error) {
	entries, err := marshalEntries(record.Entries)
	if err != nil {
		return predictionInsertModel{}, err
	}
	return predictionInsertModel{
		UserID:    record.UserID,
		Gameweek:  record.Gameweek,
		Entries:   entries,
		UpdatedAt: record.UpdatedAt,
	}, nil
}

func recordFromRow(row predictionTableModel) (prediction.Record, error) {
	entries, err := unmarshalEntries(row.Entries)
	if err != nil {
		return prediction.Record{}, err
	}
	return prediction.Record{
		UserID:    row.UserID,
		Gameweek:  row.Gameweek,
		Entries:   entries,
		UpdatedAt: row.UpdatedAt,
	}, nil
}
