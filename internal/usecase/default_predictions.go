package usecase

import (
	"github.com/predictball/predictor-league/internal/domain/fixture"
	"github.com/predictball/predictor-league/internal/domain/prediction"
)

// SynthesizeDefaultPredictions builds the neutral prediction inserted for
// users who submitted nothing: 0-0 on every fixture with no stat picks.
// Captaincy lands on the first fixture involving the favorite team; when no
// fixture does (or no favorite is set), it falls on the first fixture. With
// at least one fixture, exactly one captain is always set.
func SynthesizeDefaultPredictions(fixtures []fixture.Fixture, favoriteTeamID string) []prediction.Entry {
	if len(fixtures) == 0 {
		return []prediction.Entry{}
	}

	captainIdx := 0
	for idx, fx := range fixtures {
		if fx.Involves(favoriteTeamID) {
			captainIdx = idx
			break
		}
	}

	entries := make([]prediction.Entry, 0, len(fixtures))
	for idx, fx := range fixtures {
		entries = append(entries, prediction.Entry{
			FixtureID:          fx.ID,
			PredictedHomeScore: 0,
			PredictedAwayScore: 0,
			IsCaptain:          idx == captainIdx,
			StatPredictions:    []prediction.StatPrediction{},
		})
	}

	return entries
}
