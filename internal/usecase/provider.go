package usecase

import (
	"context"

	"github.com/predictball/predictor-league/internal/domain/fixture"
)

// ResultProvider is the read-only source of authoritative match results.
// Implementations normalize whatever shape the remote API returns into one
// typed fixture slice; a gameweek with no fixtures yet surfaces as a wrapped
// ErrNotFound.
type ResultProvider interface {
	ResultsForGameweek(ctx context.Context, gameweek int) ([]fixture.Fixture, error)
}
