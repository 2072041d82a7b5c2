package leaguescore

import "context"

type Repository interface {
	GetAggregate(ctx context.Context, leagueID, userID string) (Aggregate, bool, error)
	ListAggregatesByLeague(ctx context.Context, leagueID string) ([]Aggregate, error)
	UpsertAggregate(ctx context.Context, aggregate Aggregate) error

	GetSnapshot(ctx context.Context, leagueID string, gameweek int, userID string) (Snapshot, bool, error)
	ListSnapshotsByGameweek(ctx context.Context, leagueID string, gameweek int) ([]Snapshot, error)
	// ReplaceSnapshots overwrites the whole gameweek ranking for a league.
	// Writes are chunked under the store's batch ceiling; chunks commit
	// independently, so a mid-sequence failure leaves earlier chunks in place.
	ReplaceSnapshots(ctx context.Context, leagueID string, gameweek int, rows []Snapshot) error
	// LatestCalculatedGameweek resolves the newest gameweek with any snapshot
	// rows for the league; ok is false when none have been calculated yet.
	LatestCalculatedGameweek(ctx context.Context, leagueID string) (int, bool, error)
}
