package prediction

import "context"

// Page is one cursor-bounded slice of gameweek records. NextCursor is empty
// once the stream is exhausted; re-issuing the same cursor restarts the page.
type Page struct {
	Records    []Record
	NextCursor string
}

type Repository interface {
	Get(ctx context.Context, userID string, gameweek int) (Record, bool, error)
	// Upsert persists the whole record in one write, replacing any previous
	// entries array for that user and gameweek.
	Upsert(ctx context.Context, record Record) error
	// BatchUpsert persists one pre-chunked batch of records in a single
	// backend write. Callers keep batches under the store's write ceiling.
	BatchUpsert(ctx context.Context, records []Record) error
	PageByGameweek(ctx context.Context, gameweek int, cursor string, limit int) (Page, error)
	DeleteAll(ctx context.Context) (int, error)
}
