package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/predictball/predictor-league/internal/domain/prediction"
)

type predictionKey struct {
	userID   string
	gameweek int
}

type PredictionRepository struct {
	mu    sync.RWMutex
	items map[predictionKey]prediction.Record
}

func NewPredictionRepository(records []prediction.Record) *PredictionRepository {
	items := make(map[predictionKey]prediction.Record, len(records))
	for _, record := range records {
		items[predictionKey{userID: record.UserID, gameweek: record.Gameweek}] = record
	}
	return &PredictionRepository{items: items}
}

func (r *PredictionRepository) Get(_ context.Context, userID string, gameweek int) (prediction.Record, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.items[predictionKey{userID: userID, gameweek: gameweek}]
	if !ok {
		return prediction.Record{}, false, nil
	}
	return record, true, nil
}

func (r *PredictionRepository) Upsert(_ context.Context, record prediction.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[predictionKey{userID: record.UserID, gameweek: record.Gameweek}] = record
	return nil
}

func (r *PredictionRepository) BatchUpsert(_ context.Context, records []prediction.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, record := range records {
		r.items[predictionKey{userID: record.UserID, gameweek: record.Gameweek}] = record
	}
	return nil
}

func (r *PredictionRepository) PageByGameweek(_ context.Context, gameweek int, cursor string, limit int) (prediction.Page, error) {
	if limit < 1 {
		return prediction.Page{}, fmt.Errorf("page limit must be greater than zero, got %d", limit)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	userIDs := make([]string, 0, len(r.items))
	for key := range r.items {
		if key.gameweek == gameweek {
			userIDs = append(userIDs, key.userID)
		}
	}
	sort.Strings(userIDs)

	page := prediction.Page{}
	for _, userID := range userIDs {
		if cursor != "" && userID <= cursor {
			continue
		}
		if len(page.Records) == limit {
			page.NextCursor = page.Records[len(page.Records)-1].UserID
			return page, nil
		}
		page.Records = append(page.Records, r.items[predictionKey{userID: userID, gameweek: gameweek}])
	}
	return page, nil
}

func (r *PredictionRepository) DeleteAll(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	deleted := len(r.items)
	r.items = make(map[predictionKey]prediction.Record)
	return deleted, nil
}
