package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/predictball/predictor-league/internal/domain/user"
)

type UserRepository struct {
	mu    sync.RWMutex
	items map[string]user.User
}

func NewUserRepository(users []user.User) *UserRepository {
	items := make(map[string]user.User, len(users))
	for _, u := range users {
		items[u.ID] = u
	}
	return &UserRepository{items: items}
}

func (r *UserRepository) GetByID(_ context.Context, userID string) (user.User, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.items[userID]
	if !ok {
		return user.User{}, false, nil
	}
	return u, true, nil
}

func (r *UserRepository) PageUsers(_ context.Context, cursor string, limit int) (user.Page, error) {
	if limit < 1 {
		return user.Page{}, fmt.Errorf("page limit must be greater than zero, got %d", limit)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.items))
	for id := range r.items {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	page := user.Page{}
	for _, id := range ids {
		if cursor != "" && id <= cursor {
			continue
		}
		if len(page.Users) == limit {
			page.NextCursor = page.Users[len(page.Users)-1].ID
			return page, nil
		}
		page.Users = append(page.Users, r.items[id])
	}
	return page, nil
}
