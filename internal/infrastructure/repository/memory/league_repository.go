package memory

import (
	"context"
	"sync"

	"github.com/predictball/predictor-league/internal/domain/league"
)

type membershipKey struct {
	leagueID string
	userID   string
}

type LeagueRepository struct {
	mu          sync.RWMutex
	items       map[string]league.League
	orders      []string
	memberships map[membershipKey]league.Membership
	memberOrder map[string][]string
}

func NewLeagueRepository(leagues []league.League) *LeagueRepository {
	items := make(map[string]league.League, len(leagues))
	orders := make([]string, 0, len(leagues))
	for _, l := range leagues {
		items[l.ID] = l
		orders = append(orders, l.ID)
	}
	return &LeagueRepository{
		items:       items,
		orders:      orders,
		memberships: make(map[membershipKey]league.Membership),
		memberOrder: make(map[string][]string),
	}
}

func (r *LeagueRepository) Create(_ context.Context, item league.League) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[item.ID]; !ok {
		r.orders = append(r.orders, item.ID)
	}
	r.items[item.ID] = item
	return nil
}

func (r *LeagueRepository) GetByID(_ context.Context, leagueID string) (league.League, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[leagueID]
	if !ok {
		return league.League{}, false, nil
	}
	return item, true, nil
}

func (r *LeagueRepository) GetByJoinCode(_ context.Context, joinCode string) (league.League, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.orders {
		if r.items[id].JoinCode == joinCode {
			return r.items[id], true, nil
		}
	}
	return league.League{}, false, nil
}

func (r *LeagueRepository) List(_ context.Context) ([]league.League, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]league.League, 0, len(r.orders))
	for _, id := range r.orders {
		out = append(out, r.items[id])
	}
	return out, nil
}

func (r *LeagueRepository) ListByUser(_ context.Context, userID string) ([]league.League, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]league.League, 0)
	for _, id := range r.orders {
		if _, ok := r.memberships[membershipKey{leagueID: id, userID: userID}]; ok {
			out = append(out, r.items[id])
		}
	}
	return out, nil
}

func (r *LeagueRepository) UpsertMembership(_ context.Context, membership league.Membership) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := membershipKey{leagueID: membership.LeagueID, userID: membership.UserID}
	if _, ok := r.memberships[key]; !ok {
		r.memberOrder[membership.LeagueID] = append(r.memberOrder[membership.LeagueID], membership.UserID)
	}
	r.memberships[key] = membership
	return nil
}

func (r *LeagueRepository) ListMembers(_ context.Context, leagueID string) ([]league.Membership, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	userIDs := r.memberOrder[leagueID]
	out := make([]league.Membership, 0, len(userIDs))
	for _, userID := range userIDs {
		out = append(out, r.memberships[membershipKey{leagueID: leagueID, userID: userID}])
	}
	return out, nil
}

func (r *LeagueRepository) IsMember(_ context.Context, leagueID, userID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.memberships[membershipKey{leagueID: leagueID, userID: userID}]
	return ok, nil
}
