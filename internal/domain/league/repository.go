package league

import "context"

// Repository describes league and membership persistence needs from use
// cases. The membership collection is the authoritative member list; no
// member array is denormalized onto the league itself.
type Repository interface {
	Create(ctx context.Context, item League) error
	GetByID(ctx context.Context, leagueID string) (League, bool, error)
	GetByJoinCode(ctx context.Context, joinCode string) (League, bool, error)
	List(ctx context.Context) ([]League, error)
	ListByUser(ctx context.Context, userID string) ([]League, error)

	UpsertMembership(ctx context.Context, membership Membership) error
	ListMembers(ctx context.Context, leagueID string) ([]Membership, error)
	IsMember(ctx context.Context, leagueID, userID string) (bool, error)
}
