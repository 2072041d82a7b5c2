package user

import "context"

// Page is one cursor-bounded slice of the user population. The cursor is the
// last-seen user id, stable under concurrent inserts elsewhere.
type Page struct {
	Users      []User
	NextCursor string
}

type Repository interface {
	GetByID(ctx context.Context, userID string) (User, bool, error)
	PageUsers(ctx context.Context, cursor string, limit int) (Page, error)
}
