package httpapi

import (
	"context"

	"github.com/predictball/predictor-league/internal/domain/user"
)

type contextKey string

const currentUserContextKey contextKey = "current_user"

func withCurrentUser(ctx context.Context, u user.User) context.Context {
	return context.WithValue(ctx, currentUserContextKey, u)
}

func currentUserFromContext(ctx context.Context) (user.User, bool) {
	u, ok := ctx.Value(currentUserContextKey).(user.User)
	return u, ok
}
