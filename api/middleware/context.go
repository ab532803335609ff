package middleware

import (
	"context"

	"github.com/google/uuid"

	pkgAuth "github.com/angelmondragon/callcenter-backend/pkg/auth"
	"github.com/angelmondragon/callcenter-backend/pkg/enums"
)

type contextKey string

const (
	ctxAccountID contextKey = "account_id"
	ctxRole      contextKey = "actor_role"
)

func AccountIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxAccountID).(string); ok {
		return v
	}
	return ""
}

func RoleFromContext(ctx context.Context) enums.AccountRole {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(enums.AccountRole); ok {
		return v
	}
	return ""
}

// ActorFromContext rebuilds the authenticated actor. ok is false when the
// request did not pass through Auth.
func ActorFromContext(ctx context.Context) (pkgAuth.Actor, bool) {
	id, err := uuid.Parse(AccountIDFromContext(ctx))
	if err != nil {
		return pkgAuth.Actor{}, false
	}
	role := RoleFromContext(ctx)
	if !role.IsValid() {
		return pkgAuth.Actor{}, false
	}
	return pkgAuth.Actor{ID: id, Role: role}, true
}

// WithActor injects the actor into the context.
func WithActor(ctx context.Context, actor pkgAuth.Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxAccountID, actor.ID.String())
	return context.WithValue(ctx, ctxRole, actor.Role)
}
