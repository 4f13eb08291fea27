package shared

import (
	"context"

	"appointer/shared/constant"
)

// Actor is the authenticated caller as placed in the request context by the
// auth middleware.
type Actor struct {
	UserID string
	Email  string
	Role   string
}

func (a Actor) IsAdmin() bool {
	return a.Role == constant.RoleAdmin
}

func (a Actor) IsGuest() bool {
	return a.UserID == "" || a.UserID == constant.ContextGuest
}

// Owns reports whether the actor may act on a record owned by ownerID.
// Administrators own everything.
func (a Actor) Owns(ownerID string) bool {
	return a.IsAdmin() || (!a.IsGuest() && a.UserID == ownerID)
}

// Name is the value written to created_by and modified_by.
func (a Actor) Name() string {
	if a.IsGuest() {
		return constant.ContextGuest
	}

	return a.UserID
}

func WithActor(ctx context.Context, actor Actor) context.Context {
	ctx = context.WithValue(ctx, constant.ContextKeyUserID, actor.UserID)
	ctx = context.WithValue(ctx, constant.ContextKeyUserEmail, actor.Email)

	return context.WithValue(ctx, constant.ContextKeyUserRole, actor.Role)
}

func ActorFromContext(ctx context.Context) Actor {
	userID, _ := ctx.Value(constant.ContextKeyUserID).(string)
	email, _ := ctx.Value(constant.ContextKeyUserEmail).(string)
	role, _ := ctx.Value(constant.ContextKeyUserRole).(string)

	return Actor{UserID: userID, Email: email, Role: role}
}
