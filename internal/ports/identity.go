package ports

import (
	"context"
	"errors"
)

// ErrNotLoggedIn is returned when no authenticated user is attached to the request.
var ErrNotLoggedIn = errors.New("not logged in")

// User is the authenticated player.
type User struct {
	ID          string
	Username    string
	DisplayName string
	AvatarURL   string
	Color       string
}

// UserUpdate carries partial profile changes; nil fields are untouched.
type UserUpdate struct {
	DisplayName *string
	AvatarURL   *string
	Color       *string
}

// IdentityPort resolves and updates the current user.
type IdentityPort interface {
	// CurrentUser returns the caller or ErrNotLoggedIn.
	CurrentUser(ctx context.Context) (User, error)
	// UpdateUser applies a partial update to the caller's profile.
	UpdateUser(ctx context.Context, update UserUpdate) (User, error)
}
