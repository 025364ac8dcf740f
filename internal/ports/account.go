package ports

import "context"

// AccountPort defines the interface for updating account profiles.
type AccountPort interface {
	// UpdateProfile updates account profile fields for the given user.
	// Empty strings leave a field unchanged; metadata is merged when non-nil.
	UpdateProfile(ctx context.Context, userID, username, displayName, avatarURL string, metadata map[string]interface{}) error
}
