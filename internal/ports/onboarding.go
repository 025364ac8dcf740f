package ports

import "context"

// Profile is the player-facing identity assigned on first login.
type Profile struct {
	DisplayName string
	Color       string
}

// OnboardingPort initialises a profile at most once per user.
type OnboardingPort interface {
	// InitProfileOnce applies profile and records a marker atomically.
	// Returns applied=false when the user was already onboarded.
	InitProfileOnce(ctx context.Context, userID string, profile Profile) (bool, error)
}
