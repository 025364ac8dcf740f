package onboarding

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"buttonblitz/internal/domain"
	"buttonblitz/internal/ports"
)

// Result captures non-fatal onboarding outcomes.
type Result struct {
	// ProfileUpdateErr is set when the username update failed but onboarding continued.
	ProfileUpdateErr error
	// Initialized is false when the user had already been onboarded.
	Initialized bool
	Profile     ports.Profile
}

// Service handles post-auth onboarding for new users.
type Service struct {
	accounts ports.AccountPort
	profiles ports.OnboardingPort
	rng      *rand.Rand
}

// NewService constructs an onboarding service with required ports.
// accounts/profiles must be non-nil; rng may be nil to use a time-seeded default.
func NewService(accounts ports.AccountPort, profiles ports.OnboardingPort, rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{
		accounts: accounts,
		profiles: profiles,
		rng:      rng,
	}
}

// OnboardNewUser gives a new account a friendly name and a player colour.
// The username change is best-effort; the display profile is applied at most once.
func (s *Service) OnboardNewUser(ctx context.Context, userID string) (Result, error) {
	if s.accounts == nil || s.profiles == nil {
		return Result{}, fmt.Errorf("onboarding service not configured")
	}

	name := s.generateFriendlyName()
	result := Result{
		Profile: ports.Profile{
			DisplayName: name,
			Color:       domain.PlayerColors[s.rng.Intn(len(domain.PlayerColors))],
		},
	}
	if err := s.accounts.UpdateProfile(ctx, userID, strings.ToLower(name), "", "", nil); err != nil {
		result.ProfileUpdateErr = err
	}

	applied, err := s.profiles.InitProfileOnce(ctx, userID, result.Profile)
	if err != nil {
		return result, fmt.Errorf("failed to initialise profile: %w", err)
	}
	result.Initialized = applied
	return result, nil
}

func (s *Service) generateFriendlyName() string {
	adjectives := []string{"Happy", "Speedy", "Brave", "Clever", "Swift", "Zippy", "Mighty", "Witty", "Bouncy", "Wild"}
	nouns := []string{"Button", "Tiger", "Rocket", "Dolphin", "Comet", "Otter", "Falcon", "Blitz", "Fox", "Spark"}

	adj := adjectives[s.rng.Intn(len(adjectives))]
	noun := nouns[s.rng.Intn(len(nouns))]
	num := s.rng.Intn(9000) + 1000

	return fmt.Sprintf("%s%s%d", adj, noun, num)
}
