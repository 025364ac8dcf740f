package onboarding

import (
	"context"
	"errors"
	"math/rand"
	"regexp"
	"testing"

	"buttonblitz/internal/domain"
	"buttonblitz/internal/ports"
)

type fakeAccountPort struct {
	updateErr error
	usernames []string
}

func (f *fakeAccountPort) UpdateProfile(ctx context.Context, userID, username, displayName, avatarURL string, metadata map[string]interface{}) error {
	f.usernames = append(f.usernames, username)
	return f.updateErr
}

type fakeOnboardingPort struct {
	updateErr error
	calls     []ports.Profile
	applied   bool
}

func (f *fakeOnboardingPort) InitProfileOnce(ctx context.Context, userID string, profile ports.Profile) (bool, error) {
	f.calls = append(f.calls, profile)
	if f.updateErr != nil {
		return false, f.updateErr
	}
	return f.applied, nil
}

var friendlyName = regexp.MustCompile(`^[A-Z][a-z]+[A-Z][a-z]+\d{4}$`)

func TestOnboardNewUser_AssignsProfile(t *testing.T) {
	accounts := &fakeAccountPort{}
	profiles := &fakeOnboardingPort{applied: true}
	service := NewService(accounts, profiles, rand.New(rand.NewSource(1)))

	result, err := service.OnboardNewUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("OnboardNewUser returned error: %v", err)
	}
	if !result.Initialized {
		t.Fatal("Expected profile to be marked as initialized")
	}
	if len(profiles.calls) != 1 {
		t.Fatalf("Expected 1 profile init call, got %d", len(profiles.calls))
	}
	p := profiles.calls[0]
	if !friendlyName.MatchString(p.DisplayName) {
		t.Fatalf("Unexpected display name %q", p.DisplayName)
	}
	found := false
	for _, c := range domain.PlayerColors {
		found = found || c == p.Color
	}
	if !found {
		t.Fatalf("Colour %q is not a player colour", p.Color)
	}
	if len(accounts.usernames) != 1 || accounts.usernames[0] == "" {
		t.Fatalf("Expected username update, got %v", accounts.usernames)
	}
}

func TestOnboardNewUser_AccountUpdateFailureStillInitializes(t *testing.T) {
	profiles := &fakeOnboardingPort{applied: true}
	service := NewService(&fakeAccountPort{updateErr: errors.New("update failed")}, profiles, rand.New(rand.NewSource(1)))

	result, err := service.OnboardNewUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("OnboardNewUser returned error: %v", err)
	}
	if result.ProfileUpdateErr == nil {
		t.Fatal("Expected profile update error to be captured")
	}
	if !result.Initialized {
		t.Fatal("Expected profile init to still run")
	}
}

func TestOnboardNewUser_AlreadyOnboarded(t *testing.T) {
	service := NewService(&fakeAccountPort{}, &fakeOnboardingPort{applied: false}, rand.New(rand.NewSource(1)))
	result, err := service.OnboardNewUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("OnboardNewUser returned error: %v", err)
	}
	if result.Initialized {
		t.Fatal("Expected Initialized=false for a returning user")
	}
}

func TestOnboardNewUser_InitFailure(t *testing.T) {
	service := NewService(&fakeAccountPort{}, &fakeOnboardingPort{updateErr: errors.New("storage down")}, rand.New(rand.NewSource(1)))
	if _, err := service.OnboardNewUser(context.Background(), "user-1"); err == nil {
		t.Fatal("Expected error when profile init fails")
	}
}

func TestOnboardNewUser_NotConfigured(t *testing.T) {
	service := NewService(nil, nil, nil)
	if _, err := service.OnboardNewUser(context.Background(), "user-1"); err == nil {
		t.Fatal("Expected error for unconfigured service")
	}
}
