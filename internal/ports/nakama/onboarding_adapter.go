package nakama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"buttonblitz/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

const (
	onboardingCollection = "onboarding"
	onboardingKey        = "profile_v1"
	metadataColor        = "color"
)

// NakamaOnboardingAdapter initialises a profile using Nakama storage + account updates.
type NakamaOnboardingAdapter struct {
	nk runtime.NakamaModule
}

// NewNakamaOnboardingAdapter creates a new onboarding adapter.
func NewNakamaOnboardingAdapter(nk runtime.NakamaModule) *NakamaOnboardingAdapter {
	return &NakamaOnboardingAdapter{nk: nk}
}

// InitProfileOnce applies the profile and records a marker atomically.
func (a *NakamaOnboardingAdapter) InitProfileOnce(ctx context.Context, userID string, profile ports.Profile) (bool, error) {
	if userID == "" {
		return false, fmt.Errorf("userID is required")
	}
	if profile.DisplayName == "" || profile.Color == "" {
		return false, fmt.Errorf("display name and color are required")
	}

	marker := map[string]interface{}{
		"display_name":   profile.DisplayName,
		"color":          profile.Color,
		"initialized_at": time.Now().UTC().Format(time.RFC3339),
	}
	value, err := json.Marshal(marker)
	if err != nil {
		return false, fmt.Errorf("failed to marshal onboarding marker: %w", err)
	}

	storageWrites := []*runtime.StorageWrite{
		{
			Collection:      onboardingCollection,
			Key:             onboardingKey,
			UserID:          userID,
			Value:           string(value),
			Version:         "*",
			PermissionRead:  runtime.STORAGE_PERMISSION_NO_READ,
			PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
		},
	}

	accountUpdates := []*runtime.AccountUpdate{
		{
			UserID:      userID,
			DisplayName: profile.DisplayName,
			Metadata:    map[string]interface{}{metadataColor: profile.Color},
		},
	}

	_, _, err = a.nk.MultiUpdate(ctx, accountUpdates, storageWrites, nil, nil, false)
	if err != nil {
		if errors.Is(err, runtime.ErrStorageRejectedVersion) {
			return false, nil
		}
		return false, fmt.Errorf("failed to initialise profile: %w", err)
	}

	return true, nil
}

var _ ports.OnboardingPort = (*NakamaOnboardingAdapter)(nil)
