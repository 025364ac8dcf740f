package nakama

import (
	"context"
	"encoding/json"
	"fmt"

	"buttonblitz/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// NakamaAccountAdapter implements ports.AccountPort using Nakama's account API.
type NakamaAccountAdapter struct {
	nk runtime.NakamaModule
}

// NewNakamaAccountAdapter creates a new account adapter.
func NewNakamaAccountAdapter(nk runtime.NakamaModule) *NakamaAccountAdapter {
	return &NakamaAccountAdapter{nk: nk}
}

// UpdateProfile updates the account in Nakama. Nakama replaces metadata
// wholesale, so non-nil metadata is merged over the stored object first.
func (a *NakamaAccountAdapter) UpdateProfile(ctx context.Context, userID, username, displayName, avatarURL string, metadata map[string]interface{}) error {
	if metadata != nil {
		merged, err := a.mergedMetadata(ctx, userID, metadata)
		if err != nil {
			return err
		}
		metadata = merged
	}
	return a.nk.AccountUpdateId(ctx, userID, username, metadata, displayName, "", "", "", avatarURL)
}

func (a *NakamaAccountAdapter) mergedMetadata(ctx context.Context, userID string, changes map[string]interface{}) (map[string]interface{}, error) {
	account, err := a.nk.AccountGetId(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read account %s: %w", userID, err)
	}
	current := map[string]interface{}{}
	if raw := account.GetUser().GetMetadata(); raw != "" {
		if err := json.Unmarshal([]byte(raw), &current); err != nil {
			return nil, fmt.Errorf("failed to parse metadata for %s: %w", userID, err)
		}
	}
	for k, v := range changes {
		current[k] = v
	}
	return current, nil
}

var _ ports.AccountPort = (*NakamaAccountAdapter)(nil)
