package nakama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"buttonblitz/internal/ports"

	jwt "github.com/form3tech-oss/jwt-go"
	"github.com/heroiclabs/nakama-common/runtime"
)

// NakamaIdentityAdapter resolves the caller from the runtime context.
type NakamaIdentityAdapter struct {
	nk       runtime.NakamaModule
	accounts *NakamaAccountAdapter
}

func NewNakamaIdentityAdapter(nk runtime.NakamaModule) *NakamaIdentityAdapter {
	return &NakamaIdentityAdapter{nk: nk, accounts: NewNakamaAccountAdapter(nk)}
}

func (a *NakamaIdentityAdapter) CurrentUser(ctx context.Context) (ports.User, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if userID == "" {
		return ports.User{}, ports.ErrNotLoggedIn
	}
	return a.load(ctx, userID)
}

func (a *NakamaIdentityAdapter) load(ctx context.Context, userID string) (ports.User, error) {
	account, err := a.nk.AccountGetId(ctx, userID)
	if err != nil {
		return ports.User{}, fmt.Errorf("failed to load account %s: %w", userID, err)
	}
	u := account.GetUser()
	user := ports.User{
		ID:          userID,
		Username:    u.GetUsername(),
		DisplayName: u.GetDisplayName(),
		AvatarURL:   u.GetAvatarUrl(),
	}
	if user.DisplayName == "" {
		user.DisplayName = user.Username
	}
	if raw := u.GetMetadata(); raw != "" {
		var meta map[string]interface{}
		if json.Unmarshal([]byte(raw), &meta) == nil {
			user.Color, _ = meta[metadataColor].(string)
		}
	}
	return user, nil
}

// UpdateUser applies the non-nil fields and returns the refreshed user.
func (a *NakamaIdentityAdapter) UpdateUser(ctx context.Context, update ports.UserUpdate) (ports.User, error) {
	user, err := a.CurrentUser(ctx)
	if err != nil {
		return ports.User{}, err
	}
	var displayName, avatarURL string
	if update.DisplayName != nil {
		displayName = *update.DisplayName
	}
	if update.AvatarURL != nil {
		avatarURL = *update.AvatarURL
	}
	var metadata map[string]interface{}
	if update.Color != nil {
		metadata = map[string]interface{}{metadataColor: *update.Color}
	}
	if displayName == "" && avatarURL == "" && metadata == nil {
		return user, nil
	}
	if err := a.accounts.UpdateProfile(ctx, user.ID, "", displayName, avatarURL, metadata); err != nil {
		return ports.User{}, err
	}
	return a.load(ctx, user.ID)
}

// userIDFromToken reads the uid claim of a session token this server just
// issued. The signature is not checked; the runtime does not expose the key.
func userIDFromToken(token string, now time.Time) (string, error) {
	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return "", fmt.Errorf("failed to parse session token: %w", err)
	}
	if !claims.VerifyExpiresAt(now.Unix(), false) {
		return "", errors.New("session token expired")
	}
	uid, ok := claims["uid"].(string)
	if !ok || uid == "" {
		return "", errors.New("token claims missing uid")
	}
	return uid, nil
}

var _ ports.IdentityPort = (*NakamaIdentityAdapter)(nil)
