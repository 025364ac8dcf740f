package bot

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
)

// IDPrefix marks seat ids that belong to bots.
const IDPrefix = "bot-"

type BotIdentity struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Difficulty  string `json:"difficulty"` // "good", "smart", "god"
}

// Level returns the identity's level, LevelSmart when unset or unknown.
func (b BotIdentity) Level() Level {
	if l, err := ParseLevel(b.Difficulty); err == nil {
		return l
	}
	return LevelSmart
}

var (
	botIdentities []BotIdentity
	botIDMap      map[string]BotIdentity
	loadOnce      sync.Once
	loadErr       error
)

// LoadIdentities loads the bot profiles from the given path.
func LoadIdentities(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read bot identities: %w", err)
			return
		}

		var ids []BotIdentity
		if err := json.Unmarshal(data, &ids); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal bot identities: %w", err)
			return
		}

		botIDMap = make(map[string]BotIdentity, len(ids))
		for _, identity := range ids {
			if !strings.HasPrefix(identity.UserID, IDPrefix) {
				identity.UserID = IDPrefix + identity.UserID
			}
			botIdentities = append(botIdentities, identity)
			botIDMap[identity.UserID] = identity
		}
	})
	return loadErr
}

// GetBotIdentity returns an identity for a bot by index (mod pool size).
func GetBotIdentity(index int) BotIdentity {
	if len(botIdentities) == 0 {
		return BotIdentity{
			UserID:      fmt.Sprintf("%s%d", IDPrefix, index),
			DisplayName: fmt.Sprintf("Bot %d", index+1),
		}
	}
	return botIdentities[index%len(botIdentities)]
}

// GetBotDisplayName returns the display name for a bot ID, or an empty string if not a bot.
func GetBotDisplayName(userID string) string {
	if identity, ok := botIDMap[userID]; ok {
		return identity.DisplayName
	}
	return ""
}

// IsBot reports whether the given id belongs to a bot seat.
func IsBot(userID string) bool {
	return strings.HasPrefix(userID, IDPrefix)
}
