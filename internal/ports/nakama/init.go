package nakama

import (
	"context"
	"database/sql"

	"buttonblitz/internal/bot"
	"buttonblitz/internal/config"

	"github.com/heroiclabs/nakama-common/runtime"
)

const (
	gameConfigPath    = "data/game_config.json"
	botIdentitiesPath = "data/bot_identities.json"
)

// InitModule wires RPCs, hooks and match handlers for Nakama runtime.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	if err := config.LoadGameConfig(gameConfigPath); err != nil {
		logger.Error("InitModule: %v", err)
		return err
	}
	if err := bot.LoadIdentities(botIdentitiesPath); err != nil {
		// Bots fall back to generated names.
		logger.Warn("InitModule: %v", err)
	}

	if err := RegisterRPCs(initializer); err != nil {
		return err
	}
	if err := initializer.RegisterAfterAuthenticateDevice(AfterAuthenticateDevice); err != nil {
		return err
	}
	if err := initializer.RegisterMatch(MatchNameLocal, NewMatch); err != nil {
		return err
	}

	logger.Info("Button Blitz Go module loaded.")
	return nil
}
