package ports

import (
	"context"

	"buttonblitz/internal/domain"
)

// SettingsStore is the process-local settings record. Get returns nil
// when nothing has been saved yet.
type SettingsStore interface {
	Get(ctx context.Context) (*domain.Settings, error)
	Set(ctx context.Context, settings domain.Settings) error
}
