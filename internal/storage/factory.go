package storage

import (
	"context"
	"fmt"

	"github.com/joewaine/best-self-ai/internal"
	"github.com/joewaine/best-self-ai/internal/config"
)

func NewStore(ctx context.Context, cfg *config.Config, logger internal.Logger) (Store, error) {
	switch cfg.StorageBackend {
	case "postgres":
		return NewPostgresStore(ctx, cfg.PostgresDSN, logger)
	case "sqlite":
		return NewSQLiteStore(cfg.SQLitePath, logger)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
