package cmd

import (
	"context"
	"fmt"

	"github.com/handlevet/handlevet/internal/config"
	"github.com/handlevet/handlevet/internal/core/store"
)

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(nil)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func openStore(ctx context.Context, cfg *config.Config) (*store.Store, error) {
	db, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}
