package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/zagros-analytics/suitability-cli/internal/config"
)

// Open builds a Store from configuration and runs migrations.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	var s Store
	switch cfg.Driver {
	case "", "sqlite":
		sqlite, err := NewSQLite(cfg.Path)
		if err != nil {
			return nil, err
		}
		s = sqlite
	case "postgres":
		pg, err := NewPostgres(ctx, cfg.DatabaseURL, nil)
		if err != nil {
			return nil, err
		}
		s = pg
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}

	if err := s.Migrate(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}
