package database

import (
	"context"
	"fmt"

	"github.com/TristanBrian/MamaCare/internal/config"
	"github.com/TristanBrian/MamaCare/internal/repository"
	"github.com/TristanBrian/MamaCare/internal/repository/levelstore"
)

// OpenStore opens the Record Store selected by cfg.Store.Driver.
func OpenStore(ctx context.Context, cfg *config.AppConfig) (*repository.Set, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		pool, err := NewPostgresPool(ctx, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		return repository.NewPostgresSet(pool), nil
	case config.StoreDriverLevelDB:
		return levelstore.Open(cfg.Store.LevelDBPath)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
