package services

import (
	"context"
	"fmt"

	"github.com/ninja813/NFT-marketplace/internal/config"
	"github.com/ninja813/NFT-marketplace/internal/store"
	"github.com/ninja813/NFT-marketplace/internal/store/migrations"
)

// Backend is an opened storage backend
type Backend struct {
	Stores
	Truncate func(ctx context.Context) error
	Close    func() error
}

// OpenBackend opens the configured driver. With AutoMigrate set the embedded
// schema is applied to Postgres before use.
func OpenBackend(ctx context.Context, cfg config.DatabaseConfig) (*Backend, error) {
	if cfg.Driver == "memory" {
		m := store.NewMemory()
		return &Backend{
			Stores:   MemoryStores(m),
			Truncate: m.Truncate,
			Close:    func() error { return nil },
		}, nil
	}

	db, err := store.NewDatabase(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.AutoMigrate {
		if err := migrations.Apply(ctx, db.GetDB().DB); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return &Backend{
		Stores:   PostgresStores(db),
		Truncate: db.Truncate,
		Close:    db.Close,
	}, nil
}
