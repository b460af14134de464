// Package storage picks the todo backend for the life of the process.
package storage

import (
	"context"
	"fmt"

	"github.com/dmehra2102/todorpc/internal/domain"
	"github.com/dmehra2102/todorpc/internal/infrastructure/config"
	"github.com/dmehra2102/todorpc/internal/infrastructure/memory"
	"github.com/dmehra2102/todorpc/internal/infrastructure/sqlstore"
	"go.uber.org/zap"
)

// Open builds the backend named by cfg.Backend. For relational backends it
// connects and applies pending migrations before returning. The returned
// close func releases the connection pool.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (domain.Repository, func() error, error) {
	if cfg.Backend == config.StorageMemory {
		logger.Info("using in-memory storage")
		return memory.NewRepository(), func() error { return nil }, nil
	}

	dialect, err := sqlstore.ParseDialect(cfg.Backend)
	if err != nil {
		return nil, nil, err
	}

	db, err := sqlstore.Open(ctx, dialect, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := sqlstore.Migrate(db, dialect, cfg.URL, cfg.MigrationsPath, logger); err != nil {
		db.Close()
		return nil, nil, err
	}

	logger.Info("using sql storage", zap.String("dialect", string(dialect)))
	return sqlstore.NewRepository(db, dialect, cfg.Timeout), db.Close, nil
}
