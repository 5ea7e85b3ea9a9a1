package database

import (
	"context"
	"fmt"

	"book-inventory/internal/config"
	"book-inventory/internal/repository"

	"go.uber.org/zap"
)

// OpenBookRepository connects to the store named by cfg.Driver and returns
// a repository over it. The repository owns the connection; Close releases it.
func OpenBookRepository(ctx context.Context, cfg config.StoreConfig, logger *zap.Logger) (repository.BookRepository, error) {
	logger.Info("Opening book store", zap.String("driver", cfg.Driver))

	switch cfg.Driver {
	case config.DriverMongo:
		client, err := ConnectMongo(ctx, cfg.MongoURI, logger)
		if err != nil {
			return nil, err
		}
		repo, err := repository.NewMongoBookRepository(ctx, client, cfg.MongoDatabase)
		if err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		return repo, nil

	case config.DriverPostgres:
		db, err := ConnectPostgres(ctx, cfg.PostgresURL, logger)
		if err != nil {
			return nil, err
		}
		if err := RunMigrations(db, cfg.MigrationsPath, logger); err != nil {
			db.Close()
			return nil, err
		}
		return repository.NewPostgresBookRepository(db), nil

	case config.DriverBadger:
		db, err := OpenBadger(BadgerConfig{Path: cfg.BadgerPath, SyncWrites: true, Logger: logger})
		if err != nil {
			return nil, err
		}
		repo, err := repository.NewBadgerBookRepository(db)
		if err != nil {
			db.Close()
			return nil, err
		}
		return repo, nil

	case config.DriverMemory:
		return repository.NewMemoryBookRepository()

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
