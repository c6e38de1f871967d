package database

import (
	"context"
	"fmt"

	"github.com/Dias221467/Friend_Manager/internal/config"
	"github.com/Dias221467/Friend_Manager/internal/repository"
)

// Stores bundles the repositories of one storage backend.
type Stores struct {
	Users    repository.UserRepository
	Requests repository.FriendRequestRepository
	close    func(context.Context) error
}

// Close releases the backend's connections.
func (s *Stores) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}

// Open builds the repositories for cfg.StorageDriver.
func Open(ctx context.Context, cfg *config.Config) (*Stores, error) {
	switch cfg.StorageDriver {
	case config.DriverMongo:
		client, db, err := ConnectMongo(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return &Stores{
			Users:    repository.NewMongoUserRepository(db),
			Requests: repository.NewMongoFriendRequestRepository(db),
			close:    client.Disconnect,
		}, nil

	case config.DriverPostgres:
		db, err := ConnectPostgres(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sql.DB: %w", err)
		}
		return &Stores{
			Users:    repository.NewGormUserRepository(db),
			Requests: repository.NewGormFriendRequestRepository(db),
			close:    func(context.Context) error { return sqlDB.Close() },
		}, nil

	case config.DriverMemory:
		return &Stores{
			Users:    repository.NewMemoryUserRepository(),
			Requests: repository.NewMemoryFriendRequestRepository(),
		}, nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}
