// Package store opens the configured backend and hands out its repositories.
package store

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"bandroom/internal/config"
	"bandroom/internal/db"
	"bandroom/internal/repository"
)

// Store bundles the repositories of one backend with its health check and teardown.
type Store struct {
	Rooms repository.RoomRepository
	Users repository.UserRepository
	ping  func(ctx context.Context) error
	close func()
}

// Ping checks the backend is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.ping(ctx)
}

// Close releases the backend connection.
func (s *Store) Close() {
	s.close()
}

// Open connects to cfg.StoreDriver, prepares its schema or indexes and
// returns the repositories over it.
func Open(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Store, error) {
	switch cfg.StoreDriver {
	case config.StoreMongo:
		client, database, err := db.NewMongo(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			return nil, err
		}
		if err := db.PrepareMongo(ctx, database, cfg.ResetDB, log); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		return &Store{
			Rooms: repository.NewMongoRoomRepository(database),
			Users: repository.NewMongoUserRepository(database),
			ping: func(ctx context.Context) error {
				return client.Ping(ctx, nil)
			},
			close: func() {
				if err := client.Disconnect(context.Background()); err != nil {
					log.Warn("disconnect mongo", "error", err)
				}
			},
		}, nil

	case config.StoreMySQL:
		gormDB, err := db.NewMySQL(cfg.MySQLDSN)
		if err != nil {
			return nil, err
		}
		return openGorm(gormDB, cfg, log)

	case config.StoreSQLite:
		gormDB, err := db.NewSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return openGorm(gormDB, cfg, log)

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

func openGorm(gormDB *gorm.DB, cfg *config.Config, log *slog.Logger) (*Store, error) {
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("database handle: %w", err)
	}
	if err := db.Migrate(gormDB, cfg.ResetDB, log); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return &Store{
		Rooms: repository.NewRoomRepository(gormDB),
		Users: repository.NewUserRepository(gormDB),
		ping:  sqlDB.PingContext,
		close: func() {
			if err := sqlDB.Close(); err != nil {
				log.Warn("close database", "error", err)
			}
		},
	}, nil
}
