// Package app wires stores, services and handlers for every resource kind.
// The server and the seed command share it so both talk to the same store
// configuration.
package app

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/iliyamo/starwars-catalog/internal/config"
	"github.com/iliyamo/starwars-catalog/internal/database"
	"github.com/iliyamo/starwars-catalog/internal/model"
	"github.com/iliyamo/starwars-catalog/internal/repository"
	"github.com/iliyamo/starwars-catalog/internal/service"
)

// Services holds one ResourceService per kind.
type Services struct {
	Movies  *service.ResourceService
	Planets *service.ResourceService
}

// All returns the services in route registration order.
func (s Services) All() []*service.ResourceService {
	return []*service.ResourceService{s.Movies, s.Planets}
}

// OpenDB connects to MySQL and creates missing tables.  It returns nil for
// the memory driver.
func OpenDB(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	if cfg.StoreDriver != config.StoreMySQL {
		return nil, nil
	}
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := database.EnsureSchema(ctx, db, model.Kinds...); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// NewStore returns the MySQL store for kind, or an in-memory one when db
// is nil.
func NewStore(db *sqlx.DB, kind model.Kind) service.Store {
	if db == nil {
		return repository.NewMemoryRepo(kind)
	}
	return repository.NewResourceRepo(db, kind)
}

// NewServices builds the services for both kinds.  events may be nil.
func NewServices(db *sqlx.DB, events service.EventPublisher, logger *zap.Logger) Services {
	return Services{
		Movies:  service.NewResourceService(model.Movie, NewStore(db, model.Movie), events, logger),
		Planets: service.NewResourceService(model.Planet, NewStore(db, model.Planet), events, logger),
	}
}
