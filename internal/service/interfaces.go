package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"github.com/iliyamo/starwars-catalog/internal/model"
	"github.com/iliyamo/starwars-catalog/internal/queue"
)

// Store is the record store a ResourceService works against.  Both
// repository.ResourceRepo and repository.MemoryRepo satisfy it.
type Store interface {
	Insert(ctx context.Context, rec *model.Record) error
	Get(ctx context.Context, id uint64) (*model.Record, error)
	List(ctx context.Context, filter string) ([]*model.Record, error)
	Update(ctx context.Context, id uint64, ch model.Changes) (*model.Record, error)
}

// EventPublisher delivers domain events to the message broker.
type EventPublisher interface {
	PublishFavoriteMarked(ctx context.Context, ev queue.FavoriteMarkedEvent) error
}
