// Package service holds the business rules shared by every catalog resource.
// A ResourceService is parameterised by a model.Kind; movies and planets run
// the same code against different stores.
package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/starwars-catalog/internal/metrics"
	"github.com/iliyamo/starwars-catalog/internal/model"
	"github.com/iliyamo/starwars-catalog/internal/queue"
)

// ResourceService validates input, applies create and favorite mutations and
// queries the store for one resource kind.
type ResourceService struct {
	kind   model.Kind
	store  Store
	events EventPublisher
	logger *zap.Logger
}

// NewResourceService wires a service for kind.  events may be nil, in which
// case no favorite events are published.
func NewResourceService(kind model.Kind, store Store, events EventPublisher, logger *zap.Logger) *ResourceService {
	if store == nil {
		panic("nil store passed to NewResourceService")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResourceService{
		kind:   kind,
		store:  store,
		events: events,
		logger: logger.With(zap.String("resource", kind.Name)),
	}
}

// Kind returns the descriptor the service was built for.
func (s *ResourceService) Kind() model.Kind {
	return s.kind
}

// Create validates the payload and inserts a new record.
func (s *ResourceService) Create(ctx context.Context, in CreateInput) (*model.Record, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.ReleaseDate = strings.TrimSpace(in.ReleaseDate)
	if err := validateCreate(s.kind, in); err != nil {
		return nil, err
	}

	rec := &model.Record{Name: in.Name, IsFavorite: in.IsFavorite.Value}
	if s.kind.HasReleaseDate {
		// Already checked by validateCreate.
		d, err := time.Parse(model.DateLayout, in.ReleaseDate)
		if err != nil {
			return nil, &ValidationError{Fields: map[string][]string{"release_date": {MsgDateFormat}}}
		}
		rec.ReleaseDate = &d
	}

	if err := s.store.Insert(ctx, rec); err != nil {
		return nil, err
	}
	metrics.ResourcesCreatedTotal.WithLabelValues(s.kind.Name).Inc()
	s.logger.Info("resource created", zap.Uint64("id", rec.ID), zap.String("name", rec.Name))
	return rec, nil
}

// List returns every record, or those whose name contains filter ignoring
// case.  Surrounding whitespace in filter is ignored.
func (s *ResourceService) List(ctx context.Context, filter string) ([]*model.Record, error) {
	return s.store.List(ctx, strings.TrimSpace(filter))
}

// Get returns one record or repository.ErrNotFound.
func (s *ResourceService) Get(ctx context.Context, id uint64) (*model.Record, error) {
	return s.store.Get(ctx, id)
}

// MarkFavorite flags the record as favorite and, when a non-empty custom
// name is supplied, stores it.  Omitting the custom name never clears an
// existing one.  The record must exist before the payload is validated.
func (s *ResourceService) MarkFavorite(ctx context.Context, id uint64, in FavoriteInput) (*model.Record, error) {
	if _, err := s.store.Get(ctx, id); err != nil {
		return nil, err
	}

	in.CustomName = strings.TrimSpace(in.CustomName)
	if err := validateFavorite(in); err != nil {
		return nil, err
	}

	fav := true
	ch := model.Changes{IsFavorite: &fav}
	if in.CustomName != "" {
		ch.CustomName = &in.CustomName
	}
	rec, err := s.store.Update(ctx, id, ch)
	if err != nil {
		return nil, err
	}

	metrics.FavoritesMarkedTotal.WithLabelValues(s.kind.Name).Inc()
	s.logger.Info("favorite marked", zap.Uint64("id", rec.ID), zap.Bool("custom_name_set", ch.CustomName != nil))
	s.publishFavorite(ctx, rec)
	return rec, nil
}

// publishFavorite never fails the request; broker trouble is logged.
func (s *ResourceService) publishFavorite(ctx context.Context, rec *model.Record) {
	if s.events == nil {
		return
	}
	ev := queue.FavoriteMarkedEvent{
		Resource:   s.kind.Name,
		ID:         rec.ID,
		Name:       rec.Name,
		CustomName: rec.CustomName,
		MarkedAt:   rec.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if err := s.events.PublishFavoriteMarked(ctx, ev); err != nil {
		metrics.EventPublishErrorsTotal.Inc()
		s.logger.Warn("favorite event not published", zap.Uint64("id", rec.ID), zap.Error(err))
	}
}
