package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/starwars-catalog/internal/model"
)

// MemoryRepo is an in-process record store used when STORE_DRIVER=memory
// and by handler tests.  All access goes through one mutex; records are
// copied on the way in and out so callers never share state with the store.
type MemoryRepo struct {
	mu     sync.Mutex
	kind   model.Kind
	rows   map[uint64]*model.Record
	nextID uint64
	now    func() time.Time
}

// NewMemoryRepo returns an empty store for the given kind.
func NewMemoryRepo(kind model.Kind) *MemoryRepo {
	return &MemoryRepo{
		kind:   kind,
		rows:   make(map[uint64]*model.Record),
		nextID: 1,
		now:    time.Now,
	}
}

// Insert assigns the next id, stamps both timestamps and stores a copy.
func (m *MemoryRepo) Insert(_ context.Context, rec *model.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now().UTC()
	rec.ID = m.nextID
	m.nextID++
	rec.CreatedAt = now
	rec.UpdatedAt = now
	if !m.kind.HasReleaseDate {
		rec.ReleaseDate = nil
	}
	m.rows[rec.ID] = cloneRecord(rec)
	return nil
}

// Get returns a copy of the record or ErrNotFound.
func (m *MemoryRepo) Get(_ context.Context, id uint64) (*model.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneRecord(rec), nil
}

// List returns records ordered by id, optionally filtered by a
// case-insensitive substring of the name.
func (m *MemoryRepo) List(_ context.Context, filter string) ([]*model.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	needle := strings.ToLower(filter)
	out := make([]*model.Record, 0, len(m.rows))
	for _, rec := range m.rows {
		if needle != "" && !strings.Contains(strings.ToLower(rec.Name), needle) {
			continue
		}
		out = append(out, cloneRecord(rec))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Update applies the changes and refreshes UpdatedAt.
func (m *MemoryRepo) Update(_ context.Context, id uint64, ch model.Changes) (*model.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	if ch.IsFavorite != nil {
		rec.IsFavorite = *ch.IsFavorite
	}
	if ch.CustomName != nil {
		name := *ch.CustomName
		rec.CustomName = &name
	}
	now := m.now().UTC()
	if now.Before(rec.CreatedAt) {
		now = rec.CreatedAt
	}
	rec.UpdatedAt = now
	return cloneRecord(rec), nil
}

func cloneRecord(rec *model.Record) *model.Record {
	c := *rec
	if rec.ReleaseDate != nil {
		d := *rec.ReleaseDate
		c.ReleaseDate = &d
	}
	if rec.CustomName != nil {
		n := *rec.CustomName
		c.CustomName = &n
	}
	return &c
}
