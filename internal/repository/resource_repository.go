// Package repository contains data access logic separated from HTTP handlers.
// This file defines the MySQL record store shared by every resource kind.
// One ResourceRepo serves one table; the kind descriptor decides whether the
// release_date column is part of the statements.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/starwars-catalog/internal/model"
)

// ResourceRepo encapsulates all database queries for one resource table.
// It depends on a sqlx.DB connection which should be configured elsewhere.
type ResourceRepo struct {
	db   *sqlx.DB
	kind model.Kind
	now  func() time.Time
}

// NewResourceRepo constructs a ResourceRepo for the given kind.
func NewResourceRepo(db *sqlx.DB, kind model.Kind) *ResourceRepo {
	return &ResourceRepo{db: db, kind: kind, now: time.Now}
}

// columns returns the select list for the kind.  Tables without a
// release_date column still yield one so that scans stay uniform.
func (r *ResourceRepo) columns() string {
	date := "NULL AS release_date"
	if r.kind.HasReleaseDate {
		date = "release_date"
	}
	return "id, name, " + date + ", is_favorite, custom_name, created_at, updated_at"
}

// stamp returns the current time at the precision DATETIME(6) keeps.
func (r *ResourceRepo) stamp() time.Time {
	return r.now().UTC().Truncate(time.Microsecond)
}

// Insert stores a new record.  On success the record's ID and timestamps
// are populated from a follow-up SELECT so callers receive the row exactly
// as persisted.
func (r *ResourceRepo) Insert(ctx context.Context, rec *model.Record) error {
	now := r.stamp()
	cols := []string{"name", "is_favorite", "custom_name", "created_at", "updated_at"}
	args := []any{rec.Name, rec.IsFavorite, rec.CustomName, now, now}
	if r.kind.HasReleaseDate {
		cols = append(cols, "release_date")
		args = append(args, rec.ReleaseDate)
	}
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		r.kind.Table, strings.Join(cols, ", "), placeholders(len(cols)))

	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("insert %s: %w", r.kind.Name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}

	stored, err := r.get(ctx, r.db, uint64(id))
	if err != nil {
		return err
	}
	*rec = *stored
	return nil
}

// Get fetches a record by id.  It returns ErrNotFound if no row exists.
func (r *ResourceRepo) Get(ctx context.Context, id uint64) (*model.Record, error) {
	return r.get(ctx, r.db, id)
}

func (r *ResourceRepo) get(ctx context.Context, q sqlx.QueryerContext, id uint64) (*model.Record, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ?", r.columns(), r.kind.Table)
	var rec model.Record
	if err := sqlx.GetContext(ctx, q, &rec, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// List returns all records ordered by id.  A non-empty filter keeps only
// the rows whose name contains it, ignoring case.
func (r *ResourceRepo) List(ctx context.Context, filter string) ([]*model.Record, error) {
	query := fmt.Sprintf("SELECT %s FROM %s", r.columns(), r.kind.Table)
	var args []any
	if filter != "" {
		query += ` WHERE LOWER(name) LIKE ?`
		args = append(args, "%"+escapeLike(strings.ToLower(filter))+"%")
	}
	query += " ORDER BY id"

	out := []*model.Record{}
	if err := sqlx.SelectContext(ctx, r.db, &out, query, args...); err != nil {
		return nil, err
	}
	return out, nil
}

// Update overwrites the named fields and refreshes updated_at.  The row is
// locked with SELECT ... FOR UPDATE for the duration of the transaction so
// concurrent updates of the same id serialize.  ErrNotFound is returned when
// the id does not exist.
func (r *ResourceRepo) Update(ctx context.Context, id uint64, ch model.Changes) (rec *model.Record, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
		if err != nil {
			rec = nil
		}
	}()

	var locked uint64
	lockQ := fmt.Sprintf("SELECT id FROM %s WHERE id = ? FOR UPDATE", r.kind.Table)
	if err = tx.GetContext(ctx, &locked, lockQ, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	sets := []string{}
	args := []any{}
	if ch.IsFavorite != nil {
		sets = append(sets, "is_favorite = ?")
		args = append(args, *ch.IsFavorite)
	}
	if ch.CustomName != nil {
		sets = append(sets, "custom_name = ?")
		args = append(args, *ch.CustomName)
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, r.stamp(), id)

	updQ := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", r.kind.Table, strings.Join(sets, ", "))
	if _, err = tx.ExecContext(ctx, updQ, args...); err != nil {
		return nil, fmt.Errorf("update %s %d: %w", r.kind.Name, id, err)
	}

	rec, err = r.get(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// escapeLike escapes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
