// Package dbstore implements the storage contract on MySQL. Place↔Amenity
// links live in the place_amenity join table and are exposed through
// storage.AmenityLinker.
package dbstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/iliyamo/rental-api/internal/database"
	"github.com/iliyamo/rental-api/internal/model"
	"github.com/iliyamo/rental-api/internal/storage"
)

// Store wraps a MySQL pool. Entities passed to New are held in memory until
// Save upserts them in a single transaction.
type Store struct {
	db *sql.DB

	mu      sync.Mutex
	pending map[string]model.Entity
}

var (
	_ storage.Storage       = (*Store)(nil)
	_ storage.Filterer      = (*Store)(nil)
	_ storage.AmenityLinker = (*Store)(nil)
)

// New constructs a Store on an open pool. It does not touch the schema;
// call Reload for that.
func New(db *sql.DB) *Store {
	return &Store{db: db, pending: map[string]model.Entity{}}
}

func lookup(kind model.Kind) (table, error) {
	t, ok := tables[kind]
	if !ok {
		return table{}, fmt.Errorf("%w: %s", storage.ErrUnknownKind, kind)
	}
	return t, nil
}

func pendingKey(e model.Entity) string {
	return string(e.Kind()) + "." + e.Base().ID
}

func (s *Store) Get(ctx context.Context, kind model.Kind, id string) (model.Entity, error) {
	t, err := lookup(kind)
	if err != nil {
		return nil, err
	}
	e := model.New(kind)
	if err := s.db.QueryRowContext(ctx, t.selectSQL()+" WHERE id = ?", id).Scan(t.dest(e)...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s %s", storage.ErrNotFound, kind, id)
		}
		return nil, err
	}
	return e, nil
}

func (s *Store) All(ctx context.Context, kind model.Kind) (map[string]model.Entity, error) {
	t, err := lookup(kind)
	if err != nil {
		return nil, err
	}
	list, err := s.query(ctx, kind, t, t.selectSQL())
	if err != nil {
		return nil, err
	}
	out := make(map[string]model.Entity, len(list))
	for _, e := range list {
		out[e.Base().ID] = e
	}
	return out, nil
}

// AllBy selects the entities of kind whose foreign key field equals value.
// field must be one of the kind's columns.
func (s *Store) AllBy(ctx context.Context, kind model.Kind, field, value string) ([]model.Entity, error) {
	t, err := lookup(kind)
	if err != nil {
		return nil, err
	}
	if !t.hasColumn(field) {
		return nil, fmt.Errorf("%w: %s has no column %q", storage.ErrUnknownKind, kind, field)
	}
	return s.query(ctx, kind, t, t.selectSQL()+" WHERE "+field+" = ?", value)
}

func (s *Store) query(ctx context.Context, kind model.Kind, t table, q string, args ...any) ([]model.Entity, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Entity
	for rows.Next() {
		e := model.New(kind)
		if err := rows.Scan(t.dest(e)...); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) Count(ctx context.Context, kind model.Kind) (int, error) {
	t, err := lookup(kind)
	if err != nil {
		return 0, err
	}
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+t.name).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *Store) New(_ context.Context, e model.Entity) error {
	if e == nil || e.Base().ID == "" {
		return errors.New("dbstore: entity without id")
	}
	if _, err := lookup(e.Kind()); err != nil {
		return err
	}
	s.mu.Lock()
	s.pending[pendingKey(e)] = e
	s.mu.Unlock()
	return nil
}

// Save upserts every pending entity, parents first, inside one transaction.
// On failure the pending set is kept so a later Save can retry.
func (s *Store) Save(ctx context.Context) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pending) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, kind := range model.Kinds {
		t := tables[kind]
		for _, e := range s.pending {
			if e.Kind() != kind {
				continue
			}
			if _, err = tx.ExecContext(ctx, t.upsertSQL(), t.args(e)...); err != nil {
				return fmt.Errorf("dbstore: save %s %s: %w", kind, e.Base().ID, err)
			}
		}
	}
	if err = tx.Commit(); err != nil {
		return err
	}
	s.pending = map[string]model.Entity{}
	return nil
}

// Delete removes e together with any join rows that reference it.
func (s *Store) Delete(ctx context.Context, e model.Entity) (err error) {
	if e == nil {
		return nil
	}
	t, err := lookup(e.Kind())
	if err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.pending, pendingKey(e))
	s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	switch e.Kind() {
	case model.KindPlace:
		if _, err = tx.ExecContext(ctx, "DELETE FROM place_amenity WHERE place_id = ?", e.Base().ID); err != nil {
			return err
		}
	case model.KindAmenity:
		if _, err = tx.ExecContext(ctx, "DELETE FROM place_amenity WHERE amenity_id = ?", e.Base().ID); err != nil {
			return err
		}
	}
	_, err = tx.ExecContext(ctx, "DELETE FROM "+t.name+" WHERE id = ?", e.Base().ID)
	return err
}

// Reload creates missing tables and drops anything staged but unsaved.
func (s *Store) Reload(ctx context.Context) error {
	s.mu.Lock()
	s.pending = map[string]model.Entity{}
	s.mu.Unlock()
	return database.EnsureSchema(ctx, s.db)
}

func (s *Store) Close() error {
	return s.db.Close()
}
