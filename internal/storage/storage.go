// Package storage defines the backend-agnostic persistence contract shared by
// the file and relational backends. Handlers, the relation resolver and the
// search engine depend only on these interfaces; the concrete backend is
// chosen once at startup.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/iliyamo/rental-api/internal/model"
)

var (
	// ErrNotFound is returned when an id does not resolve to an entity.
	ErrNotFound = errors.New("entity not found")

	// ErrUnknownKind is returned for kinds or fields a backend cannot map.
	ErrUnknownKind = errors.New("unknown entity kind")
)

// Storage is the contract every backend implements. Operations are
// synchronous; after Save returns, later calls in the same process observe
// the change.
type Storage interface {
	// Get returns the entity of kind with id, or ErrNotFound.
	Get(ctx context.Context, kind model.Kind, id string) (model.Entity, error)
	// All returns every entity of kind keyed by id.
	All(ctx context.Context, kind model.Kind) (map[string]model.Entity, error)
	// Count returns the number of entities of kind.
	Count(ctx context.Context, kind model.Kind) (int, error)
	// New stages e (insert or update) for the next Save.
	New(ctx context.Context, e model.Entity) error
	// Delete removes e and persists the removal.
	Delete(ctx context.Context, e model.Entity) error
	// Save persists every staged change.
	Save(ctx context.Context) error
	// Reload (re)reads persisted state.
	Reload(ctx context.Context) error
	Close() error
}

// Filterer is implemented by backends that can select children by a foreign
// key column natively.
type Filterer interface {
	AllBy(ctx context.Context, kind model.Kind, field, value string) ([]model.Entity, error)
}

// AmenityLinker is implemented by backends that store place↔amenity links
// natively instead of as an id list on the place.
type AmenityLinker interface {
	PlaceAmenities(ctx context.Context, placeID string) ([]*model.Amenity, error)
	// LinkAmenity reports whether a new link was created.
	LinkAmenity(ctx context.Context, placeID, amenityID string) (bool, error)
	// UnlinkAmenity reports whether an existing link was removed.
	UnlinkAmenity(ctx context.Context, placeID, amenityID string) (bool, error)
}

// Get fetches an entity and asserts its concrete type.
func Get[T model.Entity](ctx context.Context, s Storage, id string) (T, error) {
	var zero T
	e, err := s.Get(ctx, zero.Kind(), id)
	if err != nil {
		return zero, err
	}
	t, ok := e.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %T for %s", ErrUnknownKind, e, zero.Kind())
	}
	return t, nil
}

// List returns every entity of T's kind in stable order.
func List[T model.Entity](ctx context.Context, s Storage) ([]T, error) {
	var zero T
	all, err := s.All(ctx, zero.Kind())
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(all))
	for _, e := range all {
		if t, ok := e.(T); ok {
			out = append(out, t)
		}
	}
	Sort(out)
	return out, nil
}

// Persist stages e and saves immediately.
func Persist(ctx context.Context, s Storage, e model.Entity) error {
	if err := s.New(ctx, e); err != nil {
		return err
	}
	return s.Save(ctx)
}
