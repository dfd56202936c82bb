// Package relation resolves associations between entities independently of
// the active storage backend. Backends that implement storage.Filterer or
// storage.AmenityLinker are queried natively; otherwise associations are
// derived from All and the inline amenity id list on Place.
package relation

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/iliyamo/rental-api/internal/model"
	"github.com/iliyamo/rental-api/internal/storage"
)

// ErrNotLinked is returned when unlinking a place and amenity that are not
// associated.
var ErrNotLinked = errors.New("amenity not linked to place")

// LinkStatus tells a caller whether LinkAmenity changed anything.
type LinkStatus int

const (
	Linked LinkStatus = iota
	AlreadyLinked
)

// Resolver walks associations over a storage backend.
type Resolver struct {
	store storage.Storage
}

// New returns a Resolver bound to store.
func New(store storage.Storage) *Resolver {
	if store == nil {
		panic("nil storage passed to relation.New")
	}
	return &Resolver{store: store}
}

// childrenOf returns the entities of T's kind whose field references id.
func childrenOf[T model.Entity](ctx context.Context, s storage.Storage, field, id string) ([]T, error) {
	var zero T
	var found []model.Entity
	if f, ok := s.(storage.Filterer); ok {
		var err error
		if found, err = f.AllBy(ctx, zero.Kind(), field, id); err != nil {
			return nil, err
		}
	} else {
		all, err := s.All(ctx, zero.Kind())
		if err != nil {
			return nil, err
		}
		for _, e := range all {
			if e.Refs()[field] == id {
				found = append(found, e)
			}
		}
	}
	out := make([]T, 0, len(found))
	for _, e := range found {
		if t, ok := e.(T); ok {
			out = append(out, t)
		}
	}
	storage.Sort(out)
	return out, nil
}

// CitiesOfState returns the cities whose state_id is st's id.
func (r *Resolver) CitiesOfState(ctx context.Context, st *model.State) ([]*model.City, error) {
	return childrenOf[*model.City](ctx, r.store, "state_id", st.ID)
}

// PlacesOfCity returns the places whose city_id is c's id.
func (r *Resolver) PlacesOfCity(ctx context.Context, c *model.City) ([]*model.Place, error) {
	return childrenOf[*model.Place](ctx, r.store, "city_id", c.ID)
}

// ReviewsOfPlace returns the reviews whose place_id is p's id.
func (r *Resolver) ReviewsOfPlace(ctx context.Context, p *model.Place) ([]*model.Review, error) {
	return childrenOf[*model.Review](ctx, r.store, "place_id", p.ID)
}

// AmenitiesOfPlace returns the amenities linked to p. Inline ids that no
// longer resolve are skipped.
func (r *Resolver) AmenitiesOfPlace(ctx context.Context, p *model.Place) ([]*model.Amenity, error) {
	if l, ok := r.store.(storage.AmenityLinker); ok {
		return l.PlaceAmenities(ctx, p.ID)
	}
	out := make([]*model.Amenity, 0, len(p.AmenityIDs))
	for _, id := range p.AmenityIDs {
		a, err := storage.Get[*model.Amenity](ctx, r.store, id)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// LinkAmenity associates a with p and persists the link. Linking an
// existing pair is not an error and reports AlreadyLinked. p itself is not
// modified; callers re-read the place to observe the link.
func (r *Resolver) LinkAmenity(ctx context.Context, p *model.Place, a *model.Amenity) (LinkStatus, error) {
	if l, ok := r.store.(storage.AmenityLinker); ok {
		inserted, err := l.LinkAmenity(ctx, p.ID, a.ID)
		if err != nil {
			return 0, fmt.Errorf("link amenity: %w", err)
		}
		if !inserted {
			return AlreadyLinked, nil
		}
		return Linked, nil
	}
	cur, next, err := r.editablePlace(ctx, p.ID)
	if err != nil {
		return 0, fmt.Errorf("link amenity: %w", err)
	}
	if slices.Contains(next.AmenityIDs, a.ID) {
		return AlreadyLinked, nil
	}
	next.AmenityIDs = append(next.AmenityIDs, a.ID)
	next.Touch()
	if err := r.replacePlace(ctx, cur, next); err != nil {
		return 0, fmt.Errorf("link amenity: %w", err)
	}
	return Linked, nil
}

// editablePlace returns the stored place with id and a private copy of it.
// Stored entities may be shared with concurrent readers and are never
// modified in place.
func (r *Resolver) editablePlace(ctx context.Context, id string) (cur, next *model.Place, err error) {
	cur, err = storage.Get[*model.Place](ctx, r.store, id)
	if err != nil {
		return nil, nil, err
	}
	next, err = model.Clone(cur)
	return cur, next, err
}

// replacePlace persists next in place of cur. When the save fails cur is
// staged again so memory keeps matching the last good save.
func (r *Resolver) replacePlace(ctx context.Context, cur, next *model.Place) error {
	if err := storage.Persist(ctx, r.store, next); err != nil {
		_ = r.store.New(ctx, cur)
		return err
	}
	return nil
}

// UnlinkAmenity removes the association between p and a and persists it.
// It returns ErrNotLinked when the pair was not associated.
func (r *Resolver) UnlinkAmenity(ctx context.Context, p *model.Place, a *model.Amenity) error {
	if l, ok := r.store.(storage.AmenityLinker); ok {
		removed, err := l.UnlinkAmenity(ctx, p.ID, a.ID)
		if err != nil {
			return fmt.Errorf("unlink amenity: %w", err)
		}
		if !removed {
			return ErrNotLinked
		}
		return nil
	}
	cur, next, err := r.editablePlace(ctx, p.ID)
	if err != nil {
		return fmt.Errorf("unlink amenity: %w", err)
	}
	i := slices.Index(next.AmenityIDs, a.ID)
	if i < 0 {
		return ErrNotLinked
	}
	next.AmenityIDs = slices.Delete(next.AmenityIDs, i, i+1)
	next.Touch()
	if err := r.replacePlace(ctx, cur, next); err != nil {
		return fmt.Errorf("unlink amenity: %w", err)
	}
	return nil
}
