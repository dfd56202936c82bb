package relation

import (
	"context"
	"fmt"
	"slices"

	"github.com/iliyamo/rental-api/internal/model"
	"github.com/iliyamo/rental-api/internal/storage"
)

// Delete removes e and everything that references it, then saves:
// a State takes its cities, a City its places, a Place its reviews and
// links, a User its places and reviews, an Amenity its links.
func (r *Resolver) Delete(ctx context.Context, e model.Entity) error {
	if err := r.deleteTree(ctx, e); err != nil {
		return fmt.Errorf("delete %s %s: %w", e.Kind(), e.Base().ID, err)
	}
	return r.store.Save(ctx)
}

func (r *Resolver) deleteTree(ctx context.Context, e model.Entity) error {
	if err := r.deleteDependents(ctx, e); err != nil {
		return err
	}
	return r.store.Delete(ctx, e)
}

func (r *Resolver) deleteDependents(ctx context.Context, e model.Entity) error {
	switch v := e.(type) {
	case *model.State:
		cities, err := r.CitiesOfState(ctx, v)
		if err != nil {
			return err
		}
		return deleteAll(ctx, r, cities)
	case *model.City:
		places, err := r.PlacesOfCity(ctx, v)
		if err != nil {
			return err
		}
		return deleteAll(ctx, r, places)
	case *model.Place:
		reviews, err := r.ReviewsOfPlace(ctx, v)
		if err != nil {
			return err
		}
		return deleteAll(ctx, r, reviews)
	case *model.User:
		places, err := childrenOf[*model.Place](ctx, r.store, "user_id", v.ID)
		if err != nil {
			return err
		}
		if err := deleteAll(ctx, r, places); err != nil {
			return err
		}
		reviews, err := childrenOf[*model.Review](ctx, r.store, "user_id", v.ID)
		if err != nil {
			return err
		}
		return deleteAll(ctx, r, reviews)
	case *model.Amenity:
		return r.dropInlineLinks(ctx, v)
	}
	return nil
}

func deleteAll[T model.Entity](ctx context.Context, r *Resolver, items []T) error {
	for _, it := range items {
		if err := r.deleteTree(ctx, it); err != nil {
			return err
		}
	}
	return nil
}

// dropInlineLinks strips a from every place's inline id list. Backends with
// native links clean up their join rows in Delete.
func (r *Resolver) dropInlineLinks(ctx context.Context, a *model.Amenity) error {
	if _, ok := r.store.(storage.AmenityLinker); ok {
		return nil
	}
	places, err := storage.List[*model.Place](ctx, r.store)
	if err != nil {
		return err
	}
	for _, p := range places {
		if !slices.Contains(p.AmenityIDs, a.ID) {
			continue
		}
		next, err := model.Clone(p)
		if err != nil {
			return err
		}
		next.AmenityIDs = slices.DeleteFunc(next.AmenityIDs, func(id string) bool { return id == a.ID })
		next.Touch()
		if err := r.store.New(ctx, next); err != nil {
			return err
		}
	}
	return nil
}
