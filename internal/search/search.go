// Package search implements the places_search filter: places reachable from
// a set of states and cities, optionally narrowed to those offering every
// requested amenity.
package search

import (
	"context"
	"errors"

	"github.com/iliyamo/rental-api/internal/model"
	"github.com/iliyamo/rental-api/internal/relation"
	"github.com/iliyamo/rental-api/internal/storage"
)

// Filter is the places_search request body. Each list is optional.
type Filter struct {
	States    []string `json:"states"`
	Cities    []string `json:"cities"`
	Amenities []string `json:"amenities"`
}

// IsEmpty reports whether no criterion was given.
func (f Filter) IsEmpty() bool {
	return len(f.States) == 0 && len(f.Cities) == 0 && len(f.Amenities) == 0
}

// Engine runs Filters against a storage backend.
type Engine struct {
	store storage.Storage
	rel   *relation.Resolver
}

// NewEngine returns an Engine. Both dependencies are required.
func NewEngine(store storage.Storage, rel *relation.Resolver) *Engine {
	if store == nil || rel == nil {
		panic("nil dependency passed to search.NewEngine")
	}
	return &Engine{store: store, rel: rel}
}

// result accumulates places in discovery order, keeping one entry per id.
type result struct {
	places []*model.Place
	seen   map[string]struct{}
}

func (r *result) add(ps ...*model.Place) {
	for _, p := range ps {
		if _, ok := r.seen[p.ID]; ok {
			continue
		}
		r.seen[p.ID] = struct{}{}
		r.places = append(r.places, p)
	}
}

// Search returns the places matching f. Ids that do not resolve are
// ignored. With no criteria every place is returned.
func (e *Engine) Search(ctx context.Context, f Filter) ([]*model.Place, error) {
	if f.IsEmpty() {
		return storage.List[*model.Place](ctx, e.store)
	}

	res := &result{seen: map[string]struct{}{}}
	for _, id := range f.States {
		st, err := storage.Get[*model.State](ctx, e.store, id)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		cities, err := e.rel.CitiesOfState(ctx, st)
		if err != nil {
			return nil, err
		}
		for _, c := range cities {
			places, err := e.rel.PlacesOfCity(ctx, c)
			if err != nil {
				return nil, err
			}
			res.add(places...)
		}
	}
	for _, id := range f.Cities {
		c, err := storage.Get[*model.City](ctx, e.store, id)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		places, err := e.rel.PlacesOfCity(ctx, c)
		if err != nil {
			return nil, err
		}
		res.add(places...)
	}

	if len(f.Amenities) == 0 {
		return res.places, nil
	}
	candidates := res.places
	if len(candidates) == 0 {
		all, err := storage.List[*model.Place](ctx, e.store)
		if err != nil {
			return nil, err
		}
		candidates = all
	}
	want, err := e.knownAmenities(ctx, f.Amenities)
	if err != nil {
		return nil, err
	}

	out := make([]*model.Place, 0, len(candidates))
	for _, p := range candidates {
		ok, err := e.hasAll(ctx, p, want)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// knownAmenities keeps the requested ids that resolve to an Amenity.
func (e *Engine) knownAmenities(ctx context.Context, ids []string) (map[string]struct{}, error) {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		_, err := storage.Get[*model.Amenity](ctx, e.store, id)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		want[id] = struct{}{}
	}
	return want, nil
}

func (e *Engine) hasAll(ctx context.Context, p *model.Place, want map[string]struct{}) (bool, error) {
	if len(want) == 0 {
		return true, nil
	}
	amenities, err := e.rel.AmenitiesOfPlace(ctx, p)
	if err != nil {
		return false, err
	}
	have := make(map[string]struct{}, len(amenities))
	for _, a := range amenities {
		have[a.ID] = struct{}{}
	}
	for id := range want {
		if _, ok := have[id]; !ok {
			return false, nil
		}
	}
	return true, nil
}
