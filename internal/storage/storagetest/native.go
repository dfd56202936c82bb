// Package storagetest provides backends for tests of code written against
// storage.Storage.
package storagetest

import (
	"context"
	"fmt"
	"sync"

	"github.com/iliyamo/rental-api/internal/model"
	"github.com/iliyamo/rental-api/internal/storage"
	"github.com/iliyamo/rental-api/internal/storage/file"
)

type link struct{ place, amenity string }

// Native is a file.Store extended with the capabilities the MySQL backend
// offers: column filtering (storage.Filterer) and a place_amenity link table
// (storage.AmenityLinker). Place.AmenityIDs is never consulted, so tests can
// tell which resolver path ran.
type Native struct {
	*file.Store

	mu         sync.Mutex
	links      map[link]struct{}
	allByCalls int
}

var (
	_ storage.Storage       = (*Native)(nil)
	_ storage.Filterer      = (*Native)(nil)
	_ storage.AmenityLinker = (*Native)(nil)
)

// NewNative returns an empty Native persisting entities to path.
func NewNative(path string) *Native {
	return &Native{Store: file.New(path), links: map[link]struct{}{}}
}

// AllByCalls reports how many times AllBy ran.
func (n *Native) AllByCalls() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.allByCalls
}

func (n *Native) AllBy(ctx context.Context, kind model.Kind, field, value string) ([]model.Entity, error) {
	sample := model.New(kind)
	if sample == nil {
		return nil, fmt.Errorf("%w: %s", storage.ErrUnknownKind, kind)
	}
	if _, ok := sample.Refs()[field]; !ok {
		return nil, fmt.Errorf("%w: %s has no column %q", storage.ErrUnknownKind, kind, field)
	}
	n.mu.Lock()
	n.allByCalls++
	n.mu.Unlock()

	all, err := n.Store.All(ctx, kind)
	if err != nil {
		return nil, err
	}
	var out []model.Entity
	for _, e := range all {
		if e.Refs()[field] == value {
			out = append(out, e)
		}
	}
	return out, nil
}

func (n *Native) PlaceAmenities(ctx context.Context, placeID string) ([]*model.Amenity, error) {
	n.mu.Lock()
	var ids []string
	for l := range n.links {
		if l.place == placeID {
			ids = append(ids, l.amenity)
		}
	}
	n.mu.Unlock()

	out := make([]*model.Amenity, 0, len(ids))
	for _, id := range ids {
		a, err := storage.Get[*model.Amenity](ctx, n.Store, id)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	storage.Sort(out)
	return out, nil
}

func (n *Native) LinkAmenity(_ context.Context, placeID, amenityID string) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	l := link{placeID, amenityID}
	if _, ok := n.links[l]; ok {
		return false, nil
	}
	n.links[l] = struct{}{}
	return true, nil
}

func (n *Native) UnlinkAmenity(_ context.Context, placeID, amenityID string) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	l := link{placeID, amenityID}
	if _, ok := n.links[l]; !ok {
		return false, nil
	}
	delete(n.links, l)
	return true, nil
}

// Delete drops the join rows of a place or amenity before the entity, as
// the MySQL backend does.
func (n *Native) Delete(ctx context.Context, e model.Entity) error {
	if e != nil {
		id := e.Base().ID
		n.mu.Lock()
		for l := range n.links {
			if (e.Kind() == model.KindPlace && l.place == id) || (e.Kind() == model.KindAmenity && l.amenity == id) {
				delete(n.links, l)
			}
		}
		n.mu.Unlock()
	}
	return n.Store.Delete(ctx, e)
}
