package search

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/rental-api/internal/model"
	"github.com/iliyamo/rental-api/internal/relation"
	"github.com/iliyamo/rental-api/internal/storage"
	"github.com/iliyamo/rental-api/internal/storage/file"
	"github.com/iliyamo/rental-api/internal/storage/storagetest"
)

// world: two states; CA has SF (p1, p2) and LA (p3); NV has Reno (p4).
// p1 has wifi+pool, p2 wifi, p4 pool.
type world struct {
	engine         *Engine
	store          storage.Storage
	ca, nv         *model.State
	sf, la, reno   *model.City
	p1, p2, p3, p4 *model.Place
	wifi, pool     *model.Amenity
}

func put[T model.Entity](t *testing.T, s storage.Storage, e T) T {
	t.Helper()
	e.Base().Init()
	require.NoError(t, storage.Persist(context.Background(), s, e))
	return e
}

func newWorld(t *testing.T) *world {
	t.Helper()
	return newWorldOn(t, file.New(filepath.Join(t.TempDir(), "file.json")))
}

// backends builds one store per link strategy: inline ids on the place and
// a native link table with column filtering.
var backends = map[string]func(path string) storage.Storage{
	"file":   func(path string) storage.Storage { return file.New(path) },
	"native": func(path string) storage.Storage { return storagetest.NewNative(path) },
}

func newWorldOn(t *testing.T, s storage.Storage) *world {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.Reload(ctx))
	rel := relation.New(s)

	w := &world{engine: NewEngine(s, rel), store: s}
	w.ca = put(t, s, &model.State{Name: "California"})
	w.nv = put(t, s, &model.State{Name: "Nevada"})
	w.sf = put(t, s, &model.City{StateID: w.ca.ID, Name: "San Francisco"})
	w.la = put(t, s, &model.City{StateID: w.ca.ID, Name: "Los Angeles"})
	w.reno = put(t, s, &model.City{StateID: w.nv.ID, Name: "Reno"})
	u := put(t, s, &model.User{Email: "host@example.com"})
	w.p1 = put(t, s, &model.Place{CityID: w.sf.ID, UserID: u.ID, Name: "p1"})
	w.p2 = put(t, s, &model.Place{CityID: w.sf.ID, UserID: u.ID, Name: "p2"})
	w.p3 = put(t, s, &model.Place{CityID: w.la.ID, UserID: u.ID, Name: "p3"})
	w.p4 = put(t, s, &model.Place{CityID: w.reno.ID, UserID: u.ID, Name: "p4"})
	w.wifi = put(t, s, &model.Amenity{Name: "Wifi"})
	w.pool = put(t, s, &model.Amenity{Name: "Pool"})

	for _, link := range []struct {
		p *model.Place
		a *model.Amenity
	}{{w.p1, w.wifi}, {w.p1, w.pool}, {w.p2, w.wifi}, {w.p4, w.pool}} {
		_, err := rel.LinkAmenity(ctx, link.p, link.a)
		require.NoError(t, err)
	}
	return w
}

func names(places []*model.Place) []string {
	out := make([]string, 0, len(places))
	for _, p := range places {
		out = append(out, p.Name)
	}
	return out
}

func TestSearch(t *testing.T) {
	for backend, open := range backends {
		t.Run(backend, func(t *testing.T) {
			testSearch(t, newWorldOn(t, open(filepath.Join(t.TempDir(), "file.json"))))
		})
	}
}

func testSearch(t *testing.T, w *world) {
	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{name: "no filters returns everything", filter: Filter{}, want: []string{"p1", "p2", "p3", "p4"}},
		{name: "empty lists count as absent", filter: Filter{States: []string{}, Cities: []string{}}, want: []string{"p1", "p2", "p3", "p4"}},
		{name: "state expands to all its cities", filter: Filter{States: []string{w.ca.ID}}, want: []string{"p1", "p2", "p3"}},
		{name: "city only", filter: Filter{Cities: []string{w.reno.ID}}, want: []string{"p4"}},
		{name: "state and overlapping city dedup", filter: Filter{States: []string{w.ca.ID}, Cities: []string{w.sf.ID, w.reno.ID}}, want: []string{"p1", "p2", "p3", "p4"}},
		{name: "repeated state is not duplicated", filter: Filter{States: []string{w.nv.ID, w.nv.ID}}, want: []string{"p4"}},
		{name: "amenity alone seeds with all places", filter: Filter{Amenities: []string{w.pool.ID}}, want: []string{"p1", "p4"}},
		{name: "amenities use AND semantics", filter: Filter{Amenities: []string{w.wifi.ID, w.pool.ID}}, want: []string{"p1"}},
		{name: "amenity narrows state results", filter: Filter{States: []string{w.ca.ID}, Amenities: []string{w.wifi.ID}}, want: []string{"p1", "p2"}},
		{name: "unknown ids are skipped", filter: Filter{States: []string{"nope"}, Cities: []string{w.la.ID, "nada"}}, want: []string{"p3"}},
		{name: "unknown ids only yields nothing", filter: Filter{Cities: []string{"nada"}}, want: []string{}},
		{name: "unknown amenity places no constraint", filter: Filter{Cities: []string{w.sf.ID}, Amenities: []string{"ghost"}}, want: []string{"p1", "p2"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := w.engine.Search(context.Background(), tc.filter)
			require.NoError(t, err)
			assert.ElementsMatch(t, tc.want, names(got))
		})
	}
}

func TestSearchNoFilterMatchesCount(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	got, err := w.engine.Search(ctx, Filter{})
	require.NoError(t, err)
	n, err := w.store.Count(ctx, model.KindPlace)
	require.NoError(t, err)
	assert.Len(t, got, n)
}

func TestSearchStateEqualsUnionOfCities(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	rel := relation.New(w.store)

	got, err := w.engine.Search(ctx, Filter{States: []string{w.ca.ID}})
	require.NoError(t, err)

	cities, err := rel.CitiesOfState(ctx, w.ca)
	require.NoError(t, err)
	var want []string
	seen := map[string]bool{}
	for _, c := range cities {
		places, err := rel.PlacesOfCity(ctx, c)
		require.NoError(t, err)
		for _, p := range places {
			if !seen[p.ID] {
				seen[p.ID] = true
				want = append(want, p.ID)
			}
		}
	}
	var ids []string
	for _, p := range got {
		ids = append(ids, p.ID)
	}
	assert.ElementsMatch(t, want, ids)
}

func TestSearchDedupIsByIdentity(t *testing.T) {
	w := newWorld(t)
	// same fields as p3, different record
	twin := put(t, w.store, &model.Place{CityID: w.la.ID, UserID: w.p3.UserID, Name: "p3"})

	got, err := w.engine.Search(context.Background(), Filter{Cities: []string{w.la.ID}})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.ElementsMatch(t, []string{w.p3.ID, twin.ID}, []string{got[0].ID, got[1].ID})
}

func TestFilterIsEmpty(t *testing.T) {
	assert.True(t, Filter{}.IsEmpty())
	assert.False(t, Filter{Amenities: []string{"a"}}.IsEmpty())
}

func TestSearchNativeLinksIgnoreInlineIDs(t *testing.T) {
	n := storagetest.NewNative(filepath.Join(t.TempDir(), "file.json"))
	w := newWorldOn(t, n)
	ctx := context.Background()

	p1, err := storage.Get[*model.Place](ctx, w.store, w.p1.ID)
	require.NoError(t, err)
	assert.Empty(t, p1.AmenityIDs)

	calls := n.AllByCalls()
	got, err := w.engine.Search(ctx, Filter{States: []string{w.ca.ID}, Amenities: []string{w.wifi.ID}})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"p1", "p2"}, names(got))
	assert.Greater(t, n.AllByCalls(), calls)
}
