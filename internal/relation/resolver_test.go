package relation

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/rental-api/internal/model"
	"github.com/iliyamo/rental-api/internal/storage"
	"github.com/iliyamo/rental-api/internal/storage/file"
	"github.com/iliyamo/rental-api/internal/storage/storagetest"
)

type fixture struct {
	store   storage.Storage
	rel     *Resolver
	state   *model.State
	city    *model.City
	other   *model.City
	user    *model.User
	place   *model.Place
	wifi    *model.Amenity
	pool    *model.Amenity
	review  *model.Review
	visitor *model.User
}

func add[T model.Entity](t *testing.T, s storage.Storage, e T) T {
	t.Helper()
	e.Base().Init()
	require.NoError(t, storage.Persist(context.Background(), s, e))
	return e
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureOn(t, file.New(filepath.Join(t.TempDir(), "file.json")))
}

func newFixtureOn(t *testing.T, s storage.Storage) *fixture {
	t.Helper()
	require.NoError(t, s.Reload(context.Background()))

	f := &fixture{store: s, rel: New(s)}
	f.state = add(t, s, &model.State{Name: "California"})
	f.city = add(t, s, &model.City{StateID: f.state.ID, Name: "San Francisco"})
	f.other = add(t, s, &model.City{StateID: f.state.ID, Name: "Oakland"})
	f.user = add(t, s, &model.User{Email: "host@example.com"})
	f.visitor = add(t, s, &model.User{Email: "guest@example.com"})
	f.wifi = add(t, s, &model.Amenity{Name: "Wifi"})
	f.pool = add(t, s, &model.Amenity{Name: "Pool"})
	f.place = add(t, s, &model.Place{CityID: f.city.ID, UserID: f.user.ID, Name: "Loft"})
	f.review = add(t, s, &model.Review{PlaceID: f.place.ID, UserID: f.visitor.ID, Text: "nice"})
	return f
}

func TestChildLookups(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cities, err := f.rel.CitiesOfState(ctx, f.state)
	require.NoError(t, err)
	assert.Len(t, cities, 2)

	places, err := f.rel.PlacesOfCity(ctx, f.city)
	require.NoError(t, err)
	require.Len(t, places, 1)
	assert.Equal(t, f.place.ID, places[0].ID)

	places, err = f.rel.PlacesOfCity(ctx, f.other)
	require.NoError(t, err)
	assert.Empty(t, places)

	reviews, err := f.rel.ReviewsOfPlace(ctx, f.place)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, "nice", reviews[0].Text)
}

func TestLinkAmenityIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	status, err := f.rel.LinkAmenity(ctx, f.place, f.wifi)
	require.NoError(t, err)
	assert.Equal(t, Linked, status)

	status, err = f.rel.LinkAmenity(ctx, f.place, f.wifi)
	require.NoError(t, err)
	assert.Equal(t, AlreadyLinked, status)

	p := f.storedPlace(t)
	amenities, err := f.rel.AmenitiesOfPlace(ctx, p)
	require.NoError(t, err)
	require.Len(t, amenities, 1)
	assert.Equal(t, f.wifi.ID, amenities[0].ID)
	assert.Equal(t, []string{f.wifi.ID}, p.AmenityIDs)
}

func (f *fixture) storedPlace(t *testing.T) *model.Place {
	t.Helper()
	p, err := storage.Get[*model.Place](context.Background(), f.store, f.place.ID)
	require.NoError(t, err)
	return p
}

func TestLinkPersists(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.rel.LinkAmenity(ctx, f.place, f.pool)
	require.NoError(t, err)

	require.NoError(t, f.store.Reload(ctx))
	p, err := storage.Get[*model.Place](ctx, f.store, f.place.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{f.pool.ID}, p.AmenityIDs)
}

func TestUnlinkAmenity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.ErrorIs(t, f.rel.UnlinkAmenity(ctx, f.place, f.wifi), ErrNotLinked)

	_, err := f.rel.LinkAmenity(ctx, f.place, f.wifi)
	require.NoError(t, err)
	require.NoError(t, f.rel.UnlinkAmenity(ctx, f.place, f.wifi))
	assert.Empty(t, f.storedPlace(t).AmenityIDs)
	assert.ErrorIs(t, f.rel.UnlinkAmenity(ctx, f.place, f.wifi), ErrNotLinked)
}

func TestAmenitiesOfPlaceSkipsStaleIDs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	detached := &model.Place{AmenityIDs: []string{f.wifi.ID, "gone", f.pool.ID}}
	amenities, err := f.rel.AmenitiesOfPlace(ctx, detached)
	require.NoError(t, err)
	require.Len(t, amenities, 2)
	assert.Equal(t, f.wifi.ID, amenities[0].ID)
	assert.Equal(t, f.pool.ID, amenities[1].ID)
}

func TestDeleteStateCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.rel.Delete(ctx, f.state))

	for kind, want := range map[model.Kind]int{
		model.KindState:   0,
		model.KindCity:    0,
		model.KindPlace:   0,
		model.KindReview:  0,
		model.KindUser:    2,
		model.KindAmenity: 2,
	} {
		n, err := f.store.Count(ctx, kind)
		require.NoError(t, err)
		assert.Equal(t, want, n, kind)
	}
}

func TestDeleteUserCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.rel.Delete(ctx, f.visitor))
	n, err := f.store.Count(ctx, model.KindReview)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = f.store.Count(ctx, model.KindPlace)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, f.rel.Delete(ctx, f.user))
	n, err = f.store.Count(ctx, model.KindPlace)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDeleteAmenityDropsLinks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.rel.LinkAmenity(ctx, f.place, f.wifi)
	require.NoError(t, err)
	_, err = f.rel.LinkAmenity(ctx, f.place, f.pool)
	require.NoError(t, err)

	require.NoError(t, f.rel.Delete(ctx, f.wifi))
	assert.Equal(t, []string{f.pool.ID}, f.storedPlace(t).AmenityIDs)

	_, err = f.store.Get(ctx, model.KindAmenity, f.wifi.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestLinkLeavesCallerPlaceUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.rel.LinkAmenity(ctx, f.place, f.wifi)
	require.NoError(t, err)
	assert.Empty(t, f.place.AmenityIDs)
	assert.Equal(t, []string{f.wifi.ID}, f.storedPlace(t).AmenityIDs)
}

func TestConcurrentLinksOfSamePair(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := storage.Get[*model.Place](ctx, f.store, f.place.ID)
			if err == nil {
				_, err = f.rel.LinkAmenity(ctx, p, f.wifi)
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, []string{f.wifi.ID}, f.storedPlace(t).AmenityIDs)
}

func TestFailedLinkLeavesStoreUnchanged(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "gone")
	require.NoError(t, os.Mkdir(dir, 0o755))
	s := file.New(filepath.Join(dir, "file.json"))
	f := newFixtureOn(t, s)
	_, err := f.rel.LinkAmenity(ctx, f.place, f.pool)
	require.NoError(t, err)
	require.NoError(t, os.RemoveAll(dir))

	_, err = f.rel.LinkAmenity(ctx, f.place, f.wifi)
	require.Error(t, err)
	assert.Equal(t, []string{f.pool.ID}, f.storedPlace(t).AmenityIDs)

	require.Error(t, f.rel.UnlinkAmenity(ctx, f.place, f.pool))
	assert.Equal(t, []string{f.pool.ID}, f.storedPlace(t).AmenityIDs)
}

func newNativeFixture(t *testing.T) (*fixture, *storagetest.Native) {
	t.Helper()
	n := storagetest.NewNative(filepath.Join(t.TempDir(), "file.json"))
	return newFixtureOn(t, n), n
}

func TestNativeChildLookupsUseFilterer(t *testing.T) {
	f, n := newNativeFixture(t)
	ctx := context.Background()
	before := n.AllByCalls()

	cities, err := f.rel.CitiesOfState(ctx, f.state)
	require.NoError(t, err)
	assert.Len(t, cities, 2)
	places, err := f.rel.PlacesOfCity(ctx, f.city)
	require.NoError(t, err)
	require.Len(t, places, 1)
	reviews, err := f.rel.ReviewsOfPlace(ctx, f.place)
	require.NoError(t, err)
	require.Len(t, reviews, 1)

	assert.Equal(t, before+3, n.AllByCalls())
}

func TestNativeLinksBypassInlineIDs(t *testing.T) {
	f, _ := newNativeFixture(t)
	ctx := context.Background()

	status, err := f.rel.LinkAmenity(ctx, f.place, f.wifi)
	require.NoError(t, err)
	assert.Equal(t, Linked, status)
	status, err = f.rel.LinkAmenity(ctx, f.place, f.wifi)
	require.NoError(t, err)
	assert.Equal(t, AlreadyLinked, status)

	p := f.storedPlace(t)
	assert.Empty(t, p.AmenityIDs)
	amenities, err := f.rel.AmenitiesOfPlace(ctx, p)
	require.NoError(t, err)
	require.Len(t, amenities, 1)
	assert.Equal(t, f.wifi.ID, amenities[0].ID)

	require.NoError(t, f.rel.UnlinkAmenity(ctx, p, f.wifi))
	assert.ErrorIs(t, f.rel.UnlinkAmenity(ctx, p, f.wifi), ErrNotLinked)
}

func TestNativeAmenityDeleteKeepsInlineIDs(t *testing.T) {
	f, _ := newNativeFixture(t)
	ctx := context.Background()

	// inline ids are ignored by native backends, so deleting the amenity
	// must not rewrite them
	p, err := model.Clone(f.storedPlace(t))
	require.NoError(t, err)
	p.AmenityIDs = []string{f.wifi.ID}
	require.NoError(t, storage.Persist(ctx, f.store, p))
	_, err = f.rel.LinkAmenity(ctx, p, f.wifi)
	require.NoError(t, err)

	require.NoError(t, f.rel.Delete(ctx, f.wifi))
	stored := f.storedPlace(t)
	assert.Equal(t, []string{f.wifi.ID}, stored.AmenityIDs)
	amenities, err := f.rel.AmenitiesOfPlace(ctx, stored)
	require.NoError(t, err)
	assert.Empty(t, amenities)
}

func TestNativeDeleteStateCascades(t *testing.T) {
	f, _ := newNativeFixture(t)
	ctx := context.Background()
	_, err := f.rel.LinkAmenity(ctx, f.place, f.pool)
	require.NoError(t, err)

	require.NoError(t, f.rel.Delete(ctx, f.state))
	for _, kind := range []model.Kind{model.KindCity, model.KindPlace, model.KindReview} {
		n, err := f.store.Count(ctx, kind)
		require.NoError(t, err)
		assert.Zero(t, n, kind)
	}
	amenities, err := f.rel.AmenitiesOfPlace(ctx, f.place)
	require.NoError(t, err)
	assert.Empty(t, amenities)
}
