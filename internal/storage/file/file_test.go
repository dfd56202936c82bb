package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/rental-api/internal/model"
	"github.com/iliyamo/rental-api/internal/storage"
)

func newStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "file.json")
	s := New(path)
	require.NoError(t, s.Reload(context.Background()))
	return s, path
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, path := newStore(t)

	st := &model.State{Name: "California"}
	st.Init()
	u := &model.User{Email: "bob@example.com", Password: "hash"}
	u.Init()
	p := &model.Place{CityID: "c1", UserID: u.ID, Name: "Loft", NumberRooms: 2, Latitude: 37.7, AmenityIDs: []string{"a1", "a2"}}
	p.Init()

	for _, e := range []model.Entity{st, u, p} {
		require.NoError(t, s.New(ctx, e))
	}
	require.NoError(t, s.Save(ctx))

	reloaded := New(path)
	require.NoError(t, reloaded.Reload(ctx))

	got, err := storage.Get[*model.Place](ctx, reloaded, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Loft", got.Name)
	assert.Equal(t, 2, got.NumberRooms)
	assert.Equal(t, []string{"a1", "a2"}, got.AmenityIDs)
	assert.True(t, p.CreatedAt.Equal(got.CreatedAt))

	gotUser, err := storage.Get[*model.User](ctx, reloaded, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "hash", gotUser.Password)

	n, err := reloaded.Count(ctx, model.KindState)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestStoreGetMissing(t *testing.T) {
	s, _ := newStore(t)
	_, err := s.Get(context.Background(), model.KindCity, "nope")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = s.Get(context.Background(), model.Kind("Ghost"), "x")
	assert.ErrorIs(t, err, storage.ErrUnknownKind)
}

func TestStoreDeletePersists(t *testing.T) {
	ctx := context.Background()
	s, path := newStore(t)

	a := &model.Amenity{Name: "Wifi"}
	a.Init()
	require.NoError(t, storage.Persist(ctx, s, a))
	require.NoError(t, s.Delete(ctx, a))

	reloaded := New(path)
	require.NoError(t, reloaded.Reload(ctx))
	n, err := reloaded.Count(ctx, model.KindAmenity)
	require.NoError(t, err)
	assert.Zero(t, n)

	// deleting twice is harmless
	assert.NoError(t, s.Delete(ctx, a))
}

func TestStoreGetReturnsLiveEntity(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	st := &model.State{Name: "Texas"}
	st.Init()
	require.NoError(t, storage.Persist(ctx, s, st))

	got, err := storage.Get[*model.State](ctx, s, st.ID)
	require.NoError(t, err)
	got.Name = "Lone Star"

	again, err := storage.Get[*model.State](ctx, s, st.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lone Star", again.Name)
}

func TestReloadIgnoresUnknownClasses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.json")
	doc := `{"BaseModel.1":{"__class__":"BaseModel","id":"1"},"State.2":{"__class__":"State","id":"2","name":"Ohio"}}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	s := New(path)
	require.NoError(t, s.Reload(context.Background()))
	all, err := s.All(context.Background(), model.KindState)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Ohio", all["2"].(*model.State).Name)
}

func TestReloadRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	assert.Error(t, New(path).Reload(context.Background()))
}

func TestListIsSorted(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)
	for _, name := range []string{"a", "b", "c"} {
		st := &model.State{Name: name}
		st.Init()
		require.NoError(t, s.New(ctx, st))
	}
	list, err := storage.List[*model.State](ctx, s)
	require.NoError(t, err)
	require.Len(t, list, 3)
	for i := 1; i < len(list); i++ {
		assert.False(t, list[i].CreatedAt.Before(list[i-1].CreatedAt))
	}
}
