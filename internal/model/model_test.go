package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitAssignsIdentity(t *testing.T) {
	var s State
	s.Init()

	_, err := uuid.Parse(s.ID)
	require.NoError(t, err)
	assert.False(t, s.CreatedAt.IsZero())
	assert.Equal(t, s.CreatedAt, s.UpdatedAt)

	before := s.UpdatedAt
	s.Touch()
	assert.False(t, s.UpdatedAt.Before(before))
}

func TestDictTagsClass(t *testing.T) {
	c := &City{StateID: "s1", Name: "Austin"}
	c.Init()

	m, err := Dict(c)
	require.NoError(t, err)
	assert.Equal(t, "City", m["__class__"])
	assert.Equal(t, "s1", m["state_id"])
	assert.Equal(t, c.ID, m["id"])
}

func TestPublicDictHidesInternalFields(t *testing.T) {
	u := &User{Email: "a@b.c", Password: "hash"}
	m, err := PublicDict(u)
	require.NoError(t, err)
	assert.NotContains(t, m, "password")

	full, err := Dict(u)
	require.NoError(t, err)
	assert.Equal(t, "hash", full["password"])

	p := &Place{AmenityIDs: []string{"a1"}}
	m, err = PublicDict(p)
	require.NoError(t, err)
	assert.NotContains(t, m, "amenity_ids")
}

func TestKindRegistry(t *testing.T) {
	for _, k := range Kinds {
		e := New(k)
		require.NotNil(t, e, k)
		assert.Equal(t, k, e.Kind())
		assert.NotEmpty(t, k.Collection())

		parsed, ok := ParseKind(string(k))
		assert.True(t, ok)
		assert.Equal(t, k, parsed)
	}
	assert.Nil(t, New("Nope"))
	_, ok := ParseKind("BaseModel")
	assert.False(t, ok)
}

func TestRefs(t *testing.T) {
	p := &Place{CityID: "c1", UserID: "u1"}
	assert.Equal(t, map[string]string{"city_id": "c1", "user_id": "u1"}, p.Refs())

	r := &Review{PlaceID: "p1", UserID: "u1"}
	assert.Equal(t, "p1", r.Refs()["place_id"])

	assert.Nil(t, (&Amenity{}).Refs())
}
