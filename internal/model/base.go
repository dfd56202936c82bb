// Package model holds the entities of the rental domain. Every entity embeds
// BaseModel for identity and timestamps and exposes its foreign keys through
// Refs so the storage and relation layers can walk associations without
// knowing concrete types.
package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Entity is implemented by every persisted record.
type Entity interface {
	Kind() Kind
	Base() *BaseModel
	// Refs returns foreign key column → referenced id.
	Refs() map[string]string
}

// BaseModel carries the fields shared by all entities.
type BaseModel struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Base returns the embedded BaseModel.
func (b *BaseModel) Base() *BaseModel { return b }

// Init assigns a fresh UUID and sets both timestamps to now.
func (b *BaseModel) Init() {
	now := time.Now().UTC()
	b.ID = uuid.NewString()
	b.CreatedAt = now
	b.UpdatedAt = now
}

// Touch bumps UpdatedAt.
func (b *BaseModel) Touch() {
	b.UpdatedAt = time.Now().UTC()
}

// Dict serializes e into a generic map tagged with "__class__". It is the
// representation written by the file backend and the starting point of API
// responses.
func Dict(e Entity) (map[string]any, error) {
	raw, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	m := map[string]any{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	m["__class__"] = string(e.Kind())
	return m, nil
}

// PublicDict is Dict minus the fields that never leave the server: the
// password hash and the inline amenity id list of the file backend.
func PublicDict(e Entity) (map[string]any, error) {
	m, err := Dict(e)
	if err != nil {
		return nil, err
	}
	delete(m, "password")
	delete(m, "amenity_ids")
	return m, nil
}

// Clone returns a deep copy of e. Stored entities are shared between
// readers, so writers change a clone and store it in place of the original.
func Clone[T Entity](e T) (T, error) {
	var zero T
	raw, err := json.Marshal(e)
	if err != nil {
		return zero, err
	}
	out, ok := New(e.Kind()).(T)
	if !ok {
		return zero, fmt.Errorf("clone: unknown kind %q", e.Kind())
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return zero, err
	}
	return out, nil
}
