// Package file implements the storage contract on a single JSON document.
// Every Save rewrites the whole file; concurrent processes writing the same
// path follow last-writer-wins.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/iliyamo/rental-api/internal/model"
	"github.com/iliyamo/rental-api/internal/storage"
)

// Store keeps every entity in memory and mirrors it to path on Save.
// Records are keyed "<Class>.<id>" in the document.
type Store struct {
	path    string
	mu      sync.RWMutex
	objects map[model.Kind]map[string]model.Entity
}

var _ storage.Storage = (*Store)(nil)

// New returns an empty Store bound to path. Call Reload to read existing data.
func New(path string) *Store {
	return &Store{path: path, objects: emptyObjects()}
}

func emptyObjects() map[model.Kind]map[string]model.Entity {
	m := make(map[model.Kind]map[string]model.Entity, len(model.Kinds))
	for _, k := range model.Kinds {
		m[k] = map[string]model.Entity{}
	}
	return m
}

// Get returns the stored entity itself, so in-place mutation followed by
// Save persists the change.
func (s *Store) Get(_ context.Context, kind model.Kind, id string) (model.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byID, ok := s.objects[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", storage.ErrUnknownKind, kind)
	}
	e, ok := byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s %s", storage.ErrNotFound, kind, id)
	}
	return e, nil
}

func (s *Store) All(_ context.Context, kind model.Kind) (map[string]model.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byID, ok := s.objects[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", storage.ErrUnknownKind, kind)
	}
	out := make(map[string]model.Entity, len(byID))
	for id, e := range byID {
		out[id] = e
	}
	return out, nil
}

func (s *Store) Count(_ context.Context, kind model.Kind) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byID, ok := s.objects[kind]
	if !ok {
		return 0, fmt.Errorf("%w: %s", storage.ErrUnknownKind, kind)
	}
	return len(byID), nil
}

func (s *Store) New(_ context.Context, e model.Entity) error {
	if e == nil || e.Base().ID == "" {
		return errors.New("file: entity without id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	byID, ok := s.objects[e.Kind()]
	if !ok {
		return fmt.Errorf("%w: %s", storage.ErrUnknownKind, e.Kind())
	}
	byID[e.Base().ID] = e
	return nil
}

// Delete drops e from memory and rewrites the file. Deleting an entity that
// is not stored is a no-op.
func (s *Store) Delete(ctx context.Context, e model.Entity) error {
	if e == nil {
		return nil
	}
	s.mu.Lock()
	if byID, ok := s.objects[e.Kind()]; ok {
		delete(byID, e.Base().ID)
	}
	s.mu.Unlock()
	return s.Save(ctx)
}

// Save serializes every entity and atomically replaces the file.
func (s *Store) Save(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := make(map[string]map[string]any)
	for kind, byID := range s.objects {
		for id, e := range byID {
			d, err := model.Dict(e)
			if err != nil {
				return fmt.Errorf("file: encode %s %s: %w", kind, id, err)
			}
			doc[string(kind)+"."+id] = d
		}
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("file: marshal: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".storage-*")
	if err != nil {
		return fmt.Errorf("file: create temp: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("file: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("file: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("file: replace %s: %w", s.path, err)
	}
	return nil
}

// Reload replaces the in-memory state with the file contents. A missing
// file yields an empty store.
func (s *Store) Reload(_ context.Context) error {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.mu.Lock()
		s.objects = emptyObjects()
		s.mu.Unlock()
		return nil
	}
	if err != nil {
		return fmt.Errorf("file: read %s: %w", s.path, err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("file: decode %s: %w", s.path, err)
	}

	objects := emptyObjects()
	for key, rec := range doc {
		var tag struct {
			Class string `json:"__class__"`
		}
		if err := json.Unmarshal(rec, &tag); err != nil {
			return fmt.Errorf("file: decode %s: %w", key, err)
		}
		if tag.Class == "" {
			tag.Class, _, _ = strings.Cut(key, ".")
		}
		kind, ok := model.ParseKind(tag.Class)
		if !ok {
			continue
		}
		e := model.New(kind)
		if err := json.Unmarshal(rec, e); err != nil {
			return fmt.Errorf("file: decode %s: %w", key, err)
		}
		objects[kind][e.Base().ID] = e
	}

	s.mu.Lock()
	s.objects = objects
	s.mu.Unlock()
	return nil
}

// Close is a no-op; state is already on disk after Save.
func (s *Store) Close() error { return nil }
