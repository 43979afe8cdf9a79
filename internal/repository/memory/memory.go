// Package memory implements the repository interfaces in process memory.
//
// It backs the service tests and STORE_BACKEND=memory. Records are copied in
// and out, so callers never share state with the store, and listing follows
// insertion order like the SQL stores do.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/birdwatch/internal/apperror"
	"github.com/sakif/birdwatch/internal/model"
	"github.com/sakif/birdwatch/internal/repository"
)

// collection is an insertion-ordered map guarded by its own lock. The two
// stores never lock each other, mirroring two independent collections.
type collection[T any] struct {
	mu    sync.RWMutex
	order []string
	items map[string]T
}

func newCollection[T any]() *collection[T] {
	return &collection[T]{items: make(map[string]T)}
}

func (c *collection[T]) put(id string, v T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.items[id]; !ok {
		c.order = append(c.order, id)
	}
	c.items[id] = v
}

func (c *collection[T]) get(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.items[id]
	return v, ok
}

// replace stores v only if id already exists.
func (c *collection[T]) replace(id string, v T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.items[id]; !ok {
		return false
	}
	c.items[id] = v
	return true
}

func (c *collection[T]) remove(ids ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	gone := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := c.items[id]; ok {
			delete(c.items, id)
			gone[id] = struct{}{}
		}
	}
	if len(gone) == 0 {
		return
	}
	kept := c.order[:0]
	for _, id := range c.order {
		if _, ok := gone[id]; !ok {
			kept = append(kept, id)
		}
	}
	c.order = kept
}

func (c *collection[T]) filter(match func(T) bool) []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, 0)
	for _, id := range c.order {
		if v := c.items[id]; match(v) {
			out = append(out, v)
		}
	}
	return out
}

func all[T any](T) bool { return true }

// =========================================================================
// BIRDS
// =========================================================================

type BirdStore struct {
	birds *collection[model.Bird]
}

var _ repository.BirdRepository = (*BirdStore)(nil)

func NewBirdStore() *BirdStore {
	return &BirdStore{birds: newCollection[model.Bird]()}
}

func (s *BirdStore) Create(_ context.Context, bird *model.Bird) error {
	bird.ID = xid.New().String()
	s.birds.put(bird.ID, *bird)
	return nil
}

func (s *BirdStore) GetByID(_ context.Context, id string) (*model.Bird, error) {
	b, ok := s.birds.get(id)
	if !ok {
		return nil, apperror.BirdNotFound()
	}
	return &b, nil
}

func (s *BirdStore) Update(_ context.Context, bird *model.Bird) error {
	if !s.birds.replace(bird.ID, *bird) {
		return apperror.BirdNotFound()
	}
	return nil
}

func (s *BirdStore) Delete(_ context.Context, id string) error {
	s.birds.remove(id)
	return nil
}

func (s *BirdStore) List(_ context.Context) ([]model.Bird, error) {
	return s.birds.filter(all[model.Bird]), nil
}

func (s *BirdStore) FindByName(_ context.Context, name string) ([]model.Bird, error) {
	return s.birds.filter(func(b model.Bird) bool { return b.Name == name }), nil
}

func (s *BirdStore) FindByColor(_ context.Context, color string) ([]model.Bird, error) {
	return s.birds.filter(func(b model.Bird) bool { return b.Color == color }), nil
}

// =========================================================================
// SIGHTINGS
// =========================================================================

type SightingStore struct {
	sightings *collection[model.Sighting]
}

var _ repository.SightingRepository = (*SightingStore)(nil)

func NewSightingStore() *SightingStore {
	return &SightingStore{sightings: newCollection[model.Sighting]()}
}

func (s *SightingStore) Create(_ context.Context, sighting *model.Sighting) error {
	sighting.ID = xid.New().String()
	s.sightings.put(sighting.ID, cloneSighting(*sighting))
	return nil
}

func (s *SightingStore) GetByID(_ context.Context, id string) (*model.Sighting, error) {
	v, ok := s.sightings.get(id)
	if !ok {
		return nil, apperror.SightingNotFound()
	}
	v = cloneSighting(v)
	return &v, nil
}

func (s *SightingStore) Update(_ context.Context, sighting *model.Sighting) error {
	if !s.sightings.replace(sighting.ID, cloneSighting(*sighting)) {
		return apperror.SightingNotFound()
	}
	return nil
}

func (s *SightingStore) Delete(_ context.Context, id string) error {
	s.sightings.remove(id)
	return nil
}

func (s *SightingStore) DeleteMany(_ context.Context, ids []string) error {
	s.sightings.remove(ids...)
	return nil
}

func (s *SightingStore) List(_ context.Context) ([]model.Sighting, error) {
	return s.find(all[model.Sighting]), nil
}

func (s *SightingStore) FindIDsByBirdID(_ context.Context, birdID string) ([]string, error) {
	matches := s.find(func(v model.Sighting) bool { return v.BirdID == birdID })
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m.ID)
	}
	return ids, nil
}

func (s *SightingStore) FindByBirdID(_ context.Context, birdID string) ([]model.Sighting, error) {
	return s.find(func(v model.Sighting) bool { return v.BirdID == birdID }), nil
}

func (s *SightingStore) FindByLocation(_ context.Context, location string) ([]model.Sighting, error) {
	return s.find(func(v model.Sighting) bool { return v.Location == location }), nil
}

func (s *SightingStore) FindByDateTimeBetween(_ context.Context, start, end time.Time) ([]model.Sighting, error) {
	return s.find(func(v model.Sighting) bool {
		if v.DateTime == nil {
			return false
		}
		return !v.DateTime.Before(start) && !v.DateTime.After(end)
	}), nil
}

func (s *SightingStore) find(match func(model.Sighting) bool) []model.Sighting {
	found := s.sightings.filter(match)
	for i := range found {
		found[i] = cloneSighting(found[i])
	}
	return found
}

// cloneSighting detaches the DateTime pointer from the caller's copy.
func cloneSighting(v model.Sighting) model.Sighting {
	if v.DateTime != nil {
		t := *v.DateTime
		v.DateTime = &t
	}
	return v
}
