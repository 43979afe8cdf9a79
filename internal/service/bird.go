// Package service holds the business rules that keep birds and sightings
// consistent.
//
// The store gives no help: two independent collections, no foreign keys, no
// transactions spanning both. Consistency is therefore procedural:
//
//   - a sighting is written only after its bird is confirmed to exist;
//   - deleting a bird deletes its sightings first, then the bird;
//   - every batch read re-checks the reference invariant (package integrity).
//
// None of these multi-step sequences is atomic and nothing is rolled back or
// retried on a partial failure. The step ordering guarantees a partial
// failure can leave a bird without sightings but never a sighting without a
// bird, and the read-time check catches anything that slips through.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sakif/birdwatch/internal/convert"
	"github.com/sakif/birdwatch/internal/metrics"
	"github.com/sakif/birdwatch/internal/model"
	"github.com/sakif/birdwatch/internal/repository"
)

// BirdFilter is the single query branch a BirdCriteria resolves to.
type BirdFilter int

const (
	BirdFilterAll BirdFilter = iota
	BirdFilterName
	BirdFilterColor
)

// BirdCriteria holds optional search filters; an empty string means absent.
// At most one filter is applied, see Filter.
type BirdCriteria struct {
	Name  string
	Color string
}

// Filter picks the branch to run: name, then color, then everything. When
// both are set, color is ignored.
func (c BirdCriteria) Filter() BirdFilter {
	switch {
	case c.Name != "":
		return BirdFilterName
	case c.Color != "":
		return BirdFilterColor
	default:
		return BirdFilterAll
	}
}

// BirdService owns the bird collection and the cascading delete into
// sightings.
type BirdService struct {
	birds     repository.BirdRepository
	sightings repository.SightingRepository
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func NewBirdService(
	birds repository.BirdRepository,
	sightings repository.SightingRepository,
	m *metrics.Metrics,
	logger *slog.Logger,
) *BirdService {
	return &BirdService{
		birds:     birds,
		sightings: sightings,
		metrics:   m,
		logger:    logger,
	}
}

// Save persists a new bird and returns it with its store-assigned id.
func (s *BirdService) Save(ctx context.Context, draft model.BirdDraft) (*model.BirdView, error) {
	defer s.metrics.ObserveOperation("bird.save", time.Now())

	bird := convert.Bird(draft)
	if err := s.birds.Create(ctx, &bird); err != nil {
		s.logger.Error("failed to create bird",
			slog.String("name", draft.Name),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating bird: %w", err)
	}

	s.metrics.IncrementBirdsCreated()
	s.logger.Info("bird created",
		slog.String("id", bird.ID),
		slog.String("name", bird.Name),
	)

	view := convert.BirdView(bird)
	return &view, nil
}

// GetEntityByID returns the stored bird. Fails with apperror.ErrNotFound.
func (s *BirdService) GetEntityByID(ctx context.Context, id string) (*model.Bird, error) {
	return s.birds.GetByID(ctx, id)
}

// GetByID returns the bird view. Fails with apperror.ErrNotFound.
func (s *BirdService) GetByID(ctx context.Context, id string) (*model.BirdView, error) {
	bird, err := s.GetEntityByID(ctx, id)
	if err != nil {
		return nil, err
	}
	view := convert.BirdView(*bird)
	return &view, nil
}

// Update overwrites all four descriptive fields of an existing bird.
func (s *BirdService) Update(ctx context.Context, id string, draft model.BirdDraft) (*model.BirdView, error) {
	defer s.metrics.ObserveOperation("bird.update", time.Now())

	bird, err := s.GetEntityByID(ctx, id)
	if err != nil {
		return nil, err
	}

	bird.Name = draft.Name
	bird.Color = draft.Color
	bird.Weight = draft.Weight
	bird.Height = draft.Height

	if err := s.birds.Update(ctx, bird); err != nil {
		s.logger.Error("failed to update bird",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating bird: %w", err)
	}

	s.logger.Info("bird updated",
		slog.String("id", bird.ID),
		slog.String("name", bird.Name),
	)

	view := convert.BirdView(*bird)
	return &view, nil
}

// Delete removes a bird together with every sighting that references it.
//
// Sightings go first, then the bird. If either sighting step fails the bird
// is left untouched. If the final bird delete fails the bird survives with no
// sightings. No path leaves an orphaned sighting behind.
func (s *BirdService) Delete(ctx context.Context, id string) error {
	defer s.metrics.ObserveOperation("bird.delete", time.Now())

	ids, err := s.sightings.FindIDsByBirdID(ctx, id)
	if err != nil {
		s.logger.Error("failed to find sightings of bird",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("finding sightings of bird %s: %w", id, err)
	}

	if err := s.sightings.DeleteMany(ctx, ids); err != nil {
		s.logger.Error("failed to delete sightings of bird",
			slog.String("id", id),
			slog.Int("sightings", len(ids)),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("deleting sightings of bird %s: %w", id, err)
	}
	s.metrics.AddCascadedSightings(len(ids))

	if err := s.birds.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete bird after its sightings",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("deleting bird %s: %w", id, err)
	}

	s.logger.Info("bird deleted",
		slog.String("id", id),
		slog.Int("sightings", len(ids)),
	)
	return nil
}

func (s *BirdService) GetAll(ctx context.Context) ([]model.BirdView, error) {
	birds, err := s.birds.List(ctx)
	if err != nil {
		s.logger.Error("failed to list birds", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing birds: %w", err)
	}
	return convert.BirdViews(birds), nil
}

// GetByCriteria runs exactly one branch, chosen by BirdCriteria.Filter.
func (s *BirdService) GetByCriteria(ctx context.Context, c BirdCriteria) ([]model.BirdView, error) {
	var (
		birds []model.Bird
		err   error
	)

	switch c.Filter() {
	case BirdFilterName:
		birds, err = s.birds.FindByName(ctx, c.Name)
	case BirdFilterColor:
		birds, err = s.birds.FindByColor(ctx, c.Color)
	default:
		return s.GetAll(ctx)
	}
	if err != nil {
		s.logger.Error("failed to search birds", slog.String("error", err.Error()))
		return nil, fmt.Errorf("searching birds: %w", err)
	}

	return convert.BirdViews(birds), nil
}
