package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sakif/birdwatch/internal/apperror"
	"github.com/sakif/birdwatch/internal/convert"
	"github.com/sakif/birdwatch/internal/integrity"
	"github.com/sakif/birdwatch/internal/metrics"
	"github.com/sakif/birdwatch/internal/model"
	"github.com/sakif/birdwatch/internal/repository"
)

// SightingFilter is the single query branch a SightingCriteria resolves to.
type SightingFilter int

const (
	SightingFilterAll SightingFilter = iota
	SightingFilterBird
	SightingFilterLocation
	SightingFilterTimeRange
)

// SightingCriteria holds optional search filters; an empty string means
// absent. Start and End are raw date-time text, parsed only when the time
// range branch is chosen.
type SightingCriteria struct {
	BirdID   string
	Location string
	Start    string
	End      string
}

// Filter picks the branch to run: bird, then location, then the time range
// (only when both Start and End are set), then everything.
func (c SightingCriteria) Filter() SightingFilter {
	switch {
	case c.BirdID != "":
		return SightingFilterBird
	case c.Location != "":
		return SightingFilterLocation
	case c.Start != "" && c.End != "":
		return SightingFilterTimeRange
	default:
		return SightingFilterAll
	}
}

// SightingService owns the sighting collection. Every write first resolves
// the referenced bird through BirdService, and every batch read is checked
// with integrity.Verify before joining.
type SightingService struct {
	sightings repository.SightingRepository
	birds     *BirdService
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func NewSightingService(
	sightings repository.SightingRepository,
	birds *BirdService,
	m *metrics.Metrics,
	logger *slog.Logger,
) *SightingService {
	return &SightingService{
		sightings: sightings,
		birds:     birds,
		metrics:   m,
		logger:    logger,
	}
}

// Save persists a new sighting. The referenced bird must exist; if it does
// not, apperror.ErrNotFound is returned and nothing is written.
func (s *SightingService) Save(ctx context.Context, draft model.SightingDraft) (*model.SightingView, error) {
	defer s.metrics.ObserveOperation("sighting.save", time.Now())

	bird, err := s.birds.GetByID(ctx, draft.BirdID)
	if err != nil {
		return nil, err
	}

	sighting, err := convert.Sighting(draft)
	if err != nil {
		return nil, err
	}

	if err := s.sightings.Create(ctx, &sighting); err != nil {
		s.logger.Error("failed to create sighting",
			slog.String("birdId", draft.BirdID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating sighting: %w", err)
	}

	s.metrics.IncrementSightingsCreated()
	s.logger.Info("sighting created",
		slog.String("id", sighting.ID),
		slog.String("birdId", sighting.BirdID),
	)

	view := convert.SightingView(sighting, *bird)
	return &view, nil
}

// Update replaces every field of sighting id, under the same bird-must-exist
// precondition as Save.
func (s *SightingService) Update(ctx context.Context, id string, draft model.SightingDraft) (*model.SightingView, error) {
	defer s.metrics.ObserveOperation("sighting.update", time.Now())

	bird, err := s.birds.GetByID(ctx, draft.BirdID)
	if err != nil {
		return nil, err
	}

	sighting, err := convert.Sighting(draft)
	if err != nil {
		return nil, err
	}
	sighting.ID = id

	if err := s.sightings.Update(ctx, &sighting); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
		s.logger.Error("failed to update sighting",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating sighting: %w", err)
	}

	s.logger.Info("sighting updated",
		slog.String("id", id),
		slog.String("birdId", sighting.BirdID),
	)

	view := convert.SightingView(sighting, *bird)
	return &view, nil
}

// Delete removes a sighting. Unknown ids are not an error.
func (s *SightingService) Delete(ctx context.Context, id string) error {
	if err := s.sightings.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete sighting",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("deleting sighting: %w", err)
	}

	s.logger.Info("sighting deleted", slog.String("id", id))
	return nil
}

func (s *SightingService) GetByID(ctx context.Context, id string) (*model.SightingView, error) {
	sighting, err := s.sightings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	bird, err := s.birds.GetByID(ctx, sighting.BirdID)
	if err != nil {
		return nil, err
	}

	view := convert.SightingView(*sighting, *bird)
	return &view, nil
}

// GetAll reads every bird and every sighting in two bulk reads and joins
// them in memory, instead of one bird lookup per sighting.
func (s *SightingService) GetAll(ctx context.Context) ([]model.SightingView, error) {
	defer s.metrics.ObserveOperation("sighting.list", time.Now())

	birds, err := s.birds.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	sightings, err := s.sightings.List(ctx)
	if err != nil {
		s.logger.Error("failed to list sightings", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing sightings: %w", err)
	}

	return s.join(sightings, birds)
}

// GetByCriteria runs exactly one branch, chosen by SightingCriteria.Filter.
// The bird branch joins against that single bird; the others against all
// birds.
func (s *SightingService) GetByCriteria(ctx context.Context, c SightingCriteria) ([]model.SightingView, error) {
	defer s.metrics.ObserveOperation("sighting.search", time.Now())

	switch c.Filter() {
	case SightingFilterBird:
		return s.getByBird(ctx, c.BirdID)
	case SightingFilterLocation:
		return s.getByLocation(ctx, c.Location)
	case SightingFilterTimeRange:
		return s.getByTimeRange(ctx, c.Start, c.End)
	default:
		return s.GetAll(ctx)
	}
}

func (s *SightingService) getByBird(ctx context.Context, birdID string) ([]model.SightingView, error) {
	bird, err := s.birds.GetByID(ctx, birdID)
	if err != nil {
		return nil, err
	}

	sightings, err := s.sightings.FindByBirdID(ctx, birdID)
	if err != nil {
		s.logger.Error("failed to find sightings by bird",
			slog.String("birdId", birdID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("finding sightings by bird: %w", err)
	}

	return s.join(sightings, []model.BirdView{*bird})
}

func (s *SightingService) getByLocation(ctx context.Context, location string) ([]model.SightingView, error) {
	birds, err := s.birds.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	sightings, err := s.sightings.FindByLocation(ctx, location)
	if err != nil {
		s.logger.Error("failed to find sightings by location",
			slog.String("location", location),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("finding sightings by location: %w", err)
	}

	return s.join(sightings, birds)
}

// getByTimeRange matches start <= dateTime <= end.
func (s *SightingService) getByTimeRange(ctx context.Context, startText, endText string) ([]model.SightingView, error) {
	start, err := convert.ParseDateTime(&startText)
	if err != nil {
		return nil, err
	}
	end, err := convert.ParseDateTime(&endText)
	if err != nil {
		return nil, err
	}

	birds, err := s.birds.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	sightings, err := s.sightings.FindByDateTimeBetween(ctx, *start, *end)
	if err != nil {
		s.logger.Error("failed to find sightings by date-time",
			slog.String("start", startText),
			slog.String("end", endText),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("finding sightings by date-time: %w", err)
	}

	return s.join(sightings, birds)
}

// join verifies the batch and builds the views. An orphan anywhere in the
// batch fails the whole read with apperror.ErrInconsistent.
func (s *SightingService) join(sightings []model.Sighting, birds []model.BirdView) ([]model.SightingView, error) {
	if err := integrity.Verify(sightings, birds); err != nil {
		s.reportViolation(err)
		return nil, err
	}

	views, err := convert.SightingViews(sightings, birds)
	if err != nil {
		s.reportViolation(err)
		return nil, err
	}
	return views, nil
}

func (s *SightingService) reportViolation(err error) {
	if !errors.Is(err, apperror.ErrInconsistent) {
		return
	}
	s.metrics.IncrementIntegrityViolations()
	s.logger.Error("orphaned sighting detected", slog.String("error", err.Error()))
}
