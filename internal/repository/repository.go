// Package repository declares the two entity stores the services depend on.
//
// Each store owns one collection and knows nothing about the other: there are
// no joins, no foreign keys and no cross-collection transactions. Keeping the
// two collections consistent is the service layer's job.
//
// Contract shared by every implementation:
//   - Create assigns the ID and writes it back into the passed record.
//   - GetByID returns apperror.ErrNotFound when the id is unknown.
//   - Update replaces every field of an existing record and returns
//     apperror.ErrNotFound when the id is unknown.
//   - Delete and DeleteMany are idempotent; unknown ids are not an error.
//   - List and Find* return a non-nil, possibly empty, slice.
package repository

import (
	"context"
	"time"

	"github.com/sakif/birdwatch/internal/model"
)

type BirdRepository interface {
	Create(ctx context.Context, bird *model.Bird) error
	GetByID(ctx context.Context, id string) (*model.Bird, error)
	Update(ctx context.Context, bird *model.Bird) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]model.Bird, error)
	FindByName(ctx context.Context, name string) ([]model.Bird, error)
	FindByColor(ctx context.Context, color string) ([]model.Bird, error)
}

type SightingRepository interface {
	Create(ctx context.Context, sighting *model.Sighting) error
	GetByID(ctx context.Context, id string) (*model.Sighting, error)
	Update(ctx context.Context, sighting *model.Sighting) error
	Delete(ctx context.Context, id string) error
	DeleteMany(ctx context.Context, ids []string) error
	List(ctx context.Context) ([]model.Sighting, error)
	FindIDsByBirdID(ctx context.Context, birdID string) ([]string, error)
	FindByBirdID(ctx context.Context, birdID string) ([]model.Sighting, error)
	FindByLocation(ctx context.Context, location string) ([]model.Sighting, error)
	// FindByDateTimeBetween matches start <= DateTime <= end. Sightings
	// without a DateTime never match.
	FindByDateTimeBetween(ctx context.Context, start, end time.Time) ([]model.Sighting, error)
}
