// Package convert maps between client payloads, stored records and response
// views. Every function is a pure field copy, apart from the strict date-time
// parsing and the bird/sighting join.
package convert

import (
	"time"

	"github.com/sakif/birdwatch/internal/apperror"
	"github.com/sakif/birdwatch/internal/model"
)

// DateTimeLayout is the only accepted date-time format: local time, second
// precision, no zone. Example: 2023-07-18T10:00:00.
const DateTimeLayout = "2006-01-02T15:04:05"

// ParseDateTime parses s in DateTimeLayout. A nil input yields a nil result
// and no error; malformed input fails with apperror.ErrInvalidDateTime and
// keeps the *time.ParseError as cause.
func ParseDateTime(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	t, err := time.Parse(DateTimeLayout, *s)
	if err != nil {
		return nil, apperror.InvalidDateTime(err)
	}
	// time.Parse accepts a one-digit hour and trailing fractional seconds;
	// only the canonical fixed-width form round-trips.
	if t.Format(DateTimeLayout) != *s {
		return nil, apperror.InvalidDateTime(&time.ParseError{
			Layout:  DateTimeLayout,
			Value:   *s,
			Message: ": not in " + DateTimeLayout + " form",
		})
	}
	return &t, nil
}

// FormatDateTime is the inverse of ParseDateTime.
func FormatDateTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(DateTimeLayout)
	return &s
}

func Bird(d model.BirdDraft) model.Bird {
	return model.Bird{
		Name:   d.Name,
		Color:  d.Color,
		Weight: d.Weight,
		Height: d.Height,
	}
}

func BirdView(b model.Bird) model.BirdView {
	return model.BirdView{
		ID:     b.ID,
		Name:   b.Name,
		Color:  b.Color,
		Weight: b.Weight,
		Height: b.Height,
	}
}

func BirdViews(birds []model.Bird) []model.BirdView {
	views := make([]model.BirdView, 0, len(birds))
	for _, b := range birds {
		views = append(views, BirdView(b))
	}
	return views
}

// Sighting builds an id-less sighting from a draft.
func Sighting(d model.SightingDraft) (model.Sighting, error) {
	dt, err := ParseDateTime(d.DateTime)
	if err != nil {
		return model.Sighting{}, err
	}
	return model.Sighting{
		BirdID:   d.BirdID,
		Location: d.Location,
		DateTime: dt,
	}, nil
}

func SightingView(s model.Sighting, bird model.BirdView) model.SightingView {
	return model.SightingView{
		ID:       s.ID,
		Bird:     bird,
		Location: s.Location,
		DateTime: FormatDateTime(s.DateTime),
	}
}

// SightingViews joins each sighting to its bird by id. A sighting whose bird
// is not in the batch fails the whole join with apperror.ErrInconsistent; no
// other bird is ever substituted.
func SightingViews(sightings []model.Sighting, birds []model.BirdView) ([]model.SightingView, error) {
	byID := make(map[string]model.BirdView, len(birds))
	for _, b := range birds {
		byID[b.ID] = b
	}

	views := make([]model.SightingView, 0, len(sightings))
	for _, s := range sightings {
		bird, ok := byID[s.BirdID]
		if !ok {
			return nil, apperror.Inconsistent(s.ID, s.BirdID)
		}
		views = append(views, SightingView(s, bird))
	}
	return views, nil
}
