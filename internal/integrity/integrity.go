// Package integrity verifies the bird/sighting reference invariant over a
// batch of records read from the store.
//
// The store enforces no foreign keys, and a bird can vanish outside the
// cascading delete path (manual store edits, a delete racing a sighting
// write). Verify is the tripwire that turns such corruption into
// apperror.ErrInconsistent instead of a silently wrong response.
package integrity

import (
	"github.com/sakif/birdwatch/internal/apperror"
	"github.com/sakif/birdwatch/internal/model"
)

// Verify requires every sighting to reference a bird present in birds.
//
// A nil argument is a caller bug and fails with apperror.ErrInvalidUsage; an
// empty one is fine. The first orphan found fails with
// apperror.ErrInconsistent.
func Verify(sightings []model.Sighting, birds []model.BirdView) error {
	if sightings == nil || birds == nil {
		return apperror.InvalidUsage()
	}

	known := make(map[string]struct{}, len(birds))
	for _, b := range birds {
		known[b.ID] = struct{}{}
	}

	for _, s := range sightings {
		if _, ok := known[s.BirdID]; !ok {
			return apperror.Inconsistent(s.ID, s.BirdID)
		}
	}
	return nil
}
