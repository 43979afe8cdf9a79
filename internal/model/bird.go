// Package model defines the records the service stores and the shapes it
// exchanges with clients.
//
// Birds and sightings live in separate collections. A Sighting points at its
// Bird by value (BirdID), never by pointer: the store offers no foreign keys,
// so the link is only as good as the checks the service layer performs.
package model

import "fmt"

// Bird is the parent record. ID is assigned by the store on first save and
// never changes afterwards.
type Bird struct {
	ID     string  `json:"id"     bson:"_id"`
	Name   string  `json:"name"   bson:"name"`
	Color  string  `json:"color"  bson:"color"`
	Weight float64 `json:"weight" bson:"weight"` // grams
	Height float64 `json:"height" bson:"height"` // centimeters
}

// BirdDraft is the client payload for creating or replacing a bird.
type BirdDraft struct {
	Name   string  `json:"name"`
	Color  string  `json:"color"`
	Weight float64 `json:"weight"`
	Height float64 `json:"height"`
}

// Validate checks the measurements are physically meaningful. It returns the
// offending field name alongside the message.
func (d BirdDraft) Validate() (field string, err error) {
	if d.Weight < 0 {
		return "weight", fmt.Errorf("weight must not be negative, got %v", d.Weight)
	}
	if d.Height < 0 {
		return "height", fmt.Errorf("height must not be negative, got %v", d.Height)
	}
	return "", nil
}

// BirdView is what clients get back for a bird, standalone or nested inside a
// SightingView.
type BirdView struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Color  string  `json:"color"`
	Weight float64 `json:"weight"`
	Height float64 `json:"height"`
}
