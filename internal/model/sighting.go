package model

import "time"

// Sighting is the child record. BirdID must name an existing Bird at the
// moment the sighting is written.
//
// DateTime has second precision and no time zone; it is stored as UTC
// wall-clock time. nil means the client never supplied one.
type Sighting struct {
	ID       string     `json:"id"       bson:"_id"`
	BirdID   string     `json:"birdId"   bson:"bird_id"`
	Location string     `json:"location" bson:"location"`
	DateTime *time.Time `json:"dateTime" bson:"date_time,omitempty"`
}

// SightingDraft is the client payload for creating or replacing a sighting.
// DateTime is raw text in the YYYY-MM-DDTHH:MM:SS layout.
type SightingDraft struct {
	BirdID   string  `json:"birdId"`
	Location string  `json:"location"`
	DateTime *string `json:"dateTime"`
}

// SightingView embeds the full bird rather than just its id.
type SightingView struct {
	ID       string   `json:"id"`
	Bird     BirdView `json:"bird"`
	Location string   `json:"location"`
	DateTime *string  `json:"dateTime"`
}
