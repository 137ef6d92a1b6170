package transit

import "time"

// Segment is a stored, reusable point-to-point stretch of a transit corridor.
// Authored and edited by curators - the engine only ever reads these, a
// reversed Segment is an in-memory view and must never be written back.
type Segment struct {
	PrimaryIdentifier string `groups:"basic" bson:",omitempty"`

	Name string `groups:"basic" bson:",omitempty"`

	StartLocationRef string `groups:"basic" bson:",omitempty"`
	EndLocationRef   string `groups:"basic" bson:",omitempty"`

	IntermediateStops []IntermediateStop `groups:"detailed" bson:",omitempty"`
	Landmarks         []Landmark         `groups:"detailed" bson:",omitempty"`

	DistanceMeters  float64 `groups:"basic" bson:",omitempty"`
	DurationSeconds int     `groups:"basic" bson:",omitempty"`

	Fare FareRange `groups:"basic" bson:",omitempty"`

	TransportModes []TransportMode `groups:"basic" bson:",omitempty"`

	Bidirectional bool `groups:"detailed"`

	Instructions string `groups:"detailed" bson:",omitempty"`

	// Number of times this segment has been part of a chosen route
	UsageCount int `groups:"internal"`

	CreationDateTime     time.Time `groups:"detailed" bson:",omitempty"`
	ModificationDateTime time.Time `groups:"detailed" bson:",omitempty"`
}

type IntermediateStop struct {
	LocationRef string `groups:"detailed" bson:",omitempty"`
	Name        string `groups:"detailed" bson:",omitempty"`
	Order       int    `groups:"detailed"`
	Optional    bool   `groups:"detailed"`
}

type Landmark struct {
	Name string    `groups:"detailed" bson:",omitempty"`
	Geo  Geography `groups:"detailed" bson:",omitempty"`
}

type FareRange struct {
	Minimum  float64 `groups:"basic"`
	Maximum  float64 `groups:"basic"`
	Currency string  `groups:"basic" bson:",omitempty"`
}

// Track returns the segment geometry the engine knows about - the landmark
// points in authored order. Endpoint geography lives on the Location records.
func (s *Segment) Track() []Geography {
	var track []Geography
	for _, landmark := range s.Landmarks {
		track = append(track, landmark.Geo)
	}

	return track
}
