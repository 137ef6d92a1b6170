package transit

import "time"

// Location is a curated named place on the network (junction, park, market).
// Reference data - created by curators out of band, never mutated here.
type Location struct {
	PrimaryIdentifier string `groups:"basic" bson:",omitempty"`

	Name  string `groups:"basic" bson:",omitempty"`
	City  string `groups:"basic" bson:",omitempty"`
	State string `groups:"basic" bson:",omitempty"`

	Geo Geography `groups:"basic" bson:",omitempty"`

	// Nearby landmark names to help riders recognise the place
	Landmarks []string `groups:"detailed" bson:",omitempty"`

	CreationDateTime     time.Time `groups:"detailed" bson:",omitempty"`
	ModificationDateTime time.Time `groups:"detailed" bson:",omitempty"`
}

// Geography is a GeoJSON point, coordinates ordered [longitude, latitude]
type Geography struct {
	Type        string    `json:"-" groups:"basic"`
	Coordinates []float64 `json:"coordinates" groups:"basic"`
}

func NewGeography(latitude float64, longitude float64) Geography {
	return Geography{
		Type:        "Point",
		Coordinates: []float64{longitude, latitude},
	}
}

func (g Geography) Longitude() float64 {
	if len(g.Coordinates) != 2 {
		return 0
	}
	return g.Coordinates[0]
}

func (g Geography) Latitude() float64 {
	if len(g.Coordinates) != 2 {
		return 0
	}
	return g.Coordinates[1]
}
