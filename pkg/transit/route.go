package transit

import "time"

// Route is a persisted end-to-end plan - the winning composition a user
// chose, frozen into ordered steps that a trip can then be tracked against.
type Route struct {
	PrimaryIdentifier string `groups:"basic" bson:",omitempty"`

	Name string `groups:"basic" bson:",omitempty"`

	StartLocationRef string `groups:"basic" bson:",omitempty"`
	EndLocationRef   string `groups:"basic" bson:",omitempty"`

	Steps []*RouteStep `groups:"detailed" bson:",omitempty"`

	TotalDistanceMeters  float64   `groups:"basic"`
	TotalDurationSeconds int       `groups:"basic"`
	TotalFare            FareRange `groups:"basic" bson:",omitempty"`

	UsageCount int `groups:"internal"`

	CreationDateTime     time.Time `groups:"detailed" bson:",omitempty"`
	ModificationDateTime time.Time `groups:"detailed" bson:",omitempty"`
}

// RouteStep is one leg of a route, bound to a transport mode and a
// from/to location pair. DestinationGeo is the geofence target for the step.
type RouteStep struct {
	PrimaryIdentifier string `groups:"basic" bson:",omitempty"`

	Order int `groups:"basic"`

	SegmentRef string `groups:"basic" bson:",omitempty"`
	Reversed   bool   `groups:"basic"`

	StartLocationRef string `groups:"basic" bson:",omitempty"`
	EndLocationRef   string `groups:"basic" bson:",omitempty"`

	DestinationGeo Geography `groups:"basic" bson:",omitempty"`

	// Landmark points along the step, used for off-route checks
	Track []Geography `groups:"detailed" bson:",omitempty"`

	TransportModes []TransportMode `groups:"basic" bson:",omitempty"`

	DistanceMeters  float64 `groups:"basic"`
	DurationSeconds int     `groups:"basic"`

	Instructions string `groups:"detailed" bson:",omitempty"`
}

// FinalStep returns the last step of the route or nil for an empty plan
func (r *Route) FinalStep() *RouteStep {
	if len(r.Steps) == 0 {
		return nil
	}

	return r.Steps[len(r.Steps)-1]
}

// StepByRef returns the step with the given identifier along with its index,
// or (nil, -1) when the route has no such step
func (r *Route) StepByRef(stepRef string) (*RouteStep, int) {
	for index, step := range r.Steps {
		if step.PrimaryIdentifier == stepRef {
			return step, index
		}
	}

	return nil, -1
}
