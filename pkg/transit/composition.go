package transit

// CompositionConfidence records how a composition was found
type CompositionConfidence string

const (
	CompositionConfidenceDirect   CompositionConfidence = "Direct"
	CompositionConfidenceComposed CompositionConfidence = "Composed"
)

// RouteComposition is an ordered chain of segments (possibly reversed)
// connecting a start and end location. Transient - computed per request and
// never persisted by the engine itself.
type RouteComposition struct {
	Confidence CompositionConfidence `groups:"basic"`

	StartLocationRef string `groups:"basic"`
	EndLocationRef   string `groups:"basic"`

	Segments []ComposedSegment `groups:"basic"`

	// Indices into Segments that are used against their authored direction
	ReversedSegments []int `groups:"basic"`

	TotalDistanceMeters  float64   `groups:"basic"`
	TotalDurationSeconds int       `groups:"basic"`
	TotalFare            FareRange `groups:"basic"`

	Instructions []string `groups:"basic"`
}

type ComposedSegment struct {
	Segment  *Segment `groups:"basic"`
	Reversed bool     `groups:"basic"`
}
