package transit

import (
	"time"

	"github.com/AvigateGroup/avigate-app-sub000/pkg/util"
)

type TripStatus string

const (
	TripStatusPlanning   TripStatus = "PLANNING"
	TripStatusInProgress TripStatus = "IN_PROGRESS"
	TripStatusCompleted  TripStatus = "COMPLETED"
	TripStatusCancelled  TripStatus = "CANCELLED"
)

// Terminal reports whether the status permits no further transitions
func (s TripStatus) Terminal() bool {
	return s == TripStatusCompleted || s == TripStatusCancelled
}

// ActiveTrip is the live record of a user's journey against a chosen route.
// At most one IN_PROGRESS ActiveTrip exists per user at any time.
type ActiveTrip struct {
	PrimaryIdentifier string `groups:"basic" bson:",omitempty"`

	UserID string `groups:"internal" bson:",omitempty"`

	RouteRef string `groups:"basic" bson:",omitempty"`
	Route    *Route `groups:"detailed" bson:",omitempty"`

	CurrentStepRef  string    `groups:"basic" bson:",omitempty"`
	CurrentLocation Geography `groups:"basic" bson:",omitempty"`

	Status TripStatus `groups:"basic" bson:",omitempty"`

	StartedAt        time.Time `groups:"basic" bson:",omitempty"`
	EstimatedArrival time.Time `groups:"basic" bson:",omitempty"`
	CompletedAt      time.Time `groups:"basic" bson:",omitempty"`

	// Append only, ordered by application not by fix timestamp
	LocationHistory []TripLocation `groups:"detailed" bson:",omitempty"`

	StepProgress map[string]*StepProgress `groups:"detailed" bson:",omitempty"`

	// Alert keys that have already fired for this trip
	NotificationsSent []string `groups:"internal" bson:",omitempty"`

	Metadata map[string]string `groups:"internal" bson:",omitempty"`

	CreationDateTime     time.Time `groups:"detailed" bson:",omitempty"`
	ModificationDateTime time.Time `groups:"detailed" bson:",omitempty"`
}

type TripLocation struct {
	Geo       Geography `groups:"detailed" bson:",omitempty"`
	Timestamp time.Time `groups:"detailed" bson:",omitempty"`
	Accuracy  float64   `groups:"detailed" bson:",omitempty"`
}

type StepProgress struct {
	StartedAt   time.Time  `groups:"detailed" bson:",omitempty"`
	CompletedAt *time.Time `groups:"detailed" bson:",omitempty"`
}

// HasFiredNotification reports whether the alert key has already been sent
// for this trip
func (t *ActiveTrip) HasFiredNotification(key string) bool {
	return util.ContainsString(t.NotificationsSent, key)
}

// MarkNotificationFired records an alert key so it never fires again.
// Returns false if the key had fired before.
func (t *ActiveTrip) MarkNotificationFired(key string) bool {
	if t.HasFiredNotification(key) {
		return false
	}

	t.NotificationsSent = append(t.NotificationsSent, key)

	return true
}

// ProgressResult is what a single location update produced
type ProgressResult struct {
	CurrentStepCompleted bool `groups:"basic"`
	NextStepStarted      bool `groups:"basic"`

	DistanceToNextWaypoint float64   `groups:"basic"`
	EstimatedArrival       time.Time `groups:"basic"`

	Alerts []ProximityAlert `groups:"basic"`
}
