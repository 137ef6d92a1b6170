package transit

import "time"

type Event struct {
	Type      EventType
	Timestamp time.Time
	Body      interface{}
}

type EventType string

const (
	EventTypeTripAlert     EventType = "TripAlert"
	EventTypeTripCompleted EventType = "TripCompleted"
	EventTypeTripCancelled EventType = "TripCancelled"
)

type EventNotificationData struct {
	Title   string
	Message string
}

// TripAlertEventBody is the payload for EventTypeTripAlert events raised by
// the trip tracker
type TripAlertEventBody struct {
	TripRef  string
	UserID   string
	RouteRef string
	StepRef  string

	Alert ProximityAlert
}
