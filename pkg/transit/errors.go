package transit

import "fmt"

// NotFoundError indicates a referenced record does not exist. Surfaced to
// the caller, never retried.
type NotFoundError struct {
	Resource   string
	Identifier string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("could not find %s matching %s", e.Resource, e.Identifier)
}

// DuplicateActiveTripError is returned when a user tries to start a trip
// while another of theirs is still IN_PROGRESS
type DuplicateActiveTripError struct {
	UserID          string
	ExistingTripRef string
}

func (e DuplicateActiveTripError) Error() string {
	return fmt.Sprintf("user already has an active trip %s", e.ExistingTripRef)
}

// InvalidTripStateError is returned when an operation is attempted against a
// trip whose status does not permit it
type InvalidTripStateError struct {
	TripRef string
	Status  TripStatus
	Action  string
}

func (e InvalidTripStateError) Error() string {
	return fmt.Sprintf("cannot %s trip %s in status %s", e.Action, e.TripRef, e.Status)
}
