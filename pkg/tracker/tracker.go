package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/AvigateGroup/avigate-app-sub000/pkg/geofence"
	"github.com/AvigateGroup/avigate-app-sub000/pkg/transit"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// StateMachine owns the lifecycle of active trips. Every mutation happens
// under the trip's lock and only after all guards pass, so a rejected call
// never leaves partial state behind.
type StateMachine struct {
	Repository TripRepository
	Geofence   *geofence.Evaluator
	Publisher  AlertPublisher

	locks *lockArena
}

func NewStateMachine(repository TripRepository, evaluator *geofence.Evaluator, publisher AlertPublisher) *StateMachine {
	return &StateMachine{
		Repository: repository,
		Geofence:   evaluator,
		Publisher:  publisher,

		locks: newLockArena(),
	}
}

// StartTrip creates an IN_PROGRESS trip for the user against the route.
// Fails with DuplicateActiveTripError while the user still has a live trip.
func (s *StateMachine) StartTrip(ctx context.Context, userID string, routeRef string, coords transit.Geography) (*transit.ActiveTrip, error) {
	unlock := s.locks.Lock("user:" + userID)
	defer unlock()

	existing, err := s.Repository.ActiveTripForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, transit.DuplicateActiveTripError{
			UserID:          userID,
			ExistingTripRef: existing.PrimaryIdentifier,
		}
	}

	route, err := s.Repository.RouteByID(ctx, routeRef)
	if err != nil {
		return nil, err
	}
	if route == nil {
		return nil, transit.NotFoundError{Resource: "Route", Identifier: routeRef}
	}
	if len(route.Steps) == 0 {
		return nil, fmt.Errorf("route %s has no steps", routeRef)
	}

	now := time.Now()
	firstStep := route.Steps[0]

	trip := &transit.ActiveTrip{
		PrimaryIdentifier: uuid.New().String(),

		UserID: userID,

		RouteRef: routeRef,
		Route:    route,

		CurrentStepRef:  firstStep.PrimaryIdentifier,
		CurrentLocation: coords,

		Status: transit.TripStatusInProgress,

		StartedAt:        now,
		EstimatedArrival: s.Geofence.EstimateETA(coords, route.FinalStep().DestinationGeo, now),

		LocationHistory: []transit.TripLocation{
			{Geo: coords, Timestamp: now},
		},
		StepProgress: map[string]*transit.StepProgress{
			firstStep.PrimaryIdentifier: {StartedAt: now},
		},
		NotificationsSent: []string{},
		Metadata:          map[string]string{},

		CreationDateTime:     now,
		ModificationDateTime: now,
	}

	if err := s.Repository.InsertTrip(ctx, trip); err != nil {
		return nil, err
	}

	log.Info().
		Str("trip", trip.PrimaryIdentifier).
		Str("route", routeRef).
		Msg("Started trip")

	return trip, nil
}

// UpdateLocation applies one location fix to the trip - appends history,
// evaluates the geofences against the current step destination, advances
// the step machine and fires each alert key at most once
func (s *StateMachine) UpdateLocation(ctx context.Context, tripRef string, userID string, location transit.TripLocation) (*transit.ProgressResult, error) {
	unlock := s.locks.Lock(tripRef)
	defer unlock()

	// Status re-check happens after lock acquisition - an update racing a
	// cancellation must observe the terminal status and reject
	trip, err := s.Repository.ActiveTripByID(ctx, tripRef)
	if err != nil {
		return nil, err
	}
	if trip == nil || trip.UserID != userID {
		return nil, transit.NotFoundError{Resource: "ActiveTrip", Identifier: tripRef}
	}
	if trip.Status != transit.TripStatusInProgress {
		return nil, transit.InvalidTripStateError{TripRef: tripRef, Status: trip.Status, Action: "update"}
	}
	if trip.Route == nil {
		return nil, transit.NotFoundError{Resource: "Route", Identifier: trip.RouteRef}
	}

	currentStep, stepIndex := trip.Route.StepByRef(trip.CurrentStepRef)
	if currentStep == nil {
		return nil, transit.NotFoundError{Resource: "RouteStep", Identifier: trip.CurrentStepRef}
	}

	now := time.Now()
	if location.Timestamp.IsZero() {
		location.Timestamp = now
	}

	// Last write wins - a stale fix arriving after a fresher one is applied
	// anyway, the history keeps both
	if tail := len(trip.LocationHistory); tail > 0 && location.Timestamp.Before(trip.LocationHistory[tail-1].Timestamp) {
		log.Debug().Str("trip", tripRef).Msg("Applying out-of-order location fix")
	}

	trip.LocationHistory = append(trip.LocationHistory, location)
	trip.CurrentLocation = location.Geo

	result := &transit.ProgressResult{
		DistanceToNextWaypoint: s.Geofence.Distance(location.Geo, currentStep.DestinationGeo),
	}

	var alerts []transit.ProximityAlert
	alertStepRef := currentStep.PrimaryIdentifier

	switch {
	case s.Geofence.HasArrived(location.Geo, currentStep.DestinationGeo):
		alerts = s.completeCurrentStep(trip, currentStep, stepIndex, now, result)

	case s.Geofence.IsApproaching(location.Geo, currentStep.DestinationGeo):
		if trip.MarkNotificationFired(fmt.Sprintf("approaching_%s", currentStep.PrimaryIdentifier)) {
			alerts = append(alerts, transit.ProximityAlert{
				Type:           transit.ProximityAlertTypeApproaching,
				Message:        fmt.Sprintf("You are getting close to %s", currentStep.EndLocationRef),
				DistanceMeters: result.DistanceToNextWaypoint,
			})
		}

	case s.Geofence.IsOffRoute(location.Geo, stepPath(currentStep)):
		if trip.MarkNotificationFired(fmt.Sprintf("off_route_%s", currentStep.PrimaryIdentifier)) {
			_, _, offRouteDistance := s.Geofence.NearestPointOnPath(location.Geo, stepPath(currentStep))
			alerts = append(alerts, transit.ProximityAlert{
				Type:           transit.ProximityAlertTypeOffRoute,
				Message:        "You appear to have left the planned route",
				DistanceMeters: offRouteDistance,
			})
		}
	}

	if trip.Status == transit.TripStatusInProgress {
		trip.EstimatedArrival = s.Geofence.EstimateETA(location.Geo, trip.Route.FinalStep().DestinationGeo, now)
	} else {
		trip.EstimatedArrival = now
	}
	result.EstimatedArrival = trip.EstimatedArrival
	result.Alerts = alerts

	trip.ModificationDateTime = now

	if err := s.Repository.UpdateTrip(ctx, trip); err != nil {
		return nil, err
	}

	// Delivery is fire-and-forget relative to the committed transition
	s.publishAlerts(trip, alertStepRef, alerts)
	if trip.Status == transit.TripStatusCompleted {
		s.Publisher.PublishEvent(transit.Event{
			Type:      transit.EventTypeTripCompleted,
			Timestamp: now,
			Body: transit.TripAlertEventBody{
				TripRef:  trip.PrimaryIdentifier,
				UserID:   trip.UserID,
				RouteRef: trip.RouteRef,
			},
		})
	}

	return result, nil
}

// completeCurrentStep marks the arrival, then either finishes the trip or
// advances to the next step
func (s *StateMachine) completeCurrentStep(trip *transit.ActiveTrip, currentStep *transit.RouteStep, stepIndex int, now time.Time, result *transit.ProgressResult) []transit.ProximityAlert {
	var alerts []transit.ProximityAlert

	if progress := trip.StepProgress[currentStep.PrimaryIdentifier]; progress != nil && progress.CompletedAt == nil {
		completedAt := now
		progress.CompletedAt = &completedAt
	} else if progress == nil {
		completedAt := now
		trip.StepProgress[currentStep.PrimaryIdentifier] = &transit.StepProgress{StartedAt: now, CompletedAt: &completedAt}
	}

	result.CurrentStepCompleted = true

	if trip.MarkNotificationFired(fmt.Sprintf("step_completed_%s", currentStep.PrimaryIdentifier)) {
		alerts = append(alerts, transit.ProximityAlert{
			Type:           transit.ProximityAlertTypeArrived,
			Message:        fmt.Sprintf("You have reached %s", currentStep.EndLocationRef),
			DistanceMeters: result.DistanceToNextWaypoint,
		})
	}

	if stepIndex == len(trip.Route.Steps)-1 {
		trip.Status = transit.TripStatusCompleted
		trip.CompletedAt = now

		if trip.MarkNotificationFired("trip_completed") {
			alerts = append(alerts, transit.ProximityAlert{
				Type:    transit.ProximityAlertTypeArrived,
				Message: "You have arrived at your destination",
			})
		}

		return alerts
	}

	nextStep := trip.Route.Steps[stepIndex+1]
	trip.CurrentStepRef = nextStep.PrimaryIdentifier
	if trip.StepProgress[nextStep.PrimaryIdentifier] == nil {
		trip.StepProgress[nextStep.PrimaryIdentifier] = &transit.StepProgress{StartedAt: now}
	}

	result.NextStepStarted = true

	if trip.MarkNotificationFired(fmt.Sprintf("next_step_%s", nextStep.PrimaryIdentifier)) {
		alerts = append(alerts, transit.ProximityAlert{
			Type:    transit.ProximityAlertTypeArrived,
			Message: fmt.Sprintf("Next: head towards %s", nextStep.EndLocationRef),
		})
	}

	return alerts
}

// CompleteTrip transitions IN_PROGRESS to COMPLETED. Completing an already
// completed trip is a no-op success and re-triggers nothing.
func (s *StateMachine) CompleteTrip(ctx context.Context, tripRef string, userID string) (*transit.ActiveTrip, error) {
	unlock := s.locks.Lock(tripRef)
	defer unlock()

	trip, err := s.Repository.ActiveTripByID(ctx, tripRef)
	if err != nil {
		return nil, err
	}
	if trip == nil || trip.UserID != userID {
		return nil, transit.NotFoundError{Resource: "ActiveTrip", Identifier: tripRef}
	}

	if trip.Status == transit.TripStatusCompleted {
		return trip, nil
	}
	if trip.Status != transit.TripStatusInProgress {
		return nil, transit.InvalidTripStateError{TripRef: tripRef, Status: trip.Status, Action: "complete"}
	}

	now := time.Now()
	trip.Status = transit.TripStatusCompleted
	trip.CompletedAt = now
	trip.ModificationDateTime = now

	fireCompleted := trip.MarkNotificationFired("trip_completed")

	if err := s.Repository.UpdateTrip(ctx, trip); err != nil {
		return nil, err
	}

	if fireCompleted {
		s.Publisher.PublishEvent(transit.Event{
			Type:      transit.EventTypeTripCompleted,
			Timestamp: now,
			Body: transit.TripAlertEventBody{
				TripRef:  trip.PrimaryIdentifier,
				UserID:   trip.UserID,
				RouteRef: trip.RouteRef,
			},
		})
	}

	log.Info().Str("trip", tripRef).Msg("Completed trip")

	return trip, nil
}

// CancelTrip transitions IN_PROGRESS to CANCELLED, recording the reason and
// the previous status in the trip metadata
func (s *StateMachine) CancelTrip(ctx context.Context, tripRef string, userID string, reason string) (*transit.ActiveTrip, error) {
	unlock := s.locks.Lock(tripRef)
	defer unlock()

	trip, err := s.Repository.ActiveTripByID(ctx, tripRef)
	if err != nil {
		return nil, err
	}
	if trip == nil || trip.UserID != userID {
		return nil, transit.NotFoundError{Resource: "ActiveTrip", Identifier: tripRef}
	}

	if trip.Status != transit.TripStatusInProgress {
		return nil, transit.InvalidTripStateError{TripRef: tripRef, Status: trip.Status, Action: "cancel"}
	}

	now := time.Now()
	if trip.Metadata == nil {
		trip.Metadata = map[string]string{}
	}
	trip.Metadata["previous_status"] = string(trip.Status)
	if reason != "" {
		trip.Metadata["cancellation_reason"] = reason
	}

	trip.Status = transit.TripStatusCancelled
	trip.ModificationDateTime = now

	if err := s.Repository.UpdateTrip(ctx, trip); err != nil {
		return nil, err
	}

	s.Publisher.PublishEvent(transit.Event{
		Type:      transit.EventTypeTripCancelled,
		Timestamp: now,
		Body: transit.TripAlertEventBody{
			TripRef:  trip.PrimaryIdentifier,
			UserID:   trip.UserID,
			RouteRef: trip.RouteRef,
		},
	})

	log.Info().Str("trip", tripRef).Str("reason", reason).Msg("Cancelled trip")

	return trip, nil
}

// ActiveTrip returns the user's current IN_PROGRESS trip or nil
func (s *StateMachine) ActiveTrip(ctx context.Context, userID string) (*transit.ActiveTrip, error) {
	return s.Repository.ActiveTripForUser(ctx, userID)
}

func (s *StateMachine) publishAlerts(trip *transit.ActiveTrip, stepRef string, alerts []transit.ProximityAlert) {
	for _, alert := range alerts {
		s.Publisher.PublishEvent(transit.Event{
			Type:      transit.EventTypeTripAlert,
			Timestamp: time.Now(),
			Body: transit.TripAlertEventBody{
				TripRef:  trip.PrimaryIdentifier,
				UserID:   trip.UserID,
				RouteRef: trip.RouteRef,
				StepRef:  stepRef,

				Alert: alert,
			},
		})
	}
}

// stepPath is the geometry used for off-route checks - the landmark track
// plus the step destination
func stepPath(step *transit.RouteStep) []transit.Geography {
	path := make([]transit.Geography, 0, len(step.Track)+1)
	path = append(path, step.Track...)
	path = append(path, step.DestinationGeo)

	return path
}
