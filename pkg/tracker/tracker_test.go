package tracker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/AvigateGroup/avigate-app-sub000/pkg/geofence"
	"github.com/AvigateGroup/avigate-app-sub000/pkg/transit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTripRepository struct {
	trips  map[string]*transit.ActiveTrip
	routes map[string]*transit.Route
}

func (r *fakeTripRepository) ActiveTripByID(ctx context.Context, tripRef string) (*transit.ActiveTrip, error) {
	return r.trips[tripRef], nil
}

func (r *fakeTripRepository) ActiveTripForUser(ctx context.Context, userID string) (*transit.ActiveTrip, error) {
	for _, trip := range r.trips {
		if trip.UserID == userID && trip.Status == transit.TripStatusInProgress {
			return trip, nil
		}
	}

	return nil, nil
}

func (r *fakeTripRepository) RouteByID(ctx context.Context, routeRef string) (*transit.Route, error) {
	return r.routes[routeRef], nil
}

func (r *fakeTripRepository) InsertTrip(ctx context.Context, trip *transit.ActiveTrip) error {
	r.trips[trip.PrimaryIdentifier] = trip
	return nil
}

func (r *fakeTripRepository) UpdateTrip(ctx context.Context, trip *transit.ActiveTrip) error {
	r.trips[trip.PrimaryIdentifier] = trip
	return nil
}

type fakePublisher struct {
	events []transit.Event
}

func (p *fakePublisher) PublishEvent(event transit.Event) {
	p.events = append(p.events, event)
}

func (p *fakePublisher) eventsOfType(eventType transit.EventType) []transit.Event {
	var matched []transit.Event
	for _, event := range p.events {
		if event.Type == eventType {
			matched = append(matched, event)
		}
	}

	return matched
}

// Step geometry spaced a few kilometers apart
var (
	chobaGeo     = transit.NewGeography(4.8970, 6.9091)
	rumuokoroGeo = transit.NewGeography(4.8635, 6.9866)
	mile1Geo     = transit.NewGeography(4.7870, 7.0050)
)

func offsetNorth(point transit.Geography, meters float64) transit.Geography {
	return transit.NewGeography(point.Latitude()+meters/111320.0, point.Longitude())
}

func testRoute() *transit.Route {
	return &transit.Route{
		PrimaryIdentifier: "ROUTE:TEST",

		StartLocationRef: "LOC:CHOBA",
		EndLocationRef:   "LOC:MILE1",

		Steps: []*transit.RouteStep{
			{
				PrimaryIdentifier: "STEP:1",
				Order:             1,
				StartLocationRef:  "LOC:CHOBA",
				EndLocationRef:    "LOC:RUMUOKORO",
				DestinationGeo:    rumuokoroGeo,
			},
			{
				PrimaryIdentifier: "STEP:2",
				Order:             2,
				StartLocationRef:  "LOC:RUMUOKORO",
				EndLocationRef:    "LOC:MILE1",
				DestinationGeo:    mile1Geo,
			},
		},
	}
}

func newTestStateMachine() (*StateMachine, *fakeTripRepository, *fakePublisher) {
	repository := &fakeTripRepository{
		trips:  map[string]*transit.ActiveTrip{},
		routes: map[string]*transit.Route{"ROUTE:TEST": testRoute()},
	}
	publisher := &fakePublisher{}

	stateMachine := NewStateMachine(repository, geofence.NewEvaluator(geofence.DefaultThresholds()), publisher)

	return stateMachine, repository, publisher
}

func TestStartTrip(t *testing.T) {
	stateMachine, _, _ := newTestStateMachine()

	trip, err := stateMachine.StartTrip(context.Background(), "user-1", "ROUTE:TEST", chobaGeo)
	require.NoError(t, err)

	assert.NotEmpty(t, trip.PrimaryIdentifier)
	assert.Equal(t, transit.TripStatusInProgress, trip.Status)
	assert.Equal(t, "STEP:1", trip.CurrentStepRef)
	assert.Len(t, trip.LocationHistory, 1)
	assert.NotNil(t, trip.StepProgress["STEP:1"])
	assert.False(t, trip.EstimatedArrival.IsZero())
}

func TestStartTripDuplicateRejected(t *testing.T) {
	stateMachine, _, _ := newTestStateMachine()

	first, err := stateMachine.StartTrip(context.Background(), "user-1", "ROUTE:TEST", chobaGeo)
	require.NoError(t, err)

	_, err = stateMachine.StartTrip(context.Background(), "user-1", "ROUTE:TEST", chobaGeo)

	var duplicate transit.DuplicateActiveTripError
	require.True(t, errors.As(err, &duplicate))
	assert.Equal(t, first.PrimaryIdentifier, duplicate.ExistingTripRef)

	// A different user is unaffected
	_, err = stateMachine.StartTrip(context.Background(), "user-2", "ROUTE:TEST", chobaGeo)
	assert.NoError(t, err)
}

func TestStartTripUnknownRoute(t *testing.T) {
	stateMachine, _, _ := newTestStateMachine()

	_, err := stateMachine.StartTrip(context.Background(), "user-1", "ROUTE:MISSING", chobaGeo)

	var notFound transit.NotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "Route", notFound.Resource)
}

func TestUpdateLocationApproaching(t *testing.T) {
	stateMachine, _, publisher := newTestStateMachine()

	trip, err := stateMachine.StartTrip(context.Background(), "user-1", "ROUTE:TEST", chobaGeo)
	require.NoError(t, err)

	result, err := stateMachine.UpdateLocation(context.Background(), trip.PrimaryIdentifier, "user-1", transit.TripLocation{
		Geo: offsetNorth(rumuokoroGeo, 300),
	})
	require.NoError(t, err)

	require.Len(t, result.Alerts, 1)
	assert.Equal(t, transit.ProximityAlertTypeApproaching, result.Alerts[0].Type)
	assert.False(t, result.CurrentStepCompleted)

	assert.Len(t, publisher.eventsOfType(transit.EventTypeTripAlert), 1)

	// Same position again fires nothing new
	result, err = stateMachine.UpdateLocation(context.Background(), trip.PrimaryIdentifier, "user-1", transit.TripLocation{
		Geo: offsetNorth(rumuokoroGeo, 300),
	})
	require.NoError(t, err)

	assert.Empty(t, result.Alerts)
	assert.Len(t, publisher.eventsOfType(transit.EventTypeTripAlert), 1)
}

func TestUpdateLocationArrivalAdvancesStep(t *testing.T) {
	stateMachine, repository, _ := newTestStateMachine()

	trip, err := stateMachine.StartTrip(context.Background(), "user-1", "ROUTE:TEST", chobaGeo)
	require.NoError(t, err)

	result, err := stateMachine.UpdateLocation(context.Background(), trip.PrimaryIdentifier, "user-1", transit.TripLocation{
		Geo: offsetNorth(rumuokoroGeo, 80),
	})
	require.NoError(t, err)

	assert.True(t, result.CurrentStepCompleted)
	assert.True(t, result.NextStepStarted)

	stored := repository.trips[trip.PrimaryIdentifier]
	assert.Equal(t, "STEP:2", stored.CurrentStepRef)
	assert.Equal(t, transit.TripStatusInProgress, stored.Status)
	require.NotNil(t, stored.StepProgress["STEP:1"].CompletedAt)
	require.NotNil(t, stored.StepProgress["STEP:2"])
	assert.Nil(t, stored.StepProgress["STEP:2"].CompletedAt)
}

func TestUpdateLocationFinalArrivalCompletesTrip(t *testing.T) {
	stateMachine, repository, publisher := newTestStateMachine()

	trip, err := stateMachine.StartTrip(context.Background(), "user-1", "ROUTE:TEST", chobaGeo)
	require.NoError(t, err)

	_, err = stateMachine.UpdateLocation(context.Background(), trip.PrimaryIdentifier, "user-1", transit.TripLocation{
		Geo: offsetNorth(rumuokoroGeo, 80),
	})
	require.NoError(t, err)

	_, err = stateMachine.UpdateLocation(context.Background(), trip.PrimaryIdentifier, "user-1", transit.TripLocation{
		Geo: offsetNorth(mile1Geo, 50),
	})
	require.NoError(t, err)

	stored := repository.trips[trip.PrimaryIdentifier]
	assert.Equal(t, transit.TripStatusCompleted, stored.Status)
	assert.False(t, stored.CompletedAt.IsZero())
	assert.True(t, stored.HasFiredNotification("trip_completed"))

	assert.Len(t, publisher.eventsOfType(transit.EventTypeTripCompleted), 1)

	// Further updates are rejected
	_, err = stateMachine.UpdateLocation(context.Background(), trip.PrimaryIdentifier, "user-1", transit.TripLocation{
		Geo: mile1Geo,
	})

	var invalidState transit.InvalidTripStateError
	require.True(t, errors.As(err, &invalidState))
	assert.Equal(t, transit.TripStatusCompleted, invalidState.Status)
}

func TestUpdateLocationOffRoute(t *testing.T) {
	stateMachine, _, _ := newTestStateMachine()

	trip, err := stateMachine.StartTrip(context.Background(), "user-1", "ROUTE:TEST", chobaGeo)
	require.NoError(t, err)

	// Kilometers from the step destination and its path
	result, err := stateMachine.UpdateLocation(context.Background(), trip.PrimaryIdentifier, "user-1", transit.TripLocation{
		Geo: transit.NewGeography(4.9500, 6.8000),
	})
	require.NoError(t, err)

	require.Len(t, result.Alerts, 1)
	assert.Equal(t, transit.ProximityAlertTypeOffRoute, result.Alerts[0].Type)

	// Off-route fires once per step
	result, err = stateMachine.UpdateLocation(context.Background(), trip.PrimaryIdentifier, "user-1", transit.TripLocation{
		Geo: transit.NewGeography(4.9500, 6.8000),
	})
	require.NoError(t, err)
	assert.Empty(t, result.Alerts)
}

func TestUpdateLocationOwnership(t *testing.T) {
	stateMachine, _, _ := newTestStateMachine()

	trip, err := stateMachine.StartTrip(context.Background(), "user-1", "ROUTE:TEST", chobaGeo)
	require.NoError(t, err)

	_, err = stateMachine.UpdateLocation(context.Background(), trip.PrimaryIdentifier, "user-2", transit.TripLocation{
		Geo: chobaGeo,
	})

	var notFound transit.NotFoundError
	require.True(t, errors.As(err, &notFound))
}

func TestUpdateLocationStaleFixStillApplies(t *testing.T) {
	stateMachine, repository, _ := newTestStateMachine()

	trip, err := stateMachine.StartTrip(context.Background(), "user-1", "ROUTE:TEST", chobaGeo)
	require.NoError(t, err)

	stale := transit.TripLocation{
		Geo:       offsetNorth(chobaGeo, 500),
		Timestamp: time.Now().Add(-10 * time.Minute),
	}

	_, err = stateMachine.UpdateLocation(context.Background(), trip.PrimaryIdentifier, "user-1", stale)
	require.NoError(t, err)

	stored := repository.trips[trip.PrimaryIdentifier]
	assert.Equal(t, stale.Geo, stored.CurrentLocation)
	assert.Len(t, stored.LocationHistory, 2)
}

func TestCompleteTrip(t *testing.T) {
	stateMachine, _, publisher := newTestStateMachine()

	trip, err := stateMachine.StartTrip(context.Background(), "user-1", "ROUTE:TEST", chobaGeo)
	require.NoError(t, err)

	completed, err := stateMachine.CompleteTrip(context.Background(), trip.PrimaryIdentifier, "user-1")
	require.NoError(t, err)

	assert.Equal(t, transit.TripStatusCompleted, completed.Status)
	assert.Len(t, publisher.eventsOfType(transit.EventTypeTripCompleted), 1)

	// Completing again is a no-op success and re-triggers nothing
	again, err := stateMachine.CompleteTrip(context.Background(), trip.PrimaryIdentifier, "user-1")
	require.NoError(t, err)

	assert.Equal(t, transit.TripStatusCompleted, again.Status)
	assert.Len(t, publisher.eventsOfType(transit.EventTypeTripCompleted), 1)
}

func TestCompleteCancelledTripRejected(t *testing.T) {
	stateMachine, _, _ := newTestStateMachine()

	trip, err := stateMachine.StartTrip(context.Background(), "user-1", "ROUTE:TEST", chobaGeo)
	require.NoError(t, err)

	_, err = stateMachine.CancelTrip(context.Background(), trip.PrimaryIdentifier, "user-1", "changed my mind")
	require.NoError(t, err)

	_, err = stateMachine.CompleteTrip(context.Background(), trip.PrimaryIdentifier, "user-1")

	var invalidState transit.InvalidTripStateError
	require.True(t, errors.As(err, &invalidState))
	assert.Equal(t, transit.TripStatusCancelled, invalidState.Status)
}

func TestCancelTrip(t *testing.T) {
	stateMachine, repository, publisher := newTestStateMachine()

	trip, err := stateMachine.StartTrip(context.Background(), "user-1", "ROUTE:TEST", chobaGeo)
	require.NoError(t, err)

	cancelled, err := stateMachine.CancelTrip(context.Background(), trip.PrimaryIdentifier, "user-1", "vehicle broke down")
	require.NoError(t, err)

	assert.Equal(t, transit.TripStatusCancelled, cancelled.Status)
	assert.Equal(t, "vehicle broke down", cancelled.Metadata["cancellation_reason"])
	assert.Equal(t, string(transit.TripStatusInProgress), cancelled.Metadata["previous_status"])

	assert.Len(t, publisher.eventsOfType(transit.EventTypeTripCancelled), 1)

	// Cancelling a cancelled trip is rejected
	_, err = stateMachine.CancelTrip(context.Background(), trip.PrimaryIdentifier, "user-1", "again")
	var invalidState transit.InvalidTripStateError
	require.True(t, errors.As(err, &invalidState))

	// And the user can start afresh
	_, err = stateMachine.StartTrip(context.Background(), "user-1", "ROUTE:TEST", chobaGeo)
	assert.NoError(t, err)

	assert.Equal(t, transit.TripStatusCancelled, repository.trips[trip.PrimaryIdentifier].Status)
}

func TestActiveTrip(t *testing.T) {
	stateMachine, _, _ := newTestStateMachine()

	active, err := stateMachine.ActiveTrip(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Nil(t, active)

	trip, err := stateMachine.StartTrip(context.Background(), "user-1", "ROUTE:TEST", chobaGeo)
	require.NoError(t, err)

	active, err = stateMachine.ActiveTrip(context.Background(), "user-1")
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, trip.PrimaryIdentifier, active.PrimaryIdentifier)
}
