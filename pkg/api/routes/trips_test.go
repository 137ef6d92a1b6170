package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AvigateGroup/avigate-app-sub000/pkg/geofence"
	"github.com/AvigateGroup/avigate-app-sub000/pkg/tracker"
	"github.com/AvigateGroup/avigate-app-sub000/pkg/transit"
	"github.com/gofiber/fiber/v2"
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

func newTripsTestApp(repository *fakeTripRepository) *fiber.App {
	tripStateMachine = tracker.NewStateMachine(repository,
		geofence.NewEvaluator(geofence.DefaultThresholds()), tracker.NopAlertPublisher{})

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("account_userid", "user-1")
		return c.Next()
	})
	TripsRouter(app.Group("/trips"))

	return app
}

func TestUpdateTripLocationCarriesAccuracy(t *testing.T) {
	route := &transit.Route{
		PrimaryIdentifier: "ROUTE-1",
		Steps: []*transit.RouteStep{
			{
				PrimaryIdentifier: "STEP-1",
				Order:             1,
				EndLocationRef:    "LOC:MILE1",
				DestinationGeo:    transit.NewGeography(4.7870, 7.0050),
			},
		},
	}

	repository := &fakeTripRepository{
		trips: map[string]*transit.ActiveTrip{
			"TRIP-1": {
				PrimaryIdentifier: "TRIP-1",
				UserID:            "user-1",
				RouteRef:          "ROUTE-1",
				Route:             route,
				CurrentStepRef:    "STEP-1",
				Status:            transit.TripStatusInProgress,
				StepProgress: map[string]*transit.StepProgress{
					"STEP-1": {},
				},
			},
		},
		routes: map[string]*transit.Route{"ROUTE-1": route},
	}

	app := newTripsTestApp(repository)

	body, _ := json.Marshal(fiber.Map{
		"latitude":  4.8700,
		"longitude": 6.9900,
		"accuracy":  12.5,
	})

	request := httptest.NewRequest(http.MethodPost, "/trips/TRIP-1/location", bytes.NewReader(body))
	request.Header.Set("Content-Type", "application/json")

	response, err := app.Test(request)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, response.StatusCode)

	stored := repository.trips["TRIP-1"]
	require.NotEmpty(t, stored.LocationHistory)

	last := stored.LocationHistory[len(stored.LocationHistory)-1]
	assert.Equal(t, 12.5, last.Accuracy)
	assert.Equal(t, transit.NewGeography(4.8700, 6.9900), last.Geo)
}
