package tracker

import (
	"context"

	"github.com/AvigateGroup/avigate-app-sub000/pkg/database"
	"github.com/AvigateGroup/avigate-app-sub000/pkg/transit"
	"go.mongodb.org/mongo-driver/bson"
)

// TripRepository is the persistence boundary of the state machine. Lookups
// return (nil, nil) when no record matches.
type TripRepository interface {
	ActiveTripByID(ctx context.Context, tripRef string) (*transit.ActiveTrip, error)
	ActiveTripForUser(ctx context.Context, userID string) (*transit.ActiveTrip, error)
	RouteByID(ctx context.Context, routeRef string) (*transit.Route, error)

	InsertTrip(ctx context.Context, trip *transit.ActiveTrip) error
	UpdateTrip(ctx context.Context, trip *transit.ActiveTrip) error
}

type MongoTripRepository struct{}

func (r MongoTripRepository) ActiveTripByID(ctx context.Context, tripRef string) (*transit.ActiveTrip, error) {
	activeTripsCollection := database.GetCollection("active_trips")

	var trip *transit.ActiveTrip
	activeTripsCollection.FindOne(ctx, bson.M{"primaryidentifier": tripRef}).Decode(&trip)

	return trip, nil
}

func (r MongoTripRepository) ActiveTripForUser(ctx context.Context, userID string) (*transit.ActiveTrip, error) {
	activeTripsCollection := database.GetCollection("active_trips")

	var trip *transit.ActiveTrip
	activeTripsCollection.FindOne(ctx, bson.M{
		"userid": userID,
		"status": transit.TripStatusInProgress,
	}).Decode(&trip)

	return trip, nil
}

func (r MongoTripRepository) RouteByID(ctx context.Context, routeRef string) (*transit.Route, error) {
	routesCollection := database.GetCollection("routes")

	var route *transit.Route
	routesCollection.FindOne(ctx, bson.M{"primaryidentifier": routeRef}).Decode(&route)

	return route, nil
}

func (r MongoTripRepository) InsertTrip(ctx context.Context, trip *transit.ActiveTrip) error {
	activeTripsCollection := database.GetCollection("active_trips")

	_, err := activeTripsCollection.InsertOne(ctx, trip)

	return err
}

func (r MongoTripRepository) UpdateTrip(ctx context.Context, trip *transit.ActiveTrip) error {
	activeTripsCollection := database.GetCollection("active_trips")

	_, err := activeTripsCollection.UpdateOne(ctx,
		bson.M{"primaryidentifier": trip.PrimaryIdentifier},
		bson.M{"$set": trip},
	)

	return err
}
