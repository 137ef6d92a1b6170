package database

import (
	"context"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func createIndexes() {
	createReferenceDataIndexes()
	createRoutesIndexes()
	createTripsIndexes()
	createNotificationIndexes()
}

func createReferenceDataIndexes() {
	// Locations
	locationsCollection := GetCollection("locations")
	locationsIndex := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "primaryidentifier", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "geo.coordinates", Value: "2d"}},
		},
		{
			Keys: bson.D{{Key: "city", Value: 1}},
		},
	}

	opts := options.CreateIndexes()
	_, err := locationsCollection.Indexes().CreateMany(context.Background(), locationsIndex, opts)
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}

	// Segments
	segmentsCollection := GetCollection("segments")
	segmentEndpointsIndexName := "SegmentEndpoints"
	segmentsIndex := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "primaryidentifier", Value: 1}},
		},
		{
			Options: &options.IndexOptions{
				Name: &segmentEndpointsIndexName,
			},
			Keys: bson.D{
				{Key: "startlocationref", Value: 1},
				{Key: "endlocationref", Value: 1},
			},
		},
		{
			Keys: bson.D{{Key: "endlocationref", Value: 1}},
		},
	}

	opts = options.CreateIndexes()
	_, err = segmentsCollection.Indexes().CreateMany(context.Background(), segmentsIndex, opts)
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}
}

func createRoutesIndexes() {
	routesCollection := GetCollection("routes")
	_, err := routesCollection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "primaryidentifier", Value: 1}},
		},
		{
			Keys: bson.D{
				{Key: "startlocationref", Value: 1},
				{Key: "endlocationref", Value: 1},
			},
		},
	}, options.CreateIndexes())
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}
}

func createTripsIndexes() {
	activeTripsCollection := GetCollection("active_trips")
	userStatusIndexName := "TripUserStatus"
	_, err := activeTripsCollection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "primaryidentifier", Value: 1}},
		},
		{
			Options: &options.IndexOptions{
				Name: &userStatusIndexName,
			},
			Keys: bson.D{
				{Key: "userid", Value: 1},
				{Key: "status", Value: 1},
			},
		},
		{
			Keys: bson.D{{Key: "modificationdatetime", Value: 1}},
		},
	}, options.CreateIndexes())
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}
}

func createNotificationIndexes() {
	userPushNotificationTargetCollection := GetCollection("user_push_notification_target")
	_, err := userPushNotificationTargetCollection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "userid", Value: 1}},
		},
	}, options.CreateIndexes())
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}

	userEventSubscriptionCollection := GetCollection("user_event_subscription")
	_, err = userEventSubscriptionCollection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "userid", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "eventtype", Value: 1}},
		},
	}, options.CreateIndexes())
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}
}
