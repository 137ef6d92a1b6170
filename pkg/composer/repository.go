package composer

import (
	"context"
	"time"

	"github.com/AvigateGroup/avigate-app-sub000/pkg/database"
	"github.com/AvigateGroup/avigate-app-sub000/pkg/redis_client"
	"github.com/AvigateGroup/avigate-app-sub000/pkg/transit"
	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	redisstore "github.com/eko/gocache/store/redis/v4"
	"go.mongodb.org/mongo-driver/bson"
)

// MongoSegmentRepository reads reference data straight from the database
type MongoSegmentRepository struct{}

func (r MongoSegmentRepository) Location(ctx context.Context, locationRef string) (*transit.Location, error) {
	locationsCollection := database.GetCollection("locations")

	var location *transit.Location
	locationsCollection.FindOne(ctx, bson.M{"primaryidentifier": locationRef}).Decode(&location)

	return location, nil
}

func (r MongoSegmentRepository) SegmentsBetween(ctx context.Context, startLocationRef string, endLocationRef string) ([]*transit.Segment, error) {
	segmentsCollection := database.GetCollection("segments")

	cursor, err := segmentsCollection.Find(ctx, bson.M{
		"startlocationref": startLocationRef,
		"endlocationref":   endLocationRef,
	})
	if err != nil {
		return nil, err
	}

	var segments []*transit.Segment
	if err := cursor.All(ctx, &segments); err != nil {
		return nil, err
	}

	return segments, nil
}

func (r MongoSegmentRepository) AllSegments(ctx context.Context) ([]*transit.Segment, error) {
	segmentsCollection := database.GetCollection("segments")

	cursor, err := segmentsCollection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}

	var segments []*transit.Segment
	if err := cursor.All(ctx, &segments); err != nil {
		return nil, err
	}

	return segments, nil
}

// NewCachedComposer wires the composer against Mongo reference data with a
// short lived redis result cache. Reference data changes rarely so the
// TTL-bounded staleness is acceptable.
func NewCachedComposer() *Composer {
	redisStore := redisstore.NewRedis(redis_client.Client, store.WithExpiration(5*time.Minute))

	c := NewComposer(MongoSegmentRepository{})
	c.ResultCache = cache.New[string](redisStore)

	return c
}
