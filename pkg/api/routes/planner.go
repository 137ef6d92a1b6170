package routes

import (
	"context"
	"strings"
	"time"

	"github.com/AvigateGroup/avigate-app-sub000/pkg/composer"
	"github.com/AvigateGroup/avigate-app-sub000/pkg/database"
	"github.com/AvigateGroup/avigate-app-sub000/pkg/transit"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
)

func PlannerRouter(router fiber.Router) {
	router.Get("/:origin/:destination", planJourney)
	router.Post("/routes", saveRoute)
	router.Get("/routes/:identifier", getRoute)
}

func planJourney(c *fiber.Ctx) error {
	origin := c.Params("origin")
	destination := c.Params("destination")

	composition, err := routeComposer.Compose(c.Context(), origin, destination)
	if err != nil {
		return renderEngineError(c, err)
	}

	if composition == nil {
		c.SendStatus(fiber.StatusNotFound)
		return c.JSON(fiber.Map{
			"error": "No route found between the requested locations",
		})
	}

	return c.JSON(composition)
}

type saveRouteRequest struct {
	Name string `json:"name"`

	Composition *transit.RouteComposition `json:"composition"`
}

// saveRoute freezes a composition the user picked into a persisted Route
// that trips can then be tracked against
func saveRoute(c *fiber.Ctx) error {
	var request saveRouteRequest
	if err := c.BodyParser(&request); err != nil || request.Composition == nil || len(request.Composition.Segments) == 0 {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "Request body must contain a composition with at least one segment",
		})
	}

	route, err := routeFromComposition(c.Context(), request.Name, request.Composition)
	if err != nil {
		return renderEngineError(c, err)
	}

	routesCollection := database.GetCollection("routes")
	if _, err := routesCollection.InsertOne(context.Background(), route); err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Failed to save route",
		})
	}

	bumpSegmentUsage(request.Composition)

	c.SendStatus(fiber.StatusCreated)
	return c.JSON(route)
}

func getRoute(c *fiber.Ctx) error {
	identifier := c.Params("identifier")

	routesCollection := database.GetCollection("routes")
	var route *transit.Route
	routesCollection.FindOne(context.Background(), bson.M{"primaryidentifier": identifier}).Decode(&route)

	if route == nil {
		c.SendStatus(fiber.StatusNotFound)
		return c.JSON(fiber.Map{
			"error": "Could not find Route matching Route Identifier",
		})
	}

	return c.JSON(route)
}

func routeFromComposition(ctx context.Context, name string, composition *transit.RouteComposition) (*transit.Route, error) {
	now := time.Now()

	route := &transit.Route{
		PrimaryIdentifier: uuid.New().String(),

		Name: name,

		StartLocationRef: composition.StartLocationRef,
		EndLocationRef:   composition.EndLocationRef,

		TotalDistanceMeters:  composition.TotalDistanceMeters,
		TotalDurationSeconds: composition.TotalDurationSeconds,
		TotalFare:            composition.TotalFare,

		CreationDateTime:     now,
		ModificationDateTime: now,
	}

	locationsCollection := database.GetCollection("locations")

	for index, composedSegment := range composition.Segments {
		segment := composedSegment.Segment

		var endLocation *transit.Location
		locationsCollection.FindOne(ctx, bson.M{"primaryidentifier": segment.EndLocationRef}).Decode(&endLocation)
		if endLocation == nil {
			return nil, transit.NotFoundError{Resource: "Location", Identifier: segment.EndLocationRef}
		}

		route.Steps = append(route.Steps, &transit.RouteStep{
			PrimaryIdentifier: uuid.New().String(),

			Order: index + 1,

			SegmentRef: segment.PrimaryIdentifier,
			Reversed:   composedSegment.Reversed,

			StartLocationRef: segment.StartLocationRef,
			EndLocationRef:   segment.EndLocationRef,

			DestinationGeo: endLocation.Geo,
			Track:          segment.Track(),

			TransportModes: segment.TransportModes,

			DistanceMeters:  segment.DistanceMeters,
			DurationSeconds: segment.DurationSeconds,

			Instructions: segment.Instructions,
		})
	}

	return route, nil
}

// bumpSegmentUsage counts a save against every underlying stored segment so
// the composer tie-break prefers well-trodden corridors
func bumpSegmentUsage(composition *transit.RouteComposition) {
	segmentsCollection := database.GetCollection("segments")

	for _, composedSegment := range composition.Segments {
		// Reversed views carry a suffixed identifier, the stored document
		// does not
		identifier := strings.TrimSuffix(composedSegment.Segment.PrimaryIdentifier, composer.ReversedSegmentSuffix)

		_, err := segmentsCollection.UpdateOne(context.Background(),
			bson.M{"primaryidentifier": identifier},
			bson.M{"$inc": bson.M{"usagecount": 1}})
		if err != nil {
			log.Error().Err(err).Str("segment", identifier).Msg("Failed to increment segment usage")
		}
	}
}
