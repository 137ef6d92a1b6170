package routes

import (
	"context"

	"github.com/AvigateGroup/avigate-app-sub000/pkg/database"
	"github.com/AvigateGroup/avigate-app-sub000/pkg/transit"
	"github.com/gofiber/fiber/v2"
	"github.com/liip/sheriff"
	"go.mongodb.org/mongo-driver/bson"
)

func SegmentsRouter(router fiber.Router) {
	router.Get("/", listSegments)
	router.Get("/:identifier", getSegment)
}

func listSegments(c *fiber.Ctx) error {
	query := bson.M{}

	if locationRef := c.Query("location"); locationRef != "" {
		query["$or"] = bson.A{
			bson.M{"startlocationref": locationRef},
			bson.M{"endlocationref": locationRef},
		}
	}

	segmentsCollection := database.GetCollection("segments")
	cursor, _ := segmentsCollection.Find(context.Background(), query)

	segments := []transit.Segment{}
	cursor.All(context.Background(), &segments)

	segmentsReduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: []string{"basic"},
	}, segments)

	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Sheriff could not reduce segments",
		})
	}

	return c.JSON(segmentsReduced)
}

func getSegment(c *fiber.Ctx) error {
	identifier := c.Params("identifier")

	segmentsCollection := database.GetCollection("segments")
	var segment *transit.Segment
	segmentsCollection.FindOne(context.Background(), bson.M{"primaryidentifier": identifier}).Decode(&segment)

	if segment == nil {
		c.SendStatus(fiber.StatusNotFound)
		return c.JSON(fiber.Map{
			"error": "Could not find Segment matching Segment Identifier",
		})
	}

	return c.JSON(segment)
}
