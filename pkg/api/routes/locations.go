package routes

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/AvigateGroup/avigate-app-sub000/pkg/database"
	"github.com/AvigateGroup/avigate-app-sub000/pkg/transit"
	"github.com/gofiber/fiber/v2"
	"github.com/liip/sheriff"
	"go.mongodb.org/mongo-driver/bson"
)

func LocationsRouter(router fiber.Router) {
	router.Get("/", listLocations)
	router.Get("/:identifier", getLocation)
}

func listLocations(c *fiber.Ctx) error {
	query := bson.M{}

	if city := c.Query("city"); city != "" {
		query["city"] = city
	} else {
		boundsQuery, err := getBoundsQuery(c)
		if err != nil {
			c.SendStatus(fiber.StatusBadRequest)
			return c.JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		query["geo.coordinates"] = boundsQuery
	}

	locationsCollection := database.GetCollection("locations")
	cursor, _ := locationsCollection.Find(context.Background(), query)

	locations := []transit.Location{}
	cursor.All(context.Background(), &locations)

	locationsReduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: []string{"basic"},
	}, locations)

	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Sheriff could not reduce locations",
		})
	}

	return c.JSON(locationsReduced)
}

func getLocation(c *fiber.Ctx) error {
	identifier := c.Params("identifier")

	locationsCollection := database.GetCollection("locations")
	var location *transit.Location
	locationsCollection.FindOne(context.Background(), bson.M{"primaryidentifier": identifier}).Decode(&location)

	if location == nil {
		c.SendStatus(fiber.StatusNotFound)
		return c.JSON(fiber.Map{
			"error": "Could not find Location matching Location Identifier",
		})
	}

	return c.JSON(location)
}

func getBoundsQuery(c *fiber.Ctx) (bson.M, error) {
	bounds := c.Query("bounds")

	if bounds == "" {
		return nil, errors.New("a city or bounds filter must be applied to the request")
	}

	boundsSplit := strings.Split(bounds, ",")
	if len(boundsSplit) != 4 {
		return nil, errors.New("bounds must contain 4 co-ordinates")
	}

	bottomLeftLon, _ := strconv.ParseFloat(boundsSplit[0], 32)
	bottomLeftLat, _ := strconv.ParseFloat(boundsSplit[1], 32)
	topRightLon, _ := strconv.ParseFloat(boundsSplit[2], 32)
	topRightLat, _ := strconv.ParseFloat(boundsSplit[3], 32)

	return bson.M{"$geoWithin": bson.M{"$box": bson.A{bson.A{bottomLeftLon, bottomLeftLat}, bson.A{topRightLon, topRightLat}}}}, nil
}
