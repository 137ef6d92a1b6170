package routes

import (
	"time"

	"github.com/AvigateGroup/avigate-app-sub000/pkg/transit"
	"github.com/gofiber/fiber/v2"
)

func TripsRouter(router fiber.Router) {
	router.Post("/", startTrip)
	router.Get("/active", getActiveTrip)
	router.Post("/:identifier/location", updateTripLocation)
	router.Post("/:identifier/complete", completeTrip)
	router.Post("/:identifier/cancel", cancelTrip)
}

type startTripRequest struct {
	RouteRef string `json:"route"`

	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func startTrip(c *fiber.Ctx) error {
	userID := c.Locals("account_userid").(string)

	var request startTripRequest
	if err := c.BodyParser(&request); err != nil || request.RouteRef == "" {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "Request body must contain a route identifier and starting coordinates",
		})
	}

	trip, err := tripStateMachine.StartTrip(c.Context(), userID, request.RouteRef, transit.NewGeography(request.Latitude, request.Longitude))
	if err != nil {
		return renderEngineError(c, err)
	}

	c.SendStatus(fiber.StatusCreated)
	return c.JSON(trip)
}

func getActiveTrip(c *fiber.Ctx) error {
	userID := c.Locals("account_userid").(string)

	trip, err := tripStateMachine.ActiveTrip(c.Context(), userID)
	if err != nil {
		return renderEngineError(c, err)
	}

	if trip == nil {
		c.SendStatus(fiber.StatusNotFound)
		return c.JSON(fiber.Map{
			"error": "No active trip for this account",
		})
	}

	return c.JSON(trip)
}

type updateLocationRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`

	Accuracy float64 `json:"accuracy"`

	Timestamp time.Time `json:"timestamp"`
}

func updateTripLocation(c *fiber.Ctx) error {
	userID := c.Locals("account_userid").(string)
	identifier := c.Params("identifier")

	var request updateLocationRequest
	if err := c.BodyParser(&request); err != nil {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "Request body must contain coordinates",
		})
	}

	result, err := tripStateMachine.UpdateLocation(c.Context(), identifier, userID, transit.TripLocation{
		Geo:       transit.NewGeography(request.Latitude, request.Longitude),
		Timestamp: request.Timestamp,
		Accuracy:  request.Accuracy,
	})
	if err != nil {
		return renderEngineError(c, err)
	}

	return c.JSON(result)
}

func completeTrip(c *fiber.Ctx) error {
	userID := c.Locals("account_userid").(string)
	identifier := c.Params("identifier")

	trip, err := tripStateMachine.CompleteTrip(c.Context(), identifier, userID)
	if err != nil {
		return renderEngineError(c, err)
	}

	return c.JSON(trip)
}

type cancelTripRequest struct {
	Reason string `json:"reason"`
}

func cancelTrip(c *fiber.Ctx) error {
	userID := c.Locals("account_userid").(string)
	identifier := c.Params("identifier")

	var request cancelTripRequest
	c.BodyParser(&request)

	trip, err := tripStateMachine.CancelTrip(c.Context(), identifier, userID, request.Reason)
	if err != nil {
		return renderEngineError(c, err)
	}

	return c.JSON(trip)
}
